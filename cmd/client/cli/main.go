package main

import (
	"log"

	"github.com/examhub/examhub/internal/client/cli"
	"github.com/examhub/examhub/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run()

}
