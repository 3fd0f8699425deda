package config

import (
	"flag"
	"os"

	"github.com/examhub/examhub/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   server endpoint address (host:port)
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server endpoint address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
