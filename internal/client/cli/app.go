// Package cli implements the interactive exam client: a small REPL over the
// server connection with separate command surfaces for participants and
// administrators.
package cli

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/examhub/examhub/internal/client/client"
	"github.com/examhub/examhub/internal/client/config"
)

type App struct {
	config   *config.Config
	api      *client.Client
	userName string
	role     string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	api, err := client.Dial(c.ServerEndpointAddr)
	if err != nil {
		log.Printf("error connecting to server: %s", err.Error())
		return nil, err
	}

	return &App{config: c, api: api, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) isAdmin() bool {
	return a.role == "admin"
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s %s)", a.userName, a.role)
}

// reportError prints a command error; a session kick additionally resets
// the login state so the REPL falls back to the logged-out surface.
func (a *App) reportError(err error) {
	if kicked, reason := a.api.Kicked(); kicked {
		if reason == "" {
			reason = err.Error()
		}
		log.Printf("Disconnected: %s", reason)
		a.userName = ""
		a.role = ""
		return
	}
	log.Printf("error: %v", err)
}

func (a *App) Run() {
	defer a.api.Close()
	a.Root()
}
