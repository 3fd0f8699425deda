// Package server initializes and runs the exam server: it selects the user
// store and snapshot archive from configuration, wires the domain services
// together and starts the TCP endpoint, shutting everything down on
// SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/examhub/examhub/internal/logging"
	"github.com/examhub/examhub/internal/server/archive"
	"github.com/examhub/examhub/internal/server/banks"
	"github.com/examhub/examhub/internal/server/config"
	"github.com/examhub/examhub/internal/server/rooms"
	"github.com/examhub/examhub/internal/server/sessions"
	"github.com/examhub/examhub/internal/server/tcp"
	"github.com/examhub/examhub/internal/server/users"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *tcp.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	userRepo, err := newUserRepository(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("user store init error: %w", err)
	}

	var archiver banks.Archiver = archive.NoopArchiver{}
	if c.S3Bucket != "" {
		archiver = archive.NewS3Archiver(c)
	}

	userService := users.NewService(userRepo)
	sessionManager := sessions.NewManager(logger)
	bankService := banks.NewService(banks.NewStore(), archiver, logger)
	roomService := rooms.NewService(bankService, logger)

	server := tcp.NewServer(c.EndpointAddr, logger, userService, sessionManager,
		bankService, roomService, c.SecretKey, c.SessionTokenValidityDuration)

	return &App{config: c, logger: logger, server: server}, nil
}

func newUserRepository(ctx context.Context, c *config.Config) (users.Repository, error) {
	if c.DatabaseDSN != "" {
		return users.NewPostgresRepository(ctx, c.DatabaseDSN)
	}
	return users.NewFileRepository(c.UsersFile)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
}
