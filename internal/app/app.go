package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/chatter-project/chatter-server/internal/config"
	"github.com/chatter-project/chatter-server/internal/core"
	"github.com/chatter-project/chatter-server/internal/roomlog"
	transporthttp "github.com/chatter-project/chatter-server/internal/transport/http"
)

// App wires together the core engine and the transport layer.
type App struct {
	server          *stdhttp.Server
	sweeper         *core.Sweeper
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with the provided configuration. Failing to
// set up the room log directory is a startup failure.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	chatlog, err := roomlog.New(cfg.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("init room log: %w", err)
	}

	registry := core.NewRegistry()
	hub := core.NewHub(registry, chatlog, logger)
	sweeper := core.NewSweeper(hub, cfg.SweepInterval, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		sweeper:         sweeper,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// Run starts the sweeper and the HTTP server, blocking until context
// cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	sweeperCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go a.sweeper.Run(sweeperCtx)

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
