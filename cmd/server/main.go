package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chatter-project/chatter-server/internal/app"
	"github.com/chatter-project/chatter-server/internal/config"
	"github.com/chatter-project/chatter-server/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath    string
		addr          string
		logLevel      string
		dataDir       string
		sweepInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:          "chatter-server",
		Short:        "Room-based chat hub with WebSocket fan-out and presence eviction",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Local .env, dev only.
			_ = godotenv.Load()

			cfg, cfgPath, err := config.Load(nil, configPath)
			if err != nil {
				return err
			}

			// CLI flags win over file and env values.
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.DataDir = dataDir
			}
			if cmd.Flags().Changed("sweep-interval") {
				cfg.SweepInterval = sweepInterval
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", cfgPath).Msg("configuration loaded")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("server exited with error: %w", err)
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	defaults := config.Default()
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", defaults.Addr, "HTTP listen address")
	cmd.Flags().StringVar(&logLevel, "log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&dataDir, "data-dir", defaults.DataDir, "directory for room logs")
	cmd.Flags().DurationVar(&sweepInterval, "sweep-interval", defaults.SweepInterval, "presence sweep interval")

	return cmd
}
