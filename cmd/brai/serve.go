package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"brai/internal/config"
	"brai/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			logger.Info("Starting BRAI API...", zap.String("version", version), zap.String("config", *configPath))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := server.New(ctx, cfg, version, logger)
			if err != nil {
				return err
			}
			defer srv.Close()

			return srv.Run(ctx)
		},
	}
}
