package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetd2005/Forge-Frontend/internal/app"
	"github.com/meetd2005/Forge-Frontend/internal/config"
	"github.com/meetd2005/Forge-Frontend/internal/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsProduction())

			ctx, stop := signal.NotifyContext(
				context.Background(),
				os.Interrupt,
				syscall.SIGTERM,
			)
			defer stop()

			application, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- application.Run()
			}()

			slog.Info("gateway started",
				"port", cfg.AppPort,
				"env", cfg.Environment,
				"upstream", cfg.UpstreamURL,
			)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("shutdown signal received")

			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				10*time.Second,
			)
			defer cancel()

			if err := application.Shutdown(shutdownCtx); err != nil {
				return err
			}

			slog.Info("gateway stopped cleanly")
			return nil
		},
	}
}
