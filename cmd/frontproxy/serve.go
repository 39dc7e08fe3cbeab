package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesprial/frontproxy/internal/transport"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the proxy server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}

		logger := newLogger(os.Stderr, cfg.SlogLevel())
		slog.SetDefault(logger)

		logger.Info("server configuration loaded", "config", cfg.String())

		backend, err := newBackend(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create upstream client: %w", err)
		}

		eps := backend.Endpoints()
		logger.Info("upstream client initialized",
			"backend", backend.BaseURL(),
			"identity_paths", eps.Identity,
			"username_lookup_paths", eps.UsernameLookup,
			"max_attempts", cfg.RetryMaxAttempts,
		)

		server, _, err := transport.NewTransportServices(&transport.Config{
			ServerConfig: cfg,
			Backend:      backend,
			Logger:       logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create transport services: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverErrCh := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", cfg.Addr)
			if err := server.Start(); err != nil {
				serverErrCh <- err
			}
		}()

		var serveErr error
		select {
		case <-ctx.Done():
			logger.Info("shutdown signal received, stopping server gracefully...")
		case serveErr = <-serverErrCh:
			logger.Error("server error", "error", serveErr)
			stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}

		logger.Info("server stopped successfully")
		return serveErr
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides SERVER_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
