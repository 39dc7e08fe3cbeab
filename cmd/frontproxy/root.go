package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jamesprial/frontproxy/internal/config"
	"github.com/jamesprial/frontproxy/internal/upstream"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "frontproxy",
	Short:         "Resilient proxy between a browser front end and a remote backend",
	Long:          "frontproxy forwards login, registration, identity, user and position requests to a slow or sleeping backend, with per-attempt timeouts, retries and endpoint discovery.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default $"+config.ConfigFileEnv+")")
}

// loadConfig reads the config file named by --config, falling back to the
// environment variable, then applies env overrides.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFile(cfgFile)
	}
	return config.Load()
}

// newLogger builds a text logger for terminals and a JSON logger otherwise.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// newBackend wires the upstream client from the configuration.
func newBackend(cfg *config.Config, logger *slog.Logger) (*upstream.Client, error) {
	return upstream.NewClient(&upstream.Config{
		BaseURL:     cfg.BackendURL,
		MaxAttempts: cfg.RetryMaxAttempts,
		Backoff:     cfg.RetryBackoff,
		Endpoints:   upstream.ResolveEndpoints(cfg.EndpointProbing, cfg.IdentityPath, cfg.UsernameLookupPath),
		Logger:      logger,
	})
}
