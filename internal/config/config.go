// Package config provides configuration management for the proxy.
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables, which always win.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ConfigFileEnv names the environment variable that points at an optional YAML file.
const ConfigFileEnv = "FRONTPROXY_CONFIG"

// DefaultBackendURL is the backend origin used when none is configured.
const DefaultBackendURL = "https://nestjsbladserver.onrender.com"

// Config holds the complete proxy configuration in a flat structure.
type Config struct {
	// Server settings
	// Addr is the address to bind the HTTP server (e.g., ":8080").
	Addr string `validate:"required"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `validate:"gt=0"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Zero disables it.
	WriteTimeout time.Duration `validate:"gte=0"`

	// IdleTimeout is the maximum duration to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration `validate:"gte=0"`

	// Backend settings
	// BackendURL is the origin every upstream call is sent to. Trailing
	// slashes are stripped.
	BackendURL string `validate:"required,url"`

	// AuthTimeout bounds each login or register attempt.
	AuthTimeout time.Duration `validate:"gt=0"`

	// IdentityTimeout bounds each identity or username lookup attempt.
	IdentityTimeout time.Duration `validate:"gt=0"`

	// ResourceTimeout bounds each users or positions attempt.
	ResourceTimeout time.Duration `validate:"gt=0"`

	// RetryMaxAttempts is the attempt budget for auth and probe calls.
	RetryMaxAttempts int `validate:"min=1,max=10"`

	// RetryBackoff is the linear backoff step between attempts.
	RetryBackoff time.Duration `validate:"gte=0"`

	// ResourceMaxAttempts is the attempt budget for resource routes, which
	// include non-idempotent writes.
	ResourceMaxAttempts int `validate:"min=1,max=10"`

	// EndpointProbing enables the multi-path candidate lists. When false only
	// the canonical path of each list is tried.
	EndpointProbing bool

	// IdentityPath pins the identity lookup to a single backend path.
	IdentityPath string `validate:"omitempty,startswith=/"`

	// UsernameLookupPath pins the username lookup to a single path prefix,
	// for example "/users?username=".
	UsernameLookupPath string `validate:"omitempty,startswith=/"`

	// Compression enables gzip compression of proxy responses.
	Compression bool

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:                ":8080",
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        120 * time.Second,
		IdleTimeout:         120 * time.Second,
		BackendURL:          DefaultBackendURL,
		AuthTimeout:         60 * time.Second,
		IdentityTimeout:     45 * time.Second,
		ResourceTimeout:     30 * time.Second,
		RetryMaxAttempts:    3,
		RetryBackoff:        500 * time.Millisecond,
		ResourceMaxAttempts: 1,
		EndpointProbing:     true,
		Compression:         true,
		LogLevel:            "info",
	}
}

// Load reads configuration from the file named by FRONTPROXY_CONFIG (if any)
// and from environment variables, then validates it.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile is Load with an explicit config file path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides cfg with every environment variable that is set.
func applyEnv(cfg *Config) error {
	setString("SERVER_ADDR", &cfg.Addr)
	setString("BACKEND_URL", &cfg.BackendURL)
	setString("BACKEND_IDENTITY_PATH", &cfg.IdentityPath)
	setString("BACKEND_USERNAME_LOOKUP_PATH", &cfg.UsernameLookupPath)
	setString("LOG_LEVEL", &cfg.LogLevel)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.IdleTimeout},
		{"AUTH_TIMEOUT", &cfg.AuthTimeout},
		{"IDENTITY_TIMEOUT", &cfg.IdentityTimeout},
		{"RESOURCE_TIMEOUT", &cfg.ResourceTimeout},
		{"RETRY_BACKOFF", &cfg.RetryBackoff},
	}
	for _, d := range durations {
		if err := setDuration(d.key, d.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"RETRY_MAX_ATTEMPTS", &cfg.RetryMaxAttempts},
		{"RESOURCE_MAX_ATTEMPTS", &cfg.ResourceMaxAttempts},
	}
	for _, i := range ints {
		if err := setInt(i.key, i.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", i.key, err)
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"BACKEND_ENDPOINT_PROBING", &cfg.EndpointProbing},
		{"RESPONSE_COMPRESSION", &cfg.Compression},
	}
	for _, b := range bools {
		if err := setBool(b.key, b.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", b.key, err)
		}
	}

	return nil
}

// setString overwrites dst when the environment variable is set and non-empty.
func setString(key string, dst *string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

// setDuration parses a duration from an environment variable.
// An unset variable leaves dst unchanged.
func setDuration(key string, dst *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("cannot parse duration %q: %w", value, err)
	}
	*dst = d
	return nil
}

func setInt(key string, dst *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("cannot parse integer %q: %w", value, err)
	}
	*dst = n
	return nil
}

func setBool(key string, dst *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("cannot parse boolean %q: %w", value, err)
	}
	*dst = b
	return nil
}

// SlogLevel maps LogLevel onto a slog level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// String returns a string representation of the configuration (for debugging).
// It holds no credentials; the backend URL is printed without userinfo.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, BackendURL: %s, ReadTimeout: %v, WriteTimeout: %v, IdleTimeout: %v, AuthTimeout: %v, IdentityTimeout: %v, ResourceTimeout: %v, RetryMaxAttempts: %d, RetryBackoff: %v, ResourceMaxAttempts: %d, EndpointProbing: %t, IdentityPath: %q, UsernameLookupPath: %q, Compression: %t, LogLevel: %s}",
		c.Addr, redactURL(c.BackendURL), c.ReadTimeout, c.WriteTimeout, c.IdleTimeout,
		c.AuthTimeout, c.IdentityTimeout, c.ResourceTimeout,
		c.RetryMaxAttempts, c.RetryBackoff, c.ResourceMaxAttempts,
		c.EndpointProbing, c.IdentityPath, c.UsernameLookupPath,
		c.Compression, c.LogLevel)
}
