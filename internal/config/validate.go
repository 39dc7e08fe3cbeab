package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// envNames maps struct fields to the variable an operator would set.
var envNames = map[string]string{
	"Addr":                "SERVER_ADDR",
	"ReadTimeout":         "SERVER_READ_TIMEOUT",
	"WriteTimeout":        "SERVER_WRITE_TIMEOUT",
	"IdleTimeout":         "SERVER_IDLE_TIMEOUT",
	"BackendURL":          "BACKEND_URL",
	"AuthTimeout":         "AUTH_TIMEOUT",
	"IdentityTimeout":     "IDENTITY_TIMEOUT",
	"ResourceTimeout":     "RESOURCE_TIMEOUT",
	"RetryMaxAttempts":    "RETRY_MAX_ATTEMPTS",
	"RetryBackoff":        "RETRY_BACKOFF",
	"ResourceMaxAttempts": "RESOURCE_MAX_ATTEMPTS",
	"IdentityPath":        "BACKEND_IDENTITY_PATH",
	"UsernameLookupPath":  "BACKEND_USERNAME_LOOKUP_PATH",
	"LogLevel":            "LOG_LEVEL",
}

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validate.Struct(cfg); err != nil {
		return describe(err)
	}

	if err := validateBackend(cfg); err != nil {
		return fmt.Errorf("invalid backend config: %w", err)
	}

	if err := validateServer(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	return nil
}

// describe turns validator errors into messages naming the environment variable.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := envNames[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", name, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", name, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// validateBackend validates the backend-related fields.
func validateBackend(cfg *Config) error {
	parsedURL, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid BACKEND_URL: %w", err)
	}

	// BackendURL must be absolute
	if !parsedURL.IsAbs() || parsedURL.Host == "" {
		return fmt.Errorf("BACKEND_URL must be an absolute URL")
	}

	if parsedURL.Scheme != "https" && parsedURL.Scheme != "http" {
		return fmt.Errorf("BACKEND_URL must use http or https scheme")
	}

	if parsedURL.RawQuery != "" || parsedURL.Fragment != "" {
		return fmt.Errorf("BACKEND_URL must not carry a query or fragment")
	}

	return nil
}

// validateServer validates the server-related fields.
func validateServer(cfg *Config) error {
	// A write timeout shorter than one upstream attempt would cut off the
	// proxied response before the backend could answer.
	if cfg.WriteTimeout == 0 {
		return nil
	}
	longest := max(cfg.AuthTimeout, cfg.IdentityTimeout, cfg.ResourceTimeout)
	if cfg.WriteTimeout < longest {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT (%v) must be at least the longest upstream timeout (%v)", cfg.WriteTimeout, longest)
	}
	return nil
}

// redactURL drops userinfo from a URL for display.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	return u.String()
}
