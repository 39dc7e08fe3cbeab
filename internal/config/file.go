package config

import (
	"fmt"
	"os"
	"time"

	"github.com/a8m/envsubst"
	"github.com/goccy/go-yaml"
)

// fileConfig is the YAML layout of the optional config file. Pointer
// fields distinguish "absent" from a zero value. Durations are strings
// such as "45s".
type fileConfig struct {
	Server *struct {
		Addr         *string `yaml:"addr"`
		ReadTimeout  *string `yaml:"read_timeout"`
		WriteTimeout *string `yaml:"write_timeout"`
		IdleTimeout  *string `yaml:"idle_timeout"`
		Compression  *bool   `yaml:"compression"`
	} `yaml:"server"`

	Backend *struct {
		URL                *string `yaml:"url"`
		EndpointProbing    *bool   `yaml:"endpoint_probing"`
		IdentityPath       *string `yaml:"identity_path"`
		UsernameLookupPath *string `yaml:"username_lookup_path"`
	} `yaml:"backend"`

	Timeouts *struct {
		Auth     *string `yaml:"auth"`
		Identity *string `yaml:"identity"`
		Resource *string `yaml:"resource"`
	} `yaml:"timeouts"`

	Retry *struct {
		MaxAttempts         *int    `yaml:"max_attempts"`
		Backoff             *string `yaml:"backoff"`
		ResourceMaxAttempts *int    `yaml:"resource_max_attempts"`
	} `yaml:"retry"`

	Log *struct {
		Level *string `yaml:"level"`
	} `yaml:"log"`
}

// applyFile reads path, expands ${VAR} references and overlays the result onto cfg.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	data, err = envsubst.Bytes(data)
	if err != nil {
		return fmt.Errorf("expanding env vars: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return fc.apply(cfg)
}

func (fc *fileConfig) apply(cfg *Config) error {
	if s := fc.Server; s != nil {
		overlay(&cfg.Addr, s.Addr)
		overlay(&cfg.Compression, s.Compression)
		if err := overlayDuration(&cfg.ReadTimeout, s.ReadTimeout, "server.read_timeout"); err != nil {
			return err
		}
		if err := overlayDuration(&cfg.WriteTimeout, s.WriteTimeout, "server.write_timeout"); err != nil {
			return err
		}
		if err := overlayDuration(&cfg.IdleTimeout, s.IdleTimeout, "server.idle_timeout"); err != nil {
			return err
		}
	}

	if b := fc.Backend; b != nil {
		overlay(&cfg.BackendURL, b.URL)
		overlay(&cfg.EndpointProbing, b.EndpointProbing)
		overlay(&cfg.IdentityPath, b.IdentityPath)
		overlay(&cfg.UsernameLookupPath, b.UsernameLookupPath)
	}

	if t := fc.Timeouts; t != nil {
		if err := overlayDuration(&cfg.AuthTimeout, t.Auth, "timeouts.auth"); err != nil {
			return err
		}
		if err := overlayDuration(&cfg.IdentityTimeout, t.Identity, "timeouts.identity"); err != nil {
			return err
		}
		if err := overlayDuration(&cfg.ResourceTimeout, t.Resource, "timeouts.resource"); err != nil {
			return err
		}
	}

	if r := fc.Retry; r != nil {
		overlay(&cfg.RetryMaxAttempts, r.MaxAttempts)
		overlay(&cfg.ResourceMaxAttempts, r.ResourceMaxAttempts)
		if err := overlayDuration(&cfg.RetryBackoff, r.Backoff, "retry.backoff"); err != nil {
			return err
		}
	}

	if l := fc.Log; l != nil {
		overlay(&cfg.LogLevel, l.Level)
	}

	return nil
}

func overlay[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func overlayDuration(dst *time.Duration, src *string, field string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("invalid %s: cannot parse duration %q: %w", field, *src, err)
	}
	*dst = d
	return nil
}
