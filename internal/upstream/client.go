package upstream

import (
	"context"
	"log/slog"
	"strings"
)

// Client is the Backend implementation used by the proxy handlers.
type Client struct {
	baseURL   string
	fetcher   *Fetcher
	retry     RetryPolicy
	endpoints Endpoints
	logger    *slog.Logger
}

// Do builds a fresh descriptor for every attempt and runs it through the
// retry policy.
func (c *Client) Do(ctx context.Context, call Call) Outcome {
	target := c.URL(call.Path)
	policy := c.retry.WithMaxAttempts(call.MaxAttempts)

	return policy.Do(ctx, func(ctx context.Context, _ int) Outcome {
		req := NewRequest(call.Method, target, call.Header, call.Body, call.Timeout)
		return c.fetcher.Fetch(ctx, req)
	})
}

// Probe runs endpoint discovery over spec.Paths.
func (c *Client) Probe(ctx context.Context, spec ProbeSpec) ProbeResult {
	prober := NewProber(c.fetcher, c.retry.WithMaxAttempts(spec.MaxAttempts), c.logger)

	build := func(path string) Request {
		return NewRequest(spec.Method, c.URL(path), spec.Header, nil, spec.Timeout)
	}
	return prober.Probe(ctx, spec.Paths, build, spec.Classify)
}

// Endpoints returns the candidate path sets in effect.
func (c *Client) Endpoints() Endpoints {
	return Endpoints{
		Identity:       append([]string(nil), c.endpoints.Identity...),
		UsernameLookup: append([]string(nil), c.endpoints.UsernameLookup...),
	}
}

// URL joins path onto the base URL.
func (c *Client) URL(path string) string {
	if path == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// BaseURL returns the origin all calls are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}
