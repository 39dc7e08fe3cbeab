package upstream

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds the configuration needed to build a Client.
type Config struct {
	// BaseURL is the backend origin. Trailing slashes are stripped.
	BaseURL string

	// MaxAttempts is the default attempt budget per call.
	MaxAttempts int

	// Backoff is the linear backoff step between attempts.
	Backoff time.Duration

	// Endpoints are the candidate path sets for probed operations.
	// A zero value selects the full heuristic lists.
	Endpoints Endpoints

	// HTTPClient overrides the default transport. Optional.
	HTTPClient Doer

	// Sleep overrides the backoff sleeper. Optional; used by tests.
	Sleep Sleeper

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewClient creates a Client from the configuration.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("backend base url must be absolute")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}

	retry := RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     cfg.Backoff,
		Sleep:       cfg.Sleep,
		Logger:      logger,
	}
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = DefaultMaxAttempts
	}

	endpoints := cfg.Endpoints
	if len(endpoints.Identity) == 0 {
		endpoints.Identity = append([]string(nil), IdentityPaths...)
	}
	if len(endpoints.UsernameLookup) == 0 {
		endpoints.UsernameLookup = append([]string(nil), UsernameLookupPaths...)
	}

	return &Client{
		baseURL:   baseURL,
		fetcher:   NewFetcher(httpClient, logger),
		retry:     retry,
		endpoints: endpoints,
		logger:    logger,
	}, nil
}

// NewHTTPClient returns the outbound HTTP client. It has no overall timeout
// (every attempt carries its own deadline) and never follows redirects, so
// the upstream's 3xx and its cookies reach the caller unchanged.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
