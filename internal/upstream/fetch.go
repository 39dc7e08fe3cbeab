package upstream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher issues single outbound requests bounded by a hard deadline.
type Fetcher struct {
	client Doer
	logger *slog.Logger
}

// NewFetcher creates a Fetcher.
// If client is nil, http.DefaultClient is used. If logger is nil, it uses the default slog logger.
func NewFetcher(client Doer, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client: client,
		logger: logger,
	}
}

// Fetch performs one attempt described by req.
//
// A deadline of req.Timeout() starts with the attempt and covers reading the
// whole body. If it elapses the in-flight call is cancelled and the outcome is
// OutcomeTimeout. The deadline is released on every exit path.
//
// Only the method and target are logged; headers and bodies may carry credentials.
func (f *Fetcher) Fetch(ctx context.Context, req Request) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	var cancel context.CancelFunc
	if req.Timeout() > 0 {
		ctx, cancel = context.WithTimeout(ctx, req.Timeout())
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	var body io.Reader
	if b := req.Body(); b != nil {
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), req.URL(), body)
	if err != nil {
		return Outcome{
			Kind: OutcomeTransportError,
			Err:  NewRequestError("Fetch", req.URL(), err),
		}
	}
	httpReq.Header = req.Header()

	f.logger.Debug("upstream request",
		"method", req.Method(),
		"target", req.URL(),
	)

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return f.failure(ctx, req, err, start)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return f.failure(ctx, req, err, start)
	}

	f.logger.Info("upstream response",
		"method", req.Method(),
		"target", req.URL(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return Outcome{
		Kind: OutcomeSuccess,
		Response: &Response{
			URL:        req.URL(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       data,
		},
	}
}

// failure classifies a failed attempt as a timeout or a transport error.
func (f *Fetcher) failure(ctx context.Context, req Request, err error, start time.Time) Outcome {
	kind := OutcomeTransportError
	if isTimeout(ctx, err) {
		kind = OutcomeTimeout
	}

	f.logger.Warn("upstream attempt failed",
		"method", req.Method(),
		"target", req.URL(),
		"reason", kind.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if kind == OutcomeTimeout {
		return Outcome{Kind: kind, Err: NewTimeoutError("Fetch", req.URL(), err)}
	}
	return Outcome{Kind: kind, Err: NewTransportError("Fetch", req.URL(), err)}
}

// isTimeout reports whether err was caused by the attempt deadline or by a
// transport-level timeout (dial, TLS handshake, response headers).
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
