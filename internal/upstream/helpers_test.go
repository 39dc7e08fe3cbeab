package upstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// doerFunc adapts a function to the Doer interface.
type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// newResponse builds an *http.Response for fake doers.
func newResponse(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// errConnRefused stands in for a dial failure.
var errConnRefused = errors.New("dial tcp 127.0.0.1:1: connect: connection refused")

// blockingDoer waits until the request context ends, like an upstream that never answers.
func blockingDoer() doerFunc {
	return func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}
}

// routeDoer answers by request path+query and records the order of requests.
type routeDoer struct {
	mu     sync.Mutex
	routes map[string]func(req *http.Request) (*http.Response, error)
	calls  []string
}

func newRouteDoer() *routeDoer {
	return &routeDoer{routes: make(map[string]func(req *http.Request) (*http.Response, error))}
}

func (d *routeDoer) handle(pathAndQuery string, fn func(req *http.Request) (*http.Response, error)) {
	d.routes[pathAndQuery] = fn
}

func (d *routeDoer) Do(req *http.Request) (*http.Response, error) {
	key := req.URL.RequestURI()

	d.mu.Lock()
	d.calls = append(d.calls, key)
	fn, ok := d.routes[key]
	d.mu.Unlock()

	if !ok {
		return newResponse(http.StatusNotFound, `{"message":"Cannot GET"}`, nil), nil
	}
	return fn(req)
}

func (d *routeDoer) requests() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *routeDoer) count(pathAndQuery string) int {
	n := 0
	for _, c := range d.requests() {
		if c == pathAndQuery {
			n++
		}
	}
	return n
}

// recordingSleeper records requested delays without waiting.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// testLogHandler captures log entries for testing.
type testLogHandler struct {
	mu      *sync.Mutex
	entries *[]map[string]any
}

func newTestLogger() (*slog.Logger, *testLogHandler) {
	entries := make([]map[string]any, 0)
	h := &testLogHandler{mu: &sync.Mutex{}, entries: &entries}
	return slog.New(h), h
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := map[string]any{
		"level":   r.Level.String(),
		"message": r.Message,
	}
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	*h.entries = append(*h.entries, entry)
	h.mu.Unlock()
	return nil
}

func (h *testLogHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *testLogHandler) WithGroup(_ string) slog.Handler {
	return h
}

// contains reports whether any captured entry mentions s in a message or value.
func (h *testLogHandler) contains(s string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, entry := range *h.entries {
		for _, v := range entry {
			if str, ok := v.(string); ok && strings.Contains(str, s) {
				return true
			}
		}
	}
	return false
}
