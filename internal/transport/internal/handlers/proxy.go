// Package handlers provides the HTTP handlers for the proxy routes.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamesprial/frontproxy/internal/upstream"
	"github.com/jamesprial/frontproxy/pkg/api"
)

// maxInboundBody caps request bodies read from the browser.
const maxInboundBody = 1 << 20

// writeSlack is added to a handler's budget when it lifts the write deadline.
const writeSlack = 5 * time.Second

// Options tunes the upstream calls a handler makes.
type Options struct {
	// Timeout bounds each upstream attempt.
	Timeout time.Duration

	// MaxAttempts overrides the backend's default attempt budget when positive.
	MaxAttempts int

	// Budget is the longest the handler's upstream work can take. When
	// positive, the connection's write deadline is moved past it so a
	// server-wide write timeout cannot cut off a 504 or fallback answer.
	Budget time.Duration

	// Logger receives handler logs. If nil, the default slog logger is used.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// upstreamContext keeps request-scoped values but not cancellation: an
// upstream call runs to its own deadline even if the browser goes away.
// It also lifts the write deadline to cover o.Budget.
func (o Options) upstreamContext(w http.ResponseWriter, r *http.Request) context.Context {
	if o.Budget > 0 {
		err := http.NewResponseController(w).SetWriteDeadline(time.Now().Add(o.Budget + writeSlack))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			o.logger().Warn("failed to extend write deadline", "error", err)
		}
	}
	return context.WithoutCancel(r.Context())
}

// writePayload answers with the upstream status and its normalized body as
// JSON. An opaque body is sent as a JSON string. Only Set-Cookie is relayed.
func writePayload(w http.ResponseWriter, resp *upstream.Response, logger *slog.Logger) {
	logPassThrough(logger, resp)
	relaySetCookie(resp.Header, w.Header())
	w.Header().Set(api.HeaderContentType, api.ContentTypeJSON)
	w.WriteHeader(resp.StatusCode)

	data, err := upstream.Normalize(resp.Body).MarshalJSON()
	if err != nil {
		logger.Error("failed to encode upstream payload", "error", err)
		return
	}
	_, _ = w.Write(data)
}

// writeNegotiated answers with the upstream status, sending a structured body
// as JSON and an opaque one as plain text.
func writeNegotiated(w http.ResponseWriter, resp *upstream.Response, withCookies bool, logger *slog.Logger) {
	logPassThrough(logger, resp)
	if withCookies {
		relaySetCookie(resp.Header, w.Header())
	}

	body := upstream.Normalize(resp.Body)
	if body.Structured {
		w.Header().Set(api.HeaderContentType, api.ContentTypeJSON)
	} else {
		w.Header().Set(api.HeaderContentType, api.ContentTypeText)
	}
	w.WriteHeader(resp.StatusCode)

	data, _ := body.MarshalJSON()
	if !body.Structured {
		data = body.Raw
	}
	_, _ = w.Write(data)
}

// writeRaw answers with the upstream status and body bytes untouched,
// relaying Content-Type and Set-Cookie.
func writeRaw(w http.ResponseWriter, resp *upstream.Response, logger *slog.Logger) {
	logPassThrough(logger, resp)
	upstream.RelayOut(resp.Header, w.Header())
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

// logPassThrough records an upstream error status that is relayed unchanged.
func logPassThrough(logger *slog.Logger, resp *upstream.Response) {
	if err := upstream.NewStatusError("Relay", resp); err != nil {
		logger.Info("relaying upstream error status", "status", resp.StatusCode, "error", err)
	}
}

func relaySetCookie(src, dst http.Header) {
	if cookies := src.Values(api.HeaderSetCookie); len(cookies) > 0 {
		dst[http.CanonicalHeaderKey(api.HeaderSetCookie)] = append([]string(nil), cookies...)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set(api.HeaderContentType, api.ContentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
