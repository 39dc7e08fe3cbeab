package handlers

import (
	"errors"
	"net/http"

	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
	"github.com/jamesprial/frontproxy/internal/upstream"
	"github.com/jamesprial/frontproxy/pkg/api"
)

// MessageUsernameUnreachable is sent when no lookup path answered over HTTP.
const MessageUsernameUnreachable = "Failed to contact backend username endpoints (upstream timeout or unreachable)."

var errUsernameMissing = errors.New("username query missing")

// usernameHandler probes the upstream lookup paths for an existing username.
// No caller credentials are forwarded.
type usernameHandler struct {
	backend   upstream.Backend
	responder transportcore.ErrorResponder
	opts      Options
}

// NewCheckUsernameHandler creates the GET /api/auth/check-username handler.
func NewCheckUsernameHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options) http.Handler {
	if backend == nil {
		panic("backend cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &usernameHandler{
		backend:   backend,
		responder: responder,
		opts:      opts,
	}
}

func (h *usernameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.opts.logger()

	username := r.URL.Query().Get("username")
	if username == "" {
		h.responder.BadRequest(w, errUsernameMissing)
		return
	}

	res := h.backend.Probe(h.opts.upstreamContext(w, r), upstream.ProbeSpec{
		Method:      http.MethodGet,
		Paths:       upstream.UsernameQuery(h.backend.Endpoints().UsernameLookup, username),
		Timeout:     h.opts.Timeout,
		Classify:    upstream.ClassifyWith(upstream.UsernameExists(username)),
		MaxAttempts: h.opts.MaxAttempts,
	})

	switch {
	case res.Confirmed():
		writeJSON(w, http.StatusOK, api.UsernameCheckResponse{
			Exists:  true,
			Source:  res.URL,
			Payload: res.Body,
		}, logger)
	case res.Verdict == upstream.VerdictInconclusive:
		writeJSON(w, http.StatusOK, api.UsernameCheckResponse{
			Exists:  false,
			Source:  res.URL,
			Status:  res.Response.StatusCode,
			Payload: res.Body,
		}, logger)
	case res.Unreachable():
		h.responder.GatewayTimeout(w, api.MessageResponse{Message: MessageUsernameUnreachable}, res.LastErr)
	default:
		logger.Info("username not confirmed", "tried", len(res.Tried), "unreachable", res.TransportFailures)
		writeJSON(w, http.StatusOK, api.UsernameCheckResponse{
			Exists: false,
			Tried:  res.Tried,
		}, logger)
	}
}
