package handlers

import (
	"net/http"

	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
	"github.com/jamesprial/frontproxy/internal/upstream"
)

// MessageUsersFailed is sent when the user list could not be fetched.
const MessageUsersFailed = "Failed to fetch users"

// usersHandler forwards GET /api/users to the upstream user list.
type usersHandler struct {
	backend   upstream.Backend
	responder transportcore.ErrorResponder
	opts      Options
}

// NewUsersHandler creates the GET /api/users handler.
func NewUsersHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options) http.Handler {
	if backend == nil {
		panic("backend cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &usersHandler{
		backend:   backend,
		responder: responder,
		opts:      opts,
	}
}

func (h *usersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.opts.logger()

	creds := upstream.CredentialsFrom(r.Header)

	out := h.backend.Do(h.opts.upstreamContext(w, r), upstream.Call{
		Method:      http.MethodGet,
		Path:        upstream.PathUsers,
		Header:      creds.Header(),
		Timeout:     h.opts.Timeout,
		MaxAttempts: h.opts.MaxAttempts,
	})
	if out.Failed() {
		h.responder.Error(w, MessageUsersFailed, out.Err)
		return
	}

	logger.Info("users upstream answered",
		"status", out.Response.StatusCode,
		"auth_present", creds.Present(),
	)
	writePayload(w, out.Response, logger)
}
