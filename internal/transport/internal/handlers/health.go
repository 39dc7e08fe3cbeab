package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
	"github.com/jamesprial/frontproxy/pkg/api"
)

// healthHandler reports liveness of the proxy process. It never contacts
// the upstream, which may be asleep.
type healthHandler struct {
	responder transportcore.ErrorResponder
	logger    *slog.Logger
}

// NewHealthHandler creates a handler for the /health endpoint.
func NewHealthHandler(responder transportcore.ErrorResponder, logger *slog.Logger) http.Handler {
	if responder == nil {
		panic("responder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &healthHandler{
		responder: responder,
		logger:    logger,
	}
}

// ServeHTTP handles GET and HEAD requests for health checks.
func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"}, h.logger)
}
