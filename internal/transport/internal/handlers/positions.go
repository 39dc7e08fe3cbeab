package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	ierrors "github.com/jamesprial/frontproxy/internal/errors"
	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
	"github.com/jamesprial/frontproxy/internal/upstream"
	"github.com/jamesprial/frontproxy/pkg/api"
)

const (
	messageProxyError = "Proxy error"

	// MessagePositionIDRequired is sent when DELETE carries no position id.
	MessagePositionIDRequired = "Position ID is required"
)

// positionsHandler forwards the position routes with a single attempt
// budget by default, since create and delete are not idempotent.
type positionsHandler struct {
	backend   upstream.Backend
	responder transportcore.ErrorResponder
	opts      Options
}

func newPositionsHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options) *positionsHandler {
	if backend == nil {
		panic("backend cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &positionsHandler{
		backend:   backend,
		responder: responder,
		opts:      opts,
	}
}

// NewListPositionsHandler creates the GET /api/positions handler.
func NewListPositionsHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options) http.Handler {
	return http.HandlerFunc(newPositionsHandler(backend, responder, opts).list)
}

// NewCreatePositionHandler creates the POST /api/positions handler.
// The inbound body is forwarded as is.
func NewCreatePositionHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options) http.Handler {
	return http.HandlerFunc(newPositionsHandler(backend, responder, opts).create)
}

// NewDeletePositionHandler creates the DELETE /api/positions/{id} handler.
// Only the relay allow-list of inbound headers reaches the upstream, and the
// upstream body is returned byte for byte.
func NewDeletePositionHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options) http.Handler {
	return http.HandlerFunc(newPositionsHandler(backend, responder, opts).delete)
}

func (h *positionsHandler) list(w http.ResponseWriter, r *http.Request) {
	header := upstream.CredentialsFrom(r.Header).Header()
	out := h.call(w, r, http.MethodGet, upstream.PathPositions, header, nil)
	if out.Failed() {
		h.responder.Error(w, messageProxyError, out.Err)
		return
	}
	writeNegotiated(w, out.Response, false, h.opts.logger())
}

func (h *positionsHandler) create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInboundBody))
	if err != nil {
		h.responder.InternalError(w, ierrors.New("transport", "ReadBody", ierrors.ErrInternal, err))
		return
	}

	contentType := r.Header.Get(api.HeaderContentType)
	if contentType == "" {
		contentType = api.ContentTypeJSON
	}
	header := upstream.CredentialsFrom(r.Header).Header()
	header.Set(api.HeaderContentType, contentType)

	out := h.call(w, r, http.MethodPost, upstream.PathPositions, header, body)
	if out.Failed() {
		h.responder.Error(w, messageProxyError, out.Err)
		return
	}
	writeNegotiated(w, out.Response, true, h.opts.logger())
}

func (h *positionsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeJSON(w, http.StatusBadRequest, api.MessageResponse{Message: MessagePositionIDRequired}, h.opts.logger())
		return
	}

	path := upstream.PositionPath(id)
	h.opts.logger().Info("forwarding position delete", "target", h.backend.URL(path))

	out := h.call(w, r, http.MethodDelete, path, upstream.RelayIn(r.Header), nil)
	if out.Failed() {
		h.responder.Error(w, messageProxyError, fmt.Errorf("deleting position: %w", out.Err))
		return
	}
	writeRaw(w, out.Response, h.opts.logger())
}

func (h *positionsHandler) call(w http.ResponseWriter, r *http.Request, method, path string, header http.Header, body []byte) upstream.Outcome {
	return h.backend.Do(h.opts.upstreamContext(w, r), upstream.Call{
		Method:      method,
		Path:        path,
		Header:      header,
		Body:        body,
		Timeout:     h.opts.Timeout,
		MaxAttempts: h.opts.MaxAttempts,
	})
}
