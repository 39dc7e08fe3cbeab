package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	ierrors "github.com/jamesprial/frontproxy/internal/errors"
	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
	"github.com/jamesprial/frontproxy/internal/upstream"
	"github.com/jamesprial/frontproxy/pkg/api"
)

// MessageAuthUnreachable is sent when every login or register attempt failed in transport.
const MessageAuthUnreachable = "Upstream auth server unreachable (timeout). Please try again shortly."

// authHandler forwards a JSON credential body to a single upstream auth path.
type authHandler struct {
	backend   upstream.Backend
	responder transportcore.ErrorResponder
	opts      Options

	op   string
	path string

	// exposeErr adds the last transport error to the exhaustion body.
	exposeErr bool
}

// NewLoginHandler creates the POST /api/auth/login handler.
func NewLoginHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options) http.Handler {
	return newAuthHandler(backend, responder, opts, "login", upstream.PathLogin, true)
}

// NewRegisterHandler creates the POST /api/auth/register handler.
func NewRegisterHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options) http.Handler {
	return newAuthHandler(backend, responder, opts, "register", upstream.PathRegister, false)
}

func newAuthHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options, op, path string, exposeErr bool) *authHandler {
	if backend == nil {
		panic("backend cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &authHandler{
		backend:   backend,
		responder: responder,
		opts:      opts,
		op:        op,
		path:      path,
		exposeErr: exposeErr,
	}
}

// ServeHTTP relays the credential body. The body is never logged.
func (h *authHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.opts.logger()

	body, err := readJSONBody(w, r)
	if err != nil {
		h.responder.InternalError(w, fmt.Errorf("%s: %w", h.op, err))
		return
	}

	logger.Info("proxying auth request", "op", h.op, "target", h.backend.URL(h.path))

	out := h.backend.Do(h.opts.upstreamContext(w, r), upstream.Call{
		Method:      http.MethodPost,
		Path:        h.path,
		Header:      http.Header{api.HeaderContentType: {api.ContentTypeJSON}},
		Body:        body,
		Timeout:     h.opts.Timeout,
		MaxAttempts: h.opts.MaxAttempts,
	})
	if out.Failed() && !ierrors.IsTransient(out.Err) {
		h.responder.InternalError(w, out.Err)
		return
	}
	if out.Failed() {
		resp := api.MessageResponse{Message: MessageAuthUnreachable}
		if h.exposeErr && out.Err != nil {
			resp.Error = out.Err.Error()
		}
		h.responder.GatewayTimeout(w, resp, out.Err)
		return
	}

	logger.Info("auth upstream answered",
		"op", h.op,
		"status", out.Response.StatusCode,
		"attempts", out.Attempts,
		"set_cookie", len(out.Response.Header.Values(api.HeaderSetCookie)) > 0,
	)
	writePayload(w, out.Response, logger)
}

// readJSONBody reads the inbound body and returns it compacted. A body that
// is not a JSON document is rejected.
func readJSONBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInboundBody))
	if err != nil {
		return nil, ierrors.New("transport", "ReadBody", ierrors.ErrBadRequest, fmt.Errorf("%w: %w", transportcore.ErrInvalidBody, err))
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, ierrors.New("transport", "DecodeBody", ierrors.ErrDecode, fmt.Errorf("%w: %w", transportcore.ErrInvalidBody, err))
	}
	return buf.Bytes(), nil
}
