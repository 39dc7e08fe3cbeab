package handlers

import (
	"net/http"

	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
	"github.com/jamesprial/frontproxy/internal/upstream"
	"github.com/jamesprial/frontproxy/pkg/api"
)

// MessageIdentityUnreachable is sent when no identity path answered and no
// fallback identity could be decoded.
const MessageIdentityUnreachable = "Failed to contact backend user endpoints (upstream timeout or unreachable)."

// identityHandler resolves the caller's identity against the upstream.
type identityHandler struct {
	backend   upstream.Backend
	responder transportcore.ErrorResponder
	opts      Options
}

// NewIdentityHandler creates the GET /api/user handler.
//
// The identity paths are probed with the caller's Authorization header. Any
// 2xx answer is passed through; any other non-404 answer is passed through
// as well. When no path answers, a username decoded from the unverified
// token payload is returned as display data, or 504 if there is none.
func NewIdentityHandler(backend upstream.Backend, responder transportcore.ErrorResponder, opts Options) http.Handler {
	if backend == nil {
		panic("backend cannot be nil")
	}
	if responder == nil {
		panic("responder cannot be nil")
	}
	return &identityHandler{
		backend:   backend,
		responder: responder,
		opts:      opts,
	}
}

func (h *identityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.opts.logger()

	creds := upstream.CredentialsFrom(r.Header)
	if !creds.Present() {
		logger.Debug("identity lookup without credentials")
	}

	res := h.backend.Probe(h.opts.upstreamContext(w, r), upstream.ProbeSpec{
		Method:      http.MethodGet,
		Paths:       h.backend.Endpoints().Identity,
		Header:      creds.Header(),
		Timeout:     h.opts.Timeout,
		Classify:    upstream.ClassifyWith(upstream.AnyPayload),
		MaxAttempts: h.opts.MaxAttempts,
	})

	if res.Verdict == upstream.VerdictConfirmed || res.Verdict == upstream.VerdictInconclusive {
		writePayload(w, res.Response, logger)
		return
	}

	if identity, ok := upstream.DecodeFallbackIdentity(creds.BearerToken()); ok {
		logger.Warn("serving unverified fallback identity",
			"claim", identity.Claim,
			"tried", len(res.Tried),
			"unreachable", res.TransportFailures,
		)
		writeJSON(w, http.StatusOK, api.FallbackIdentityResponse{Username: identity.Username}, logger)
		return
	}

	err := res.Err()
	if res.Unreachable() && res.LastErr == nil {
		err = transportcore.ErrUpstreamUnavailable
	}
	h.responder.GatewayTimeout(w, api.MessageResponse{Message: MessageIdentityUnreachable}, err)
}
