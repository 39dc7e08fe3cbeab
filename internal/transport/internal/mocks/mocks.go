// Package mocks provides mock implementations for testing the transport layer.
package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	ierrors "github.com/jamesprial/frontproxy/internal/errors"
	"github.com/jamesprial/frontproxy/internal/upstream"
	"github.com/jamesprial/frontproxy/pkg/api"
)

// Backend is a mock implementation of upstream.Backend.
// It records every call and probe it receives.
type Backend struct {
	DoFunc    func(ctx context.Context, call upstream.Call) upstream.Outcome
	ProbeFunc func(ctx context.Context, spec upstream.ProbeSpec) upstream.ProbeResult

	// EndpointSet is returned by Endpoints. A zero value yields the full
	// heuristic lists.
	EndpointSet upstream.Endpoints

	// BaseURL is prefixed by URL. Defaults to "http://backend.test".
	BaseURL string

	mu     sync.Mutex
	calls  []upstream.Call
	probes []upstream.ProbeSpec
}

// Do records the call and delegates to DoFunc. Without DoFunc it answers 200 {}.
func (m *Backend) Do(ctx context.Context, call upstream.Call) upstream.Outcome {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	if m.DoFunc != nil {
		return m.DoFunc(ctx, call)
	}
	return JSONOutcome(http.StatusOK, `{}`)
}

// Probe records the spec and delegates to ProbeFunc. Without ProbeFunc it
// reports NotFound with every path tried.
func (m *Backend) Probe(ctx context.Context, spec upstream.ProbeSpec) upstream.ProbeResult {
	m.mu.Lock()
	m.probes = append(m.probes, spec)
	m.mu.Unlock()

	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, spec)
	}
	return upstream.ProbeResult{
		Verdict: upstream.VerdictNotFound,
		Tried:   append([]string(nil), spec.Paths...),
	}
}

// Endpoints returns EndpointSet, falling back to the full heuristic lists.
func (m *Backend) Endpoints() upstream.Endpoints {
	eps := m.EndpointSet
	if len(eps.Identity) == 0 {
		eps.Identity = append([]string(nil), upstream.IdentityPaths...)
	}
	if len(eps.UsernameLookup) == 0 {
		eps.UsernameLookup = append([]string(nil), upstream.UsernameLookupPaths...)
	}
	return eps
}

// URL joins path onto BaseURL.
func (m *Backend) URL(path string) string {
	base := m.BaseURL
	if base == "" {
		base = "http://backend.test"
	}
	return strings.TrimRight(base, "/") + path
}

// Calls returns the calls received so far.
func (m *Backend) Calls() []upstream.Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]upstream.Call(nil), m.calls...)
}

// Probes returns the probe specs received so far.
func (m *Backend) Probes() []upstream.ProbeSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]upstream.ProbeSpec(nil), m.probes...)
}

// Outcome builds a successful outcome with the given status, headers and body.
func Outcome(status int, header http.Header, body string) upstream.Outcome {
	if header == nil {
		header = make(http.Header)
	}
	return upstream.Outcome{
		Kind:     upstream.OutcomeSuccess,
		Response: &upstream.Response{StatusCode: status, Header: header, Body: []byte(body)},
		Attempts: 1,
	}
}

// JSONOutcome builds a successful outcome with a JSON content type.
func JSONOutcome(status int, body string) upstream.Outcome {
	return Outcome(status, http.Header{api.HeaderContentType: {api.ContentTypeJSON}}, body)
}

// FailedOutcome builds an outcome whose attempts were exhausted in transport.
func FailedOutcome(kind upstream.OutcomeKind, attempts int) upstream.Outcome {
	var err error
	if kind == upstream.OutcomeTimeout {
		err = upstream.NewTimeoutError("Fetch", "http://backend.test", context.DeadlineExceeded)
	} else {
		err = upstream.NewTransportError("Fetch", "http://backend.test", errConnRefused)
	}
	return upstream.Outcome{Kind: kind, Err: err, Attempts: attempts}
}

var errConnRefused = errors.New("dial tcp 127.0.0.1:1: connect: connection refused")

// ErrorResponder is a mock implementation of transportcore.ErrorResponder.
// It records the last call of each kind and writes a minimal JSON body.
type ErrorResponder struct {
	mu sync.Mutex

	BadRequestCalled     bool
	BadRequestErr        error
	BadGatewayCalled     bool
	BadGatewayMessage    string
	GatewayTimeoutCalled bool
	GatewayTimeoutBody   api.MessageResponse
	InternalCalled       bool
	InternalErr          error
	ErrorCalled          bool
	ErrorMessage         string
	ErrorErr             error
}

// BadRequest records the call and writes a 400 response.
func (m *ErrorResponder) BadRequest(w http.ResponseWriter, err error) {
	m.mu.Lock()
	m.BadRequestCalled = true
	m.BadRequestErr = err
	m.mu.Unlock()

	msg := "bad request"
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: msg})
}

// BadGateway records the call and writes a 502 response.
func (m *ErrorResponder) BadGateway(w http.ResponseWriter, message string, err error) {
	m.mu.Lock()
	m.BadGatewayCalled = true
	m.BadGatewayMessage = message
	m.mu.Unlock()

	writeJSON(w, http.StatusBadGateway, api.MessageResponse{Message: message})
}

// GatewayTimeout records the call and writes a 504 response.
func (m *ErrorResponder) GatewayTimeout(w http.ResponseWriter, body api.MessageResponse, err error) {
	m.mu.Lock()
	m.GatewayTimeoutCalled = true
	m.GatewayTimeoutBody = body
	m.mu.Unlock()

	writeJSON(w, http.StatusGatewayTimeout, body)
}

// InternalError records the call and writes a 502 response.
func (m *ErrorResponder) InternalError(w http.ResponseWriter, err error) {
	m.mu.Lock()
	m.InternalCalled = true
	m.InternalErr = err
	m.mu.Unlock()

	writeJSON(w, http.StatusBadGateway, api.MessageResponse{Message: "Proxy error"})
}

// Error records the call and writes a 504 for transient errors, 502 otherwise.
func (m *ErrorResponder) Error(w http.ResponseWriter, message string, err error) {
	m.mu.Lock()
	m.ErrorCalled = true
	m.ErrorMessage = message
	m.ErrorErr = err
	m.mu.Unlock()

	status := http.StatusBadGateway
	if ierrors.IsTransient(err) {
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, api.MessageResponse{Message: message})
}

// Reset clears all recorded state.
func (m *ErrorResponder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.BadRequestCalled = false
	m.BadRequestErr = nil
	m.BadGatewayCalled = false
	m.BadGatewayMessage = ""
	m.GatewayTimeoutCalled = false
	m.GatewayTimeoutBody = api.MessageResponse{}
	m.InternalCalled = false
	m.InternalErr = nil
	m.ErrorCalled = false
	m.ErrorMessage = ""
	m.ErrorErr = nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set(api.HeaderContentType, api.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
