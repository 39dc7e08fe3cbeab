// Package upstream implements the resilient side of the proxy: timeout-bounded
// fetches against the remote backend, a fixed-attempt retry policy, endpoint
// probing over candidate paths, response normalization and credential relay.
//
// Nothing in this package holds mutable state shared between requests. A
// single proxy invocation runs its attempts strictly sequentially.
package upstream

import (
	"bytes"
	"context"
	"net/http"
	"time"
)

// Backend is the upstream surface the proxy handlers depend on.
type Backend interface {
	// Do issues a single logical call, retrying transport failures per the
	// call's attempt budget. HTTP error statuses are terminal outcomes.
	Do(ctx context.Context, call Call) Outcome

	// Probe tries candidate paths in order until one confirms or answers
	// inconclusively.
	Probe(ctx context.Context, spec ProbeSpec) ProbeResult

	// Endpoints returns the candidate path sets in effect.
	Endpoints() Endpoints

	// URL joins a backend-relative path onto the configured base URL.
	URL(path string) string
}

// Request is an outbound request descriptor. It is built per attempt and is
// immutable once built: the constructor and the accessors copy headers and body.
type Request struct {
	method  string
	url     string
	header  http.Header
	body    []byte
	timeout time.Duration
}

// NewRequest builds an outbound request descriptor.
// A zero timeout means the attempt is bounded only by the caller's context.
func NewRequest(method, url string, header http.Header, body []byte, timeout time.Duration) Request {
	if method == "" {
		method = http.MethodGet
	}
	return Request{
		method:  method,
		url:     url,
		header:  header.Clone(),
		body:    bytes.Clone(body),
		timeout: timeout,
	}
}

// Method returns the HTTP method.
func (r Request) Method() string { return r.method }

// URL returns the absolute target URL.
func (r Request) URL() string { return r.url }

// Header returns a copy of the outbound headers.
func (r Request) Header() http.Header { return r.header.Clone() }

// Body returns a copy of the outbound body, or nil.
func (r Request) Body() []byte { return bytes.Clone(r.body) }

// Timeout returns the per-attempt deadline.
func (r Request) Timeout() time.Duration { return r.timeout }

// Response is a fully read upstream HTTP response.
type Response struct {
	// URL is the target the answer came from.
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the status is 2xx.
func (r *Response) IsSuccess() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// OutcomeKind enumerates the possible results of one attempt.
type OutcomeKind int

const (
	// OutcomeSuccess means an HTTP response was received, whatever its status.
	OutcomeSuccess OutcomeKind = iota + 1

	// OutcomeTimeout means the attempt deadline elapsed before a response arrived.
	OutcomeTimeout

	// OutcomeTransportError means the request failed below HTTP.
	OutcomeTransportError
)

// String returns a log-friendly name for the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one attempt, or of a retried call.
type Outcome struct {
	Kind OutcomeKind

	// Response is set only when Kind is OutcomeSuccess.
	Response *Response

	// Err is the DomainError describing a timeout or transport failure.
	Err error

	// Attempts is the number of attempts spent producing this outcome.
	Attempts int
}

// Failed reports whether the outcome is a transport-level failure.
func (o Outcome) Failed() bool {
	return o.Kind != OutcomeSuccess
}

// Call describes a logical upstream call made through Backend.Do.
type Call struct {
	Method string

	// Path is relative to the backend base URL and may carry a query string.
	Path string

	Header  http.Header
	Body    []byte
	Timeout time.Duration

	// MaxAttempts overrides the backend's default attempt budget when positive.
	MaxAttempts int
}

// ProbeSpec describes an endpoint discovery run.
type ProbeSpec struct {
	Method string

	// Paths are candidate backend-relative paths, tried in order.
	Paths []string

	Header   http.Header
	Timeout  time.Duration
	Classify Classifier

	// MaxAttempts overrides the backend's default attempt budget when positive.
	MaxAttempts int
}
