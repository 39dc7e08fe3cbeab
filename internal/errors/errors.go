// Package errors provides the error taxonomy shared by the proxy layer.
// Every failure the proxy can observe is categorized by one of the sentinel
// kinds below, which the transport layer maps onto boundary HTTP statuses.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the proxy failure taxonomy.
var (
	// ErrTransport indicates the upstream could not be reached (dial, reset, DNS).
	ErrTransport = errors.New("upstream transport failure")

	// ErrTimeout indicates an upstream attempt exceeded its deadline.
	ErrTimeout = errors.New("upstream timeout")

	// ErrUpstream indicates the upstream answered with a non-2xx status.
	ErrUpstream = errors.New("upstream error")

	// ErrNotFound indicates no candidate path confirmed the requested resource.
	ErrNotFound = errors.New("not found")

	// ErrDecode indicates a body could not be decoded as structured data.
	ErrDecode = errors.New("decode failure")

	// ErrUnauthorized indicates the session was rejected by the upstream.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrBadRequest indicates invalid request parameters or format.
	ErrBadRequest = errors.New("bad request")

	// ErrInternal indicates an unexpected failure inside the proxy itself.
	ErrInternal = errors.New("internal error")
)

// DomainError represents a domain-specific error with context.
// It wraps an underlying error and provides additional metadata
// about the domain, operation, and contextual information.
type DomainError struct {
	// Domain identifies the subsystem where the error occurred (e.g., "upstream", "transport").
	Domain string

	// Op identifies the operation that failed (e.g., "Fetch", "Probe").
	Op string

	// Kind is the sentinel error that categorizes this error.
	Kind error

	// Err is the underlying wrapped error, if any.
	Err error

	// Context provides additional key-value pairs for debugging.
	// Values must never carry credentials or request bodies.
	Context map[string]interface{}
}

// New creates a new DomainError.
//
// Parameters:
//   - domain: the subsystem identifier (e.g., "upstream", "transport")
//   - op: the operation that failed
//   - kind: sentinel error indicating the error category
//   - err: underlying error to wrap (may be nil)
func New(domain, op string, kind, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %v: %v", e.Domain, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Domain, e.Op, e.Kind)
}

// Unwrap returns the underlying wrapped error.
// This allows errors.Is and errors.As to work correctly.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error.
// It checks both the Kind field and the wrapped error chain.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// WithContext adds a key-value pair to the error's context and returns the error.
// This allows for method chaining when adding context to errors.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsTransient reports whether err is a transport-level failure that a retry
// could plausibly fix. HTTP error statuses are never transient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrTimeout)
}
