package upstream

import (
	"net/http"

	ierrors "github.com/jamesprial/frontproxy/internal/errors"
)

// Domain identifier for upstream errors.
const domainUpstream = "upstream"

// NewTimeoutError creates a DomainError for an attempt that hit its deadline.
func NewTimeoutError(op, target string, err error) *ierrors.DomainError {
	return ierrors.New(domainUpstream, op, ierrors.ErrTimeout, err).
		WithContext("target", target)
}

// NewTransportError creates a DomainError for a failure below HTTP.
func NewTransportError(op, target string, err error) *ierrors.DomainError {
	return ierrors.New(domainUpstream, op, ierrors.ErrTransport, err).
		WithContext("target", target)
}

// NewRequestError creates a DomainError for a descriptor that could not be
// turned into an HTTP request. This is a proxy bug, not an upstream failure.
func NewRequestError(op, target string, err error) *ierrors.DomainError {
	return ierrors.New(domainUpstream, op, ierrors.ErrInternal, err).
		WithContext("target", target)
}

// NewStatusError describes an upstream answer outside 2xx. A 401 has kind
// ErrUnauthorized, any other status ErrUpstream. It returns nil for a
// successful or missing response.
func NewStatusError(op string, resp *Response) error {
	if resp == nil || resp.IsSuccess() {
		return nil
	}
	kind := ierrors.ErrUpstream
	if resp.StatusCode == http.StatusUnauthorized {
		kind = ierrors.ErrUnauthorized
	}
	return ierrors.New(domainUpstream, op, kind, nil).
		WithContext("target", resp.URL).
		WithContext("status", resp.StatusCode)
}

// NewNotFoundError describes a probe in which no candidate path confirmed.
func NewNotFoundError(op string, tried int) *ierrors.DomainError {
	return ierrors.New(domainUpstream, op, ierrors.ErrNotFound, nil).
		WithContext("tried", tried)
}
