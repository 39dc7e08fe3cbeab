package transportcore

import (
	"errors"
)

// Sentinel errors for transport operations.
// These are used for error identification and testing.
// For creating domain errors with context, wrap these with DomainError from internal/errors.
var (
	// ErrInvalidBody indicates the inbound request body could not be read or parsed.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrUpstreamUnavailable indicates every upstream attempt failed in transport.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = errors.New("server closed")
)
