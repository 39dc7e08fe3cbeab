package transport

import (
	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
)

// Re-export errors from transportcore.
var (
	// ErrInvalidBody indicates the inbound request body could not be read or parsed.
	ErrInvalidBody = transportcore.ErrInvalidBody

	// ErrUpstreamUnavailable indicates every upstream attempt failed in transport.
	ErrUpstreamUnavailable = transportcore.ErrUpstreamUnavailable

	// ErrServerClosed indicates the server has been closed and cannot accept requests.
	ErrServerClosed = transportcore.ErrServerClosed
)
