package transport

import (
	"context"

	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
)

// RequestIDContextKey is the context key for the per-request correlation id.
const RequestIDContextKey = transportcore.RequestIDContextKey

// RequestIDFromContext extracts the request id set by the request id middleware.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return transportcore.RequestIDFromContext(ctx)
}

// ContextWithRequestID returns a new context carrying the request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return transportcore.ContextWithRequestID(ctx, id)
}
