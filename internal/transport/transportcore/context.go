package transportcore

import (
	"context"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// RequestIDContextKey is the context key for the per-request correlation id.
	RequestIDContextKey contextKey = "request_id"
)

// RequestIDFromContext extracts the request id from the context.
// Returns "" and false if no id is present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(RequestIDContextKey).(string)
	return id, ok && id != ""
}

// ContextWithRequestID returns a new context carrying the request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, RequestIDContextKey, id)
}
