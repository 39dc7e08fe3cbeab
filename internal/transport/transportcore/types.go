// Package transportcore provides core types, interfaces, and primitives for the transport layer.
// This package exists to break import cycles between the transport package and its internal subpackages.
package transportcore

import (
	"context"
	"net/http"

	"github.com/jamesprial/frontproxy/pkg/api"
)

// Middleware is a function that wraps an http.Handler.
// It can modify the request, response, or perform additional logic
// before or after calling the next handler in the chain.
type Middleware func(http.Handler) http.Handler

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server interface {
	// Start begins serving HTTP requests on the configured address.
	// This is a blocking call that returns when the server stops
	// or encounters an error during startup.
	Start() error

	// Shutdown gracefully shuts down the server without interrupting
	// active connections. It waits for active connections to close
	// or the context to be cancelled/expired.
	Shutdown(ctx context.Context) error

	// Addr returns the address the server is listening on.
	// This is useful when the server is configured to bind to a random port.
	Addr() string
}

// Router handles HTTP request routing and middleware composition.
// It extends http.Handler with pattern-based routing and middleware support.
type Router interface {
	http.Handler

	// Handle registers a handler for the given pattern.
	// Patterns have the form "METHOD /path" or "/path"; path segments in
	// braces ("{id}") are exposed as route variables.
	Handle(pattern string, handler http.Handler)

	// HandleFunc registers a handler function for the given pattern.
	HandleFunc(pattern string, handler http.HandlerFunc)

	// Use applies middleware to all subsequent route registrations.
	// Middleware is applied in the order registered.
	Use(middlewares ...Middleware)
}

// ErrorResponder writes the responses the proxy generates itself, as opposed
// to upstream bodies it passes through.
type ErrorResponder interface {
	// BadRequest sends a 400 Bad Request response with body {"error": err}.
	BadRequest(w http.ResponseWriter, err error)

	// BadGateway sends a 502 Bad Gateway response with body {"message": message}.
	BadGateway(w http.ResponseWriter, message string, err error)

	// GatewayTimeout sends a 504 Gateway Timeout response with the given body.
	// It is used once every upstream attempt has failed in transport.
	GatewayTimeout(w http.ResponseWriter, body api.MessageResponse, err error)

	// InternalError sends a 502 response with body {"message": "Proxy error"}.
	// Failures inside the proxy surface as 502 so the caller can tell them
	// apart from the upstream's own 5xx answers.
	InternalError(w http.ResponseWriter, err error)

	// Error maps err onto its boundary status and sends {"message": message}.
	Error(w http.ResponseWriter, message string, err error)
}
