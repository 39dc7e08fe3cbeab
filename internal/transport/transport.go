package transport

import (
	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
)

// Re-export types from transportcore so callers outside the transport tree
// never need to import it directly.

// Middleware is a function that wraps an http.Handler.
type Middleware = transportcore.Middleware

// Server manages the HTTP server lifecycle.
// Implementations must support graceful shutdown and provide
// access to the bound address after startup.
type Server = transportcore.Server

// Router handles HTTP request routing and middleware composition.
type Router = transportcore.Router

// ErrorResponder writes proxy-generated error responses.
type ErrorResponder = transportcore.ErrorResponder
