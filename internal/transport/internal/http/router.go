package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
)

// router implements transportcore.Router using gorilla/mux.
type router struct {
	mux         *mux.Router
	middlewares []transportcore.Middleware
}

// NewRouter creates a new HTTP router backed by gorilla/mux.
// Unmatched paths answer 404 and known paths with the wrong method answer 405.
// Both answers go through the middleware registered with Use.
func NewRouter() transportcore.Router {
	r := &router{
		mux:         mux.NewRouter(),
		middlewares: make([]transportcore.Middleware, 0),
	}
	r.wrapFallbacks()
	return r
}

// Handle registers a handler for the given pattern.
// The handler is wrapped with all currently registered middleware.
func (r *router) Handle(pattern string, handler http.Handler) {
	method, path := splitPattern(pattern)

	// Apply all middleware in order
	wrapped := r.applyMiddleware(handler)

	route := r.mux.Handle(path, wrapped)
	if method != "" {
		route.Methods(method)
	}
}

// HandleFunc registers a handler function for the given pattern.
// The handler is wrapped with all currently registered middleware.
func (r *router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.Handle(pattern, handler)
}

// Use applies middleware to all subsequent route registrations and to the
// 404 and 405 answers. Middleware is applied in the order registered.
func (r *router) Use(middlewares ...transportcore.Middleware) {
	r.middlewares = append(r.middlewares, middlewares...)
	r.wrapFallbacks()
}

func (r *router) wrapFallbacks() {
	r.mux.NotFoundHandler = r.applyMiddleware(http.NotFoundHandler())
	r.mux.MethodNotAllowedHandler = r.applyMiddleware(http.HandlerFunc(methodNotAllowed))
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// ServeHTTP implements http.Handler by delegating to the underlying mux.Router.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// applyMiddleware wraps the handler with all registered middleware.
// Middleware is applied in order, so the first middleware in the list
// is the outermost layer (executes first).
func (r *router) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order so the first middleware
	// registered is the outermost layer
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}

// splitPattern parses "METHOD /path" into its parts. A pattern without a
// method matches every method.
func splitPattern(pattern string) (method, path string) {
	pattern = strings.TrimSpace(pattern)
	if m, p, ok := strings.Cut(pattern, " "); ok && !strings.HasPrefix(m, "/") {
		return strings.ToUpper(m), strings.TrimSpace(p)
	}
	return "", pattern
}
