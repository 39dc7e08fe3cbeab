package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jamesprial/frontproxy/internal/config"
	"github.com/jamesprial/frontproxy/internal/transport/internal/handlers"
	transporthttp "github.com/jamesprial/frontproxy/internal/transport/internal/http"
	"github.com/jamesprial/frontproxy/internal/transport/internal/middleware"
	"github.com/jamesprial/frontproxy/internal/upstream"
	"github.com/jamesprial/frontproxy/pkg/api"
)

// NewServer creates a configured HTTP server.
// The server is configured with timeouts from the config and serves handler.
func NewServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) Server {
	return transporthttp.NewServer(cfg, handler, logger)
}

// NewRouter creates a new HTTP router backed by gorilla/mux.
func NewRouter() Router {
	return transporthttp.NewRouter()
}

// NewErrorResponder creates the responder for proxy-generated errors.
func NewErrorResponder(logger *slog.Logger) ErrorResponder {
	return transporthttp.NewErrorResponder(logger)
}

// NewLoggingMiddleware creates request logging middleware.
// If logger is nil, it uses the default slog logger.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return middleware.NewLoggingMiddleware(logger)
}

// NewRecoveryMiddleware creates panic recovery middleware.
// It recovers from panics and answers 502 "Proxy error".
// If logger is nil, it uses the default slog logger.
func NewRecoveryMiddleware(responder ErrorResponder, logger *slog.Logger) Middleware {
	return middleware.NewRecoveryMiddleware(responder, logger)
}

// NewRequestIDMiddleware creates middleware that assigns X-Request-ID.
func NewRequestIDMiddleware() Middleware {
	return middleware.NewRequestIDMiddleware()
}

// NewCompressionMiddleware creates gzip response compression middleware.
func NewCompressionMiddleware() (Middleware, error) {
	return middleware.NewCompressionMiddleware()
}

// Config holds the configuration needed for the transport layer.
type Config struct {
	// ServerConfig is the server configuration.
	ServerConfig *config.Config

	// Backend is the upstream the handlers proxy to.
	Backend upstream.Backend

	// Logger is used by every transport component. If nil, the default slog
	// logger is used.
	Logger *slog.Logger
}

// NewTransportServices creates all transport layer services from the configuration.
// It wires the router, middleware and every proxy route, and returns a server
// ready to Start.
func NewTransportServices(cfg *Config) (Server, Router, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.ServerConfig == nil {
		return nil, nil, fmt.Errorf("server config cannot be nil")
	}
	if cfg.Backend == nil {
		return nil, nil, fmt.Errorf("backend cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sc := cfg.ServerConfig

	responder := NewErrorResponder(logger)

	chain := []Middleware{
		NewRecoveryMiddleware(responder, logger),
		NewRequestIDMiddleware(),
		NewLoggingMiddleware(logger),
	}
	if sc.Compression {
		compression, err := NewCompressionMiddleware()
		if err != nil {
			return nil, nil, err
		}
		chain = append(chain, compression)
	}

	// Budgets cover every attempt timing out, across every candidate path
	// for probed routes.
	retry := upstream.RetryPolicy{MaxAttempts: sc.RetryMaxAttempts, Backoff: sc.RetryBackoff}
	eps := cfg.Backend.Endpoints()

	auth := handlers.Options{
		Timeout: sc.AuthTimeout,
		Budget:  retry.Budget(sc.AuthTimeout),
		Logger:  logger,
	}
	identity := handlers.Options{
		Timeout: sc.IdentityTimeout,
		Budget:  time.Duration(max(len(eps.Identity), 1)) * retry.Budget(sc.IdentityTimeout),
		Logger:  logger,
	}
	username := handlers.Options{
		Timeout: sc.IdentityTimeout,
		Budget:  time.Duration(max(len(eps.UsernameLookup), 1)) * retry.Budget(sc.IdentityTimeout),
		Logger:  logger,
	}
	resource := handlers.Options{
		Timeout:     sc.ResourceTimeout,
		MaxAttempts: sc.ResourceMaxAttempts,
		Budget:      retry.WithMaxAttempts(sc.ResourceMaxAttempts).Budget(sc.ResourceTimeout),
		Logger:      logger,
	}

	router := NewRouter()
	router.Use(chain...)

	health := handlers.NewHealthHandler(responder, logger)
	router.Handle("GET "+api.RouteHealth, health)
	router.Handle("HEAD "+api.RouteHealth, health)

	router.Handle("POST "+api.RouteLogin, handlers.NewLoginHandler(cfg.Backend, responder, auth))
	router.Handle("POST "+api.RouteRegister, handlers.NewRegisterHandler(cfg.Backend, responder, auth))
	router.Handle("GET "+api.RouteCheckUsername, handlers.NewCheckUsernameHandler(cfg.Backend, responder, username))
	router.Handle("GET "+api.RouteIdentity, handlers.NewIdentityHandler(cfg.Backend, responder, identity))

	router.Handle("GET "+api.RouteUsers, handlers.NewUsersHandler(cfg.Backend, responder, resource))
	router.Handle("GET "+api.RoutePositions, handlers.NewListPositionsHandler(cfg.Backend, responder, resource))
	router.Handle("POST "+api.RoutePositions, handlers.NewCreatePositionHandler(cfg.Backend, responder, resource))

	deletePosition := handlers.NewDeletePositionHandler(cfg.Backend, responder, resource)
	router.Handle("DELETE "+api.RoutePosition, deletePosition)
	router.Handle("DELETE "+api.RoutePositions+"/", deletePosition)

	server := NewServer(sc, router, logger)

	return server, router, nil
}
