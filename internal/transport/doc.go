// Package transport provides the inbound HTTP layer of the proxy.
//
// # Architecture
//
// The transport package serves the browser-facing /api routes and hands each
// request to an upstream.Backend. It never validates credentials itself: the
// caller's Authorization and Cookie headers are relayed and the upstream
// decides.
//
// Package structure:
//
//	internal/transport/
//	├── transport.go              # Public interfaces
//	├── errors.go                 # Transport domain errors
//	├── context.go                # Request id context helpers
//	├── wire.go                   # Factory functions and route table
//	├── internal/
//	│   ├── http/
//	│   │   ├── server.go         # HTTP server with graceful shutdown
//	│   │   ├── router.go         # gorilla/mux routing
//	│   │   └── response.go       # Proxy error responder
//	│   ├── middleware/
//	│   │   ├── recovery.go       # Panic recovery
//	│   │   ├── requestid.go      # X-Request-ID
//	│   │   ├── logging.go        # Request logging
//	│   │   └── compression.go    # gzip responses
//	│   └── handlers/
//	│       ├── auth.go           # login and register
//	│       ├── username.go       # check-username probe
//	│       ├── identity.go       # /api/user probe and fallback identity
//	│       ├── users.go          # user list
//	│       ├── positions.go      # position list, create, delete
//	│       └── health.go         # liveness
//
// # Middleware Chain
//
// The middleware chain is applied in this order:
//
//  1. Recovery - catches panics and answers 502
//  2. Request id - keeps or assigns X-Request-ID
//  3. Logging - logs method, path, status and duration
//  4. Compression - gzips large responses (RESPONSE_COMPRESSION)
//
// # Error Handling
//
// Upstream HTTP answers, including 4xx and 5xx, are passed through with their
// status. The proxy generates only two error statuses of its own:
//
//	HTTP/1.1 504 Gateway Timeout
//	Content-Type: application/json
//
//	{"message": "Upstream auth server unreachable (timeout). Please try again shortly."}
//
// when every attempt failed in transport, and
//
//	HTTP/1.1 502 Bad Gateway
//	Content-Type: application/json
//
//	{"message": "Proxy error"}
//
// for failures inside the proxy. Request validation failures answer 400.
//
// # Usage Example
//
//	backend, err := upstream.NewClient(&upstream.Config{BaseURL: cfg.BackendURL})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	server, _, err := transport.NewTransportServices(&transport.Config{
//		ServerConfig: cfg,
//		Backend:      backend,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := server.Start(); err != nil {
//		log.Fatal(err)
//	}
//
// # Endpoints
//
//   - POST /api/auth/login, POST /api/auth/register
//   - GET /api/auth/check-username?username=
//   - GET /api/user
//   - GET /api/users
//   - GET, POST /api/positions
//   - DELETE /api/positions/{id}
//   - GET /health
package transport
