// Package api provides the wire-level constants and response shapes shared by
// the proxy server and its Go client.
package api

// Inbound routes served by the proxy.
const (
	// RouteLogin forwards credentials to the upstream login endpoint.
	RouteLogin = "/api/auth/login"

	// RouteRegister forwards a registration to the upstream.
	RouteRegister = "/api/auth/register"

	// RouteCheckUsername probes the upstream for an existing username.
	RouteCheckUsername = "/api/auth/check-username"

	// RouteIdentity resolves the identity behind the caller's session.
	RouteIdentity = "/api/user"

	// RouteUsers lists users known to the upstream.
	RouteUsers = "/api/users"

	// RoutePositions lists or creates positions.
	RoutePositions = "/api/positions"

	// RoutePosition addresses a single position by id.
	RoutePosition = "/api/positions/{id}"

	// RouteHealth reports liveness of the proxy itself.
	RouteHealth = "/health"
)

// Token type constants as defined in RFC 6750.
const (
	// BearerToken is the Bearer authorization scheme.
	BearerToken = "Bearer"
)

// HTTP header names.
const (
	// HeaderAuthorization is the Authorization HTTP header name.
	HeaderAuthorization = "Authorization"

	// HeaderCookie is the Cookie HTTP header name.
	HeaderCookie = "Cookie"

	// HeaderSetCookie is the Set-Cookie HTTP header name.
	HeaderSetCookie = "Set-Cookie"

	// HeaderContentType is the Content-Type HTTP header name.
	HeaderContentType = "Content-Type"

	// HeaderAccept is the Accept HTTP header name.
	HeaderAccept = "Accept"

	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-ID"
)

// Content type constants.
const (
	// ContentTypeJSON is the application/json content type.
	ContentTypeJSON = "application/json"

	// ContentTypeText is the plain text content type used for opaque bodies.
	ContentTypeText = "text/plain; charset=utf-8"
)

// TokenFields lists the payload fields an upstream login or register
// response may carry its access token in, in lookup order.
var TokenFields = []string{"access_token", "token", "accessToken", "authToken"}

// MessageResponse is the body of every response the proxy generates itself
// (as opposed to passing through an upstream body).
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse is used for request validation failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UsernameCheckResponse is the body of GET /api/auth/check-username.
//
// Exactly one of the diagnostic groups is populated: Source and Payload when
// a path answered, Status additionally when that answer was inconclusive,
// Tried when no candidate path confirmed the username.
type UsernameCheckResponse struct {
	Exists  bool     `json:"exists"`
	Source  string   `json:"source,omitempty"`
	Status  int      `json:"status,omitempty"`
	Payload any      `json:"payload,omitempty"`
	Tried   []string `json:"tried,omitempty"`
}

// FallbackIdentityResponse is returned by GET /api/user when the upstream is
// unreachable and the identity was recovered from the unverified token
// payload. It is display data only.
type FallbackIdentityResponse struct {
	Username string `json:"username"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
