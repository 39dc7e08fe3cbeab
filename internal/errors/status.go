package errors

import (
	"errors"
	"net/http"
)

// StatusFor maps an error onto the boundary HTTP status the proxy reports.
//
//   - ErrTransport, ErrTimeout: 504 Gateway Timeout (retries exhausted)
//   - ErrBadRequest: 400 Bad Request
//   - ErrUnauthorized: 401 Unauthorized
//   - ErrNotFound: 404 Not Found
//   - anything else, including ErrInternal: 502 Bad Gateway
//
// ErrUpstream has no boundary status of its own: upstream statuses are passed
// through by the handlers and never rewritten.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsTransient(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
