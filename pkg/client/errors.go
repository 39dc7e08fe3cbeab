package client

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Client methods.
var (
	// ErrRetryLater means the proxy could not reach the upstream (504).
	// The session, if any, stays valid.
	ErrRetryLater = errors.New("upstream unreachable, try again shortly")

	// ErrSessionInvalid means the upstream rejected the session (401), or the
	// session was already invalidated. The caller should log in again.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrInvalidCredentials means login was rejected with 400 or 401.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameNotFound means login answered 404 for the username.
	ErrUsernameNotFound = errors.New("username not found")

	// ErrUsernameTaken means registration was rejected because the username exists.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrNoToken means a successful auth answer carried no access token.
	ErrNoToken = errors.New("no access token in response")
)

// StatusError is an upstream answer the client has no specific policy for.
type StatusError struct {
	StatusCode int

	// Message is the "message" or "error" field of the body, if any.
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed (%d)", e.StatusCode)
	}
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}
