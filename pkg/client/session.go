package client

import (
	"strings"
	"sync"

	"github.com/jamesprial/frontproxy/pkg/api"
)

// Session is the authenticated state created by a successful login.
// It is invalidated when the upstream answers 401 or on Logout, and is safe
// for concurrent use.
type Session struct {
	mu       sync.RWMutex
	token    string
	username string
	valid    bool
}

// NewSession creates a valid session from an existing token.
func NewSession(token, username string) *Session {
	token = strings.TrimSpace(token)
	return &Session{
		token:    token,
		username: username,
		valid:    token != "",
	}
}

// Token returns the access token, or "" once the session is invalid.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid {
		return ""
	}
	return s.token
}

// Username returns the username recorded at login.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Valid reports whether the session can still be used.
func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.valid
}

// Invalidate ends the session and forgets its token.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
	s.token = ""
}

func (s *Session) setUsername(username string) {
	if username == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
}

// authorization renders the Authorization header value, avoiding a doubled
// scheme when the token already carries one.
func (s *Session) authorization() string {
	token := s.Token()
	if token == "" {
		return ""
	}
	if scheme, _, ok := strings.Cut(token, " "); ok && strings.EqualFold(scheme, api.BearerToken) {
		return token
	}
	return api.BearerToken + " " + token
}
