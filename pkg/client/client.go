// Package client is a Go client for the proxy's /api routes.
//
// It carries the session policy the browser front end applies: a 504 means
// try again later and keeps the session, a 401 invalidates the session, and
// a 404 on identity lookup keeps the session valid.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/jamesprial/frontproxy/pkg/api"
)

const defaultTimeout = 2 * time.Minute

// takenPattern matches registration messages that mean the username exists.
var takenPattern = regexp.MustCompile(`(?i)already exists|duplicate|taken`)

// Client talks to a running proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger. If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the proxy at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url, got %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Identity is the caller's identity as reported by GET /api/user.
type Identity struct {
	// Username is the resolved username. When Lenient is set it is the
	// username recorded at login.
	Username string

	// Raw is the upstream payload, or nil when Lenient is set.
	Raw json.RawMessage

	// Lenient reports that the upstream has no identity endpoint (404) and
	// the session was kept on trust.
	Lenient bool
}

// UsernameCheck is the answer of GET /api/auth/check-username.
type UsernameCheck struct {
	Exists bool
	Source string
	Tried  []string
}

// Login authenticates and returns a new session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	status, body, err := c.send(ctx, nil, http.MethodPost, api.RouteLogin, credentials(username, password))
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	case status == http.StatusNotFound:
		return nil, ErrUsernameNotFound
	case status == http.StatusGatewayTimeout:
		return nil, ErrRetryLater
	case !isSuccess(status):
		return nil, statusError(status, body)
	}

	return sessionFrom(body, username)
}

// Register creates an account and returns a session for it. When the
// register answer carries no token, Register logs in with the same
// credentials.
func (c *Client) Register(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	status, body, err := c.send(ctx, nil, http.MethodPost, api.RouteRegister, credentials(username, password))
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		if status == http.StatusGatewayTimeout {
			return nil, ErrRetryLater
		}
		serr := statusError(status, body)
		if status == http.StatusConflict || takenPattern.MatchString(serr.Message) {
			return nil, ErrUsernameTaken
		}
		return nil, serr
	}

	if session, err := sessionFrom(body, username); err == nil {
		return session, nil
	}

	c.logger.Debug("register answered without a token, logging in")
	session, err := c.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("%w: login after register: %w", ErrNoToken, err)
	}
	return session, nil
}

// Logout invalidates the session. The proxy keeps no session state, so no
// request is made.
func (c *Client) Logout(s *Session) {
	if s != nil {
		s.Invalidate()
	}
}

// Identity resolves the session's identity.
func (c *Client) Identity(ctx context.Context, s *Session) (Identity, error) {
	status, body, err := c.authed(ctx, s, http.MethodGet, api.RouteIdentity, nil)
	if err != nil {
		return Identity{}, err
	}

	if status == http.StatusNotFound {
		return Identity{Username: s.Username(), Lenient: true}, nil
	}
	if err := checkStatus(s, status, body); err != nil {
		return Identity{}, err
	}

	username := gjson.GetBytes(body, "username").String()
	if username == "" {
		username = gjson.GetBytes(body, "user.username").String()
	}
	s.setUsername(username)
	return Identity{Username: username, Raw: json.RawMessage(body)}, nil
}

// Users lists the users known to the upstream.
func (c *Client) Users(ctx context.Context, s *Session) (json.RawMessage, error) {
	return c.fetch(ctx, s, http.MethodGet, api.RouteUsers, nil)
}

// Positions lists positions.
func (c *Client) Positions(ctx context.Context, s *Session) (json.RawMessage, error) {
	return c.fetch(ctx, s, http.MethodGet, api.RoutePositions, nil)
}

// CreatePosition creates a position from any JSON-encodable value.
func (c *Client) CreatePosition(ctx context.Context, s *Session, position any) (json.RawMessage, error) {
	payload, err := json.Marshal(position)
	if err != nil {
		return nil, fmt.Errorf("encoding position: %w", err)
	}
	return c.fetch(ctx, s, http.MethodPost, api.RoutePositions, payload)
}

// DeletePosition deletes the position with the given id.
func (c *Client) DeletePosition(ctx context.Context, s *Session, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("position id is required")
	}
	_, err := c.fetch(ctx, s, http.MethodDelete, api.RoutePositions+"/"+url.PathEscape(id), nil)
	return err
}

// CheckUsername asks the proxy whether a username exists upstream.
func (c *Client) CheckUsername(ctx context.Context, username string) (UsernameCheck, error) {
	target := api.RouteCheckUsername + "?username=" + url.QueryEscape(username)
	status, body, err := c.send(ctx, nil, http.MethodGet, target, nil)
	if err != nil {
		return UsernameCheck{}, err
	}
	if status == http.StatusGatewayTimeout {
		return UsernameCheck{}, ErrRetryLater
	}
	if !isSuccess(status) {
		return UsernameCheck{}, statusError(status, body)
	}

	var resp api.UsernameCheckResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return UsernameCheck{}, fmt.Errorf("decoding username check: %w", err)
	}
	return UsernameCheck{Exists: resp.Exists, Source: resp.Source, Tried: resp.Tried}, nil
}

func (c *Client) fetch(ctx context.Context, s *Session, method, path string, payload []byte) (json.RawMessage, error) {
	status, body, err := c.authed(ctx, s, method, path, payload)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(s, status, body); err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

func (c *Client) authed(ctx context.Context, s *Session, method, path string, payload []byte) (int, []byte, error) {
	if !s.Valid() {
		return 0, nil, ErrSessionInvalid
	}
	return c.send(ctx, s, method, path, payload)
}

func (c *Client) send(ctx context.Context, s *Session, method, path string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set(api.HeaderAccept, api.ContentTypeJSON)
	if payload != nil {
		req.Header.Set(api.HeaderContentType, api.ContentTypeJSON)
	}
	if s != nil {
		if auth := s.authorization(); auth != "" {
			req.Header.Set(api.HeaderAuthorization, auth)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading %s response: %w", path, err)
	}

	c.logger.Debug("proxy answered", "method", method, "path", strings.SplitN(path, "?", 2)[0], "status", resp.StatusCode)
	return resp.StatusCode, data, nil
}

// checkStatus applies the session policy to an authenticated answer.
func checkStatus(s *Session, status int, body []byte) error {
	switch {
	case isSuccess(status):
		return nil
	case status == http.StatusUnauthorized:
		s.Invalidate()
		return ErrSessionInvalid
	case status == http.StatusGatewayTimeout:
		return ErrRetryLater
	default:
		return statusError(status, body)
	}
}

func sessionFrom(body []byte, username string) (*Session, error) {
	for _, field := range api.TokenFields {
		if token := gjson.GetBytes(body, field); token.Type == gjson.String && token.Str != "" {
			name := gjson.GetBytes(body, "user.username").String()
			if name == "" {
				name = gjson.GetBytes(body, "username").String()
			}
			if name == "" {
				name = username
			}
			return NewSession(token.Str, name), nil
		}
	}
	return nil, ErrNoToken
}

func statusError(status int, body []byte) *StatusError {
	message := gjson.GetBytes(body, "message").String()
	if message == "" {
		message = gjson.GetBytes(body, "error").String()
	}
	return &StatusError{StatusCode: status, Message: message}
}

func credentials(username, password string) []byte {
	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	return payload
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
