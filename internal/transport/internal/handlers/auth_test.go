package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jamesprial/frontproxy/internal/transport/internal/mocks"
	"github.com/jamesprial/frontproxy/internal/upstream"
)

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	cookies := []string{
		"sid=abc; Path=/; HttpOnly; Secure; SameSite=None",
		"csrf=xyz; Path=/",
	}

	tests := []struct {
		name       string
		body       string
		outcome    upstream.Outcome
		wantStatus int
		wantBody   string
		wantCalls  int
		wantCookie bool
	}{
		{
			name: "success with cookies",
			body: `{ "username": "alice", "password": "hunter2" }`,
			outcome: mocks.Outcome(http.StatusOK, http.Header{
				"Set-Cookie":   cookies,
				"Content-Type": {"application/json"},
			}, `{"access_token":"tok"}`),
			wantStatus: http.StatusOK,
			wantBody:   `{"access_token":"tok"}`,
			wantCalls:  1,
			wantCookie: true,
		},
		{
			name:       "upstream rejection passes through",
			body:       `{"username":"alice","password":"wrong"}`,
			outcome:    mocks.JSONOutcome(http.StatusUnauthorized, `{"message":"Invalid credentials"}`),
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"Invalid credentials"}`,
			wantCalls:  1,
		},
		{
			name:       "opaque upstream body sent as JSON string",
			body:       `{"username":"alice","password":"x"}`,
			outcome:    mocks.Outcome(http.StatusInternalServerError, nil, "Internal Server Error"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `"Internal Server Error"`,
			wantCalls:  1,
		},
		{
			name:       "invalid JSON body",
			body:       `username=alice`,
			wantStatus: http.StatusBadGateway,
			wantCalls:  0,
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadGateway,
			wantCalls:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := &mocks.Backend{
				DoFunc: func(ctx context.Context, call upstream.Call) upstream.Outcome {
					return tt.outcome
				},
			}
			handler := NewLoginHandler(backend, &mocks.ErrorResponder{}, Options{Timeout: time.Minute})

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := len(backend.Calls()); got != tt.wantCalls {
				t.Fatalf("upstream calls = %d, want %d", got, tt.wantCalls)
			}
			if tt.wantBody != "" && strings.TrimSpace(w.Body.String()) != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if tt.wantCookie && !slices.Equal(w.Header().Values("Set-Cookie"), cookies) {
				t.Errorf("Set-Cookie = %q, want %q", w.Header().Values("Set-Cookie"), cookies)
			}
			if tt.wantCalls > 0 && w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestLoginHandler_ForwardsCompactedBody(t *testing.T) {
	t.Parallel()

	backend := &mocks.Backend{}
	handler := NewLoginHandler(backend, &mocks.ErrorResponder{}, Options{Timeout: 60 * time.Second})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{\n  \"username\": \"alice\",\n  \"password\": \"hunter2\"\n}"))
	req.Header.Set("Authorization", "Bearer stale")
	req.Header.Set("Cookie", "sid=old")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	calls := backend.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	call := calls[0]

	if call.Method != http.MethodPost || call.Path != upstream.PathLogin {
		t.Errorf("call = %s %s, want POST %s", call.Method, call.Path, upstream.PathLogin)
	}
	if string(call.Body) != `{"username":"alice","password":"hunter2"}` {
		t.Errorf("body = %s", call.Body)
	}
	if call.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", call.Header.Get("Content-Type"))
	}
	if call.Header.Get("Authorization") != "" || call.Header.Get("Cookie") != "" {
		t.Error("login must not forward inbound credentials headers")
	}
	if call.Timeout != 60*time.Second {
		t.Errorf("timeout = %v, want 60s", call.Timeout)
	}
}

func TestAuthHandlers_Exhausted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		build     func(upstream.Backend, *mocks.ErrorResponder) http.Handler
		target    string
		wantError bool
	}{
		{
			name: "login includes last error",
			build: func(b upstream.Backend, r *mocks.ErrorResponder) http.Handler {
				return NewLoginHandler(b, r, Options{})
			},
			target:    "/api/auth/login",
			wantError: true,
		},
		{
			name: "register sends message only",
			build: func(b upstream.Backend, r *mocks.ErrorResponder) http.Handler {
				return NewRegisterHandler(b, r, Options{})
			},
			target:    "/api/auth/register",
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			backend := &mocks.Backend{
				DoFunc: func(ctx context.Context, call upstream.Call) upstream.Outcome {
					return mocks.FailedOutcome(upstream.OutcomeTimeout, 3)
				},
			}
			responder := &mocks.ErrorResponder{}
			handler := tt.build(backend, responder)

			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(`{"username":"a","password":"b"}`))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusGatewayTimeout {
				t.Fatalf("status = %d, want 504", w.Code)
			}
			if responder.GatewayTimeoutBody.Message != MessageAuthUnreachable {
				t.Errorf("message = %q", responder.GatewayTimeoutBody.Message)
			}
			if got := responder.GatewayTimeoutBody.Error != ""; got != tt.wantError {
				t.Errorf("error present = %v, want %v", got, tt.wantError)
			}
		})
	}
}

func TestLoginHandler_LocalFailureIs502(t *testing.T) {
	t.Parallel()

	backend := &mocks.Backend{
		DoFunc: func(ctx context.Context, call upstream.Call) upstream.Outcome {
			return upstream.Outcome{
				Kind: upstream.OutcomeTransportError,
				Err:  upstream.NewRequestError("Fetch", "::bad", errors.New("invalid URL")),
			}
		},
	}
	responder := &mocks.ErrorResponder{}
	handler := NewLoginHandler(backend, responder, Options{})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`)))

	if w.Code != http.StatusBadGateway || !responder.InternalCalled {
		t.Errorf("status = %d, internal = %v, want 502 via InternalError", w.Code, responder.InternalCalled)
	}
}

func TestRegisterHandler_TargetsRegister(t *testing.T) {
	t.Parallel()

	backend := &mocks.Backend{
		DoFunc: func(ctx context.Context, call upstream.Call) upstream.Outcome {
			return mocks.JSONOutcome(http.StatusConflict, `{"message":"Username taken"}`)
		},
	}
	handler := NewRegisterHandler(backend, &mocks.ErrorResponder{}, Options{})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"username":"bob"}`)))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	calls := backend.Calls()
	if len(calls) != 1 || calls[0].Path != upstream.PathRegister {
		t.Errorf("calls = %+v, want one call to %s", calls, upstream.PathRegister)
	}
}

func TestAuthHandler_DoesNotLogCredentials(t *testing.T) {
	t.Parallel()

	logger, sink := newTestLogger()
	backend := &mocks.Backend{
		DoFunc: func(ctx context.Context, call upstream.Call) upstream.Outcome {
			return mocks.JSONOutcome(http.StatusOK, `{"token":"secret-token"}`)
		},
	}
	handler := NewLoginHandler(backend, &mocks.ErrorResponder{}, Options{Logger: logger})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"hunter2"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	logs := sink.String()
	if logs == "" {
		t.Fatal("expected the handler to log")
	}
	for _, secret := range []string{"alice", "hunter2", "secret-token"} {
		if strings.Contains(logs, secret) {
			t.Errorf("logs leaked %q: %s", secret, logs)
		}
	}
}
