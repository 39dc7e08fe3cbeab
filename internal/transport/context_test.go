package transport

import (
	"context"
	"testing"
)

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()

	// Custom key type for testing - demonstrates type-safe context keys
	type testContextKey string

	tests := []struct {
		name     string
		setupCtx func() context.Context
		wantID   string
		wantOK   bool
	}{
		{
			name: "id present in context",
			setupCtx: func() context.Context {
				return ContextWithRequestID(context.Background(), "req-123")
			},
			wantID: "req-123",
			wantOK: true,
		},
		{
			name: "id absent from context",
			setupCtx: func() context.Context {
				return context.Background()
			},
			wantOK: false,
		},
		{
			name: "empty id is absent",
			setupCtx: func() context.Context {
				return ContextWithRequestID(context.Background(), "")
			},
			wantOK: false,
		},
		{
			name: "same string under a different key type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), testContextKey("request_id"), "other-value")
			},
			wantOK: false,
		},
		{
			name: "wrong value type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), RequestIDContextKey, 42)
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gotID, gotOK := RequestIDFromContext(tt.setupCtx())
			if gotOK != tt.wantOK {
				t.Fatalf("RequestIDFromContext() ok = %v, want %v", gotOK, tt.wantOK)
			}
			if gotID != tt.wantID {
				t.Errorf("RequestIDFromContext() id = %q, want %q", gotID, tt.wantID)
			}
		})
	}
}

func TestRequestIDFromContext_NilContext(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // SA1012: intentionally testing nil context handling
	if _, ok := RequestIDFromContext(nil); ok {
		t.Error("RequestIDFromContext(nil) ok = true, want false")
	}
}

func TestContextWithRequestID_Overwrites(t *testing.T) {
	t.Parallel()

	ctx := ContextWithRequestID(context.Background(), "first")
	ctx = ContextWithRequestID(ctx, "second")

	if id, _ := RequestIDFromContext(ctx); id != "second" {
		t.Errorf("RequestIDFromContext() = %q, want second", id)
	}
}

func TestContextWithRequestID_NilParent(t *testing.T) {
	t.Parallel()

	//nolint:staticcheck // SA1012: intentionally testing nil context handling
	ctx := ContextWithRequestID(nil, "abc")
	if id, ok := RequestIDFromContext(ctx); !ok || id != "abc" {
		t.Errorf("RequestIDFromContext() = %q, %v", id, ok)
	}
}
