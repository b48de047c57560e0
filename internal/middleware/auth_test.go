package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"deckpress/internal/session"
)

// newTestSession creates a session.Data value suitable for testing.
func newTestSession(otpVerified bool) *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "test@deckpress.local",
		DisplayName: "Test User",
		OTPVerified: otpVerified,
	}
}

// ctxWithSession returns a context carrying the given session data using
// the same context key the middleware uses.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// stubSessions is a SessionGetter that returns fixed values.
type stubSessions struct {
	data *session.Data
	err  error
}

func (s stubSessions) Get(context.Context, *http.Request) (*session.Data, error) {
	return s.data, s.err
}

func TestSessionFromCtx(t *testing.T) {
	t.Run("returns session when present", func(t *testing.T) {
		sess := newTestSession(true)
		got := SessionFromCtx(ctxWithSession(context.Background(), sess))
		if got == nil || got.Email != sess.Email || !got.OTPVerified {
			t.Errorf("got %+v, want %+v", got, sess)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		if got := SessionFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil session, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), SessionKey, "not-a-session")
		if got := SessionFromCtx(ctx); got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

func TestLoadSession(t *testing.T) {
	tests := []struct {
		name        string
		store       stubSessions
		wantSession bool
	}{
		{"session found", stubSessions{data: newTestSession(true)}, true},
		{"no session", stubSessions{}, false},
		{"store error treated as anonymous", stubSessions{err: errors.New("valkey down")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *session.Data
			called := false
			handler := LoadSession(tt.store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got = SessionFromCtx(r.Context())
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/presentations", nil))

			if !called {
				t.Fatal("next handler should always be called")
			}
			if (got != nil) != tt.wantSession {
				t.Errorf("session in context = %v, want present=%v", got, tt.wantSession)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	t.Run("rejects anonymous requests with 401", func(t *testing.T) {
		inner, called := okHandler()
		rr := httptest.NewRecorder()
		RequireAuth(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/presentations", nil))

		if *called {
			t.Error("next handler should not be called")
		}
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type: got %q", ct)
		}
	})

	t.Run("passes authenticated requests", func(t *testing.T) {
		inner, called := okHandler()
		req := httptest.NewRequest(http.MethodGet, "/api/presentations", nil)
		req = req.WithContext(ctxWithSession(req.Context(), newTestSession(false)))
		rr := httptest.NewRecorder()
		RequireAuth(inner).ServeHTTP(rr, req)

		if !*called || rr.Code != http.StatusOK {
			t.Errorf("called=%v status=%d", *called, rr.Code)
		}
	})
}

func TestRequireOTP(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Data
		wantStatus int
	}{
		{"verified", newTestSession(true), http.StatusOK},
		{"password only", newTestSession(false), http.StatusForbidden},
		{"no session", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, _ := okHandler()
			req := httptest.NewRequest(http.MethodGet, "/api/presentations", nil)
			if tt.sess != nil {
				req = req.WithContext(ctxWithSession(req.Context(), tt.sess))
			}
			rr := httptest.NewRecorder()
			RequireOTP(inner).ServeHTTP(rr, req)
			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}
