package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pushgo/depotman/internal/model"
)

// --- モック定義 ---

type mockSessionFinder struct {
	currentSessionFn func(sessionID string) (*model.Session, bool)
}

func (m *mockSessionFinder) CurrentSession(sessionID string) (*model.Session, bool) {
	if m.currentSessionFn != nil {
		return m.currentSessionFn(sessionID)
	}
	return nil, false
}

// validSessionFinder は指定IDのセッションだけを有効として返すモックを生成する。
func validSessionFinder(validID, email string) *mockSessionFinder {
	return &mockSessionFinder{
		currentSessionFn: func(sessionID string) (*model.Session, bool) {
			if sessionID != validID {
				return nil, false
			}
			return &model.Session{
				ID:        validID,
				Email:     email,
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, true
		},
	}
}

// --- テスト ---

func TestSessionMiddleware_ValidSession_InjectsEmail(t *testing.T) {
	mw := NewSessionMiddleware(validSessionFinder("valid-session-id", "admin@example.com"))

	var captured string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := EmailFromContext(r.Context())
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		captured = email
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/superadmin/passkey", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-session-id"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if captured != "admin@example.com" {
		t.Errorf("email = %q, want %q", captured, "admin@example.com")
	}
}

func TestSessionMiddleware_NoSessionCookie_Returns401(t *testing.T) {
	mw := NewSessionMiddleware(&mockSessionFinder{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/superadmin/passkey", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body.Code != model.ErrCodeUnauthorized {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeUnauthorized)
	}
}

func TestSessionMiddleware_UnknownSession_Returns401(t *testing.T) {
	mw := NewSessionMiddleware(validSessionFinder("valid-session-id", "admin@example.com"))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPut, "/api/superadmin/passkey", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "expired-or-rejected"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestSessionMiddleware_EmptyCookieValue_DoesNotQueryFinder(t *testing.T) {
	finder := &mockSessionFinder{
		currentSessionFn: func(sessionID string) (*model.Session, bool) {
			t.Fatal("finder should not be called for empty session id")
			return nil, false
		},
	}
	mw := NewSessionMiddleware(finder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: ""})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestOptionalSessionMiddleware_NoSession_PassesThrough(t *testing.T) {
	mw := NewOptionalSessionMiddleware(&mockSessionFinder{})

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, err := EmailFromContext(r.Context()); err == nil {
			t.Error("expected no email in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/depots", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("handler should have been called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestOptionalSessionMiddleware_ValidSession_InjectsEmail(t *testing.T) {
	mw := NewOptionalSessionMiddleware(validSessionFinder("sess-1", "admin@example.com"))

	var captured string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = EmailFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/depots", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-1"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if captured != "admin@example.com" {
		t.Errorf("email = %q, want %q", captured, "admin@example.com")
	}
}

func TestEmailFromContext_Missing_ReturnsError(t *testing.T) {
	if _, err := EmailFromContext(context.Background()); err == nil {
		t.Error("expected error for empty context")
	}
	if _, err := EmailFromContext(ContextWithEmail(context.Background(), "")); err == nil {
		t.Error("expected error for empty email")
	}
}

func TestSessionIDFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := SessionIDFromRequest(req); got != "" {
		t.Errorf("SessionIDFromRequest() = %q, want empty", got)
	}

	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "abc"})
	if got := SessionIDFromRequest(req); got != "abc" {
		t.Errorf("SessionIDFromRequest() = %q, want %q", got, "abc")
	}
}
