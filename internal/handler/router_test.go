package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pushgo/depotman/internal/metrics"
	"github.com/pushgo/depotman/internal/middleware"
	"github.com/pushgo/depotman/internal/model"
)

const testCSRFToken = "csrf-test-token"

// createTestRouter はテスト用の完全なルーターを構築するヘルパー。
func createTestRouter(t *testing.T) (http.Handler, *mockDeleteFlow, *mockPasskeyUpdater) {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	authSvc := &mockAuthService{
		currentSessionFn: func(sessionID string) (*model.Session, bool) {
			if sessionID == "valid-session" {
				return &model.Session{ID: sessionID, Email: "admin@example.com"}, true
			}
			return nil, false
		},
	}
	flow := &mockDeleteFlow{}
	updater := &mockPasskeyUpdater{}

	reg := prometheus.NewRegistry()
	deps := &RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		SessionFinder:     authSvc,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		HealthChecker:     &mockHealthChecker{},
		MetricsCollector:  metrics.NewCollector(reg),
		MetricsGatherer:   reg,
		AuthService:       authSvc,
		AuthConfig:        testAuthConfig(),
		DepotService: &mockDepotService{
			listFn: func(ctx context.Context) ([]model.Depot, error) { return sampleDepots(), nil },
		},
		StatusReader:   &mockStatusReader{},
		DeleteFlow:     flow,
		PasskeyUpdater: updater,
	}
	return NewRouter(deps), flow, updater
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		session    bool
		csrf       bool
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", "", false, false, http.StatusOK},
		{"list depots", http.MethodGet, "/api/depots", "", false, false, http.StatusOK},
		{"list depots filtered", http.MethodGet, "/api/depots?q=ranchi&state=Jharkhand", "", false, false, http.StatusOK},
		{"create depot", http.MethodPost, "/api/depots", `{"name":"A","state":"Bihar"}`, false, false, http.StatusCreated},
		{"update depot", http.MethodPut, "/api/depots/d1", `{"name":"A","state":"Bihar"}`, false, false, http.StatusOK},
		{"request delete", http.MethodPost, "/api/depots/d1/delete-requests", "", false, false, http.StatusCreated},
		{"confirm delete", http.MethodPost, "/api/delete-requests/p1/confirm", `{"passkey":"ABCD"}`, false, false, http.StatusNoContent},
		{"cancel delete", http.MethodDelete, "/api/delete-requests/p1", "", false, false, http.StatusNoContent},
		{"status", http.MethodGet, "/api/status", "", false, false, http.StatusOK},
		{"csrf token", http.MethodGet, "/api/csrf-token", "", false, false, http.StatusOK},
		{"magic link", http.MethodPost, "/auth/magic-link", `{"email":"admin@example.com"}`, false, false, http.StatusAccepted},
		{"me anonymous", http.MethodGet, "/auth/me", "", false, false, http.StatusUnauthorized},
		{"me signed in", http.MethodGet, "/auth/me", "", true, false, http.StatusOK},
		{"logout without csrf", http.MethodPost, "/auth/logout", "", true, false, http.StatusForbidden},
		{"logout with csrf", http.MethodPost, "/auth/logout", "", true, true, http.StatusNoContent},
		{"passkey anonymous", http.MethodPut, "/api/superadmin/passkey", `{"passkey":"abcd"}`, false, true, http.StatusUnauthorized},
		{"passkey without csrf", http.MethodPut, "/api/superadmin/passkey", `{"passkey":"abcd"}`, true, false, http.StatusForbidden},
		{"passkey ok", http.MethodPut, "/api/superadmin/passkey", `{"passkey":"abcd"}`, true, true, http.StatusOK},
		{"unknown route", http.MethodGet, "/api/unknown", "", false, false, http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/depots/d1", "", false, false, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, _ := createTestRouter(t)

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.session {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "valid-session"})
			}
			if tt.csrf {
				req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
				req.Header.Set("X-CSRF-Token", testCSRFToken)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, want %d (body: %s)", tt.method, tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRouter_AppliesSecurityAndCORSHeaders(t *testing.T) {
	router, _, _ := createTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/depots", nil))

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestRouter_PasskeyUpdate_PassesSessionEmail(t *testing.T) {
	router, _, updater := createTestRouter(t)

	var gotEmail string
	updater.updateFn = func(ctx context.Context, newPasskey, callerEmail string) error {
		gotEmail = callerEmail
		return nil
	}

	req := httptest.NewRequest(http.MethodPut, "/api/superadmin/passkey", strings.NewReader(`{"passkey":"abcd"}`))
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "valid-session"})
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRFToken})
	req.Header.Set("X-CSRF-Token", testCSRFToken)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if gotEmail != "admin@example.com" {
		t.Errorf("callerEmail = %q, want %q", gotEmail, "admin@example.com")
	}
}

func TestRouter_MetricsEndpoint_ExposesHTTPStatus(t *testing.T) {
	router, _, _ := createTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/depots", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "depotman_http_status_total") {
		t.Errorf("metrics output should contain depotman_http_status_total")
	}
}
