package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name         string
		checker      HealthChecker
		wantStatus   int
		wantDatabase string
	}{
		{"db ok", &mockHealthChecker{}, http.StatusOK, "ok"},
		{"db down", &mockHealthChecker{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unreachable"},
		{"no checker", nil, http.StatusOK, "skipped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.checker).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			resp := decodeBody[healthResponse](t, w)
			if resp.Database != tt.wantDatabase {
				t.Errorf("database = %q, want %q", resp.Database, tt.wantDatabase)
			}
		})
	}
}
