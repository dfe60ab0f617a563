package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pushgo/depotman/internal/deleteflow"
	"github.com/pushgo/depotman/internal/middleware"
	"github.com/pushgo/depotman/internal/model"
)

func TestDeleteHandler_RequestDelete_Returns201(t *testing.T) {
	requestedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	flow := &mockDeleteFlow{
		requestFn: func(depotID string) (deleteflow.PendingDelete, error) {
			return deleteflow.PendingDelete{ID: "pending-9", DepotID: depotID, RequestedAt: requestedAt}, nil
		},
	}
	h := NewDeleteHandler(flow)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/depots/d1/delete-requests", nil), "id", "d1")
	w := httptest.NewRecorder()
	h.RequestDelete(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	resp := decodeBody[pendingDeleteResponse](t, w)
	if resp.ID != "pending-9" || resp.DepotID != "d1" || !resp.RequestedAt.Equal(requestedAt) {
		t.Errorf("response = %+v", resp)
	}
}

func TestDeleteHandler_RequestDelete_InvalidInput_Returns400(t *testing.T) {
	flow := &mockDeleteFlow{
		requestFn: func(depotID string) (deleteflow.PendingDelete, error) {
			return deleteflow.PendingDelete{}, model.NewInvalidInputError("Depot ID is required.")
		},
	}
	h := NewDeleteHandler(flow)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/depots/%20/delete-requests", nil), "id", " ")
	w := httptest.NewRecorder()
	h.RequestDelete(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestDeleteHandler_ConfirmDelete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"correct passkey", nil, http.StatusNoContent, ""},
		{"wrong passkey", model.NewVerificationFailedError(), http.StatusForbidden, model.ErrCodeVerificationFailed},
		{"unknown pending", model.NewDeleteRequestNotFoundError("p"), http.StatusNotFound, model.ErrCodeDeleteRequestNotFound},
		{"store failure", model.NewStoreUnavailableError("Failed to delete depot"), http.StatusServiceUnavailable, model.ErrCodeStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPending, gotPasskey string
			flow := &mockDeleteFlow{
				confirmFn: func(ctx context.Context, pendingID, passkey string) error {
					gotPending, gotPasskey = pendingID, passkey
					return tt.err
				},
			}
			h := NewDeleteHandler(flow)

			req := httptest.NewRequest(http.MethodPost, "/api/delete-requests/p1/confirm", strings.NewReader(`{"passkey":"ABCD"}`))
			req = withURLParam(req, "pendingID", "p1")
			w := httptest.NewRecorder()
			h.ConfirmDelete(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if gotPending != "p1" || gotPasskey != "ABCD" {
				t.Errorf("Confirm(%q, %q), want (p1, ABCD)", gotPending, gotPasskey)
			}
			if tt.wantCode != "" {
				body := decodeBody[middleware.ErrorResponseBody](t, w)
				if body.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
				}
			}
		})
	}
}

func TestDeleteHandler_ConfirmDelete_InvalidJSON_DoesNotCallFlow(t *testing.T) {
	flow := &mockDeleteFlow{
		confirmFn: func(ctx context.Context, pendingID, passkey string) error {
			t.Fatal("Confirm should not be called")
			return nil
		},
	}
	h := NewDeleteHandler(flow)

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/delete-requests/p1/confirm", strings.NewReader("not json")), "pendingID", "p1")
	w := httptest.NewRecorder()
	h.ConfirmDelete(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestDeleteHandler_CancelDelete_Returns204(t *testing.T) {
	flow := &mockDeleteFlow{}
	h := NewDeleteHandler(flow)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/delete-requests/p1", nil), "pendingID", "p1")
	w := httptest.NewRecorder()
	h.CancelDelete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if len(flow.cancelled) != 1 || flow.cancelled[0] != "p1" {
		t.Errorf("cancelled = %v, want [p1]", flow.cancelled)
	}
}
