package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pushgo/depotman/internal/deleteflow"
)

// DeleteFlowInterface は削除確認ハンドラーが必要とするインターフェース。
type DeleteFlowInterface interface {
	Request(depotID string) (deleteflow.PendingDelete, error)
	Confirm(ctx context.Context, pendingID, passkey string) error
	Cancel(pendingID string)
}

// DeleteHandler はパスキーで保護されたデポ削除のHTTPハンドラー。
type DeleteHandler struct {
	flow DeleteFlowInterface
}

// NewDeleteHandler はDeleteHandlerを生成する。
func NewDeleteHandler(flow DeleteFlowInterface) *DeleteHandler {
	return &DeleteHandler{flow: flow}
}

// confirmDeleteRequest は削除確定リクエストのボディ。
type confirmDeleteRequest struct {
	Passkey string `json:"passkey"`
}

// pendingDeleteResponse は発行した削除確認のAPIレスポンス。
type pendingDeleteResponse struct {
	ID          string    `json:"id"`
	DepotID     string    `json:"depotId"`
	RequestedAt time.Time `json:"requestedAt"`
}

// RequestDelete は指定デポの削除確認を発行する。
// POST /api/depots/{id}/delete-requests
func (h *DeleteHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	p, err := h.flow.Request(chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, pendingDeleteResponse{
		ID:          p.ID,
		DepotID:     p.DepotID,
		RequestedAt: p.RequestedAt,
	})
}

// ConfirmDelete はパスキーを照合し、一致した場合にデポを削除する。
// 不一致の場合は403を返し、削除確認は残る。
// POST /api/delete-requests/{pendingID}/confirm
func (h *DeleteHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	var req confirmDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.flow.Confirm(r.Context(), chi.URLParam(r, "pendingID"), req.Passkey); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CancelDelete は削除確認を取り消す。
// DELETE /api/delete-requests/{pendingID}
func (h *DeleteHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.flow.Cancel(chi.URLParam(r, "pendingID"))
	w.WriteHeader(http.StatusNoContent)
}
