package handler

import (
	"context"
	"net/http"

	"github.com/pushgo/depotman/internal/middleware"
	"github.com/pushgo/depotman/internal/model"
)

// PasskeyUpdater は削除用パスキーを更新する。
type PasskeyUpdater interface {
	Update(ctx context.Context, newPasskey, callerEmail string) error
}

// SuperadminHandler はスーパー管理者専用操作のHTTPハンドラー。
// セッションミドルウェアとCSRFミドルウェアの後段に置く。
type SuperadminHandler struct {
	updater PasskeyUpdater
}

// NewSuperadminHandler はSuperadminHandlerを生成する。
func NewSuperadminHandler(updater PasskeyUpdater) *SuperadminHandler {
	return &SuperadminHandler{updater: updater}
}

// updatePasskeyRequest はパスキー更新リクエストのボディ。
type updatePasskeyRequest struct {
	Passkey string `json:"passkey"`
}

// UpdatePasskey は削除用パスキーを更新する。
// 呼び出し元のメールアドレスはセッションから取得し、リクエストボディからは受け取らない。
// PUT /api/superadmin/passkey
func (h *SuperadminHandler) UpdatePasskey(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.EmailFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req updatePasskeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.updater.Update(r.Context(), req.Passkey, email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Passkey updated successfully"})
}
