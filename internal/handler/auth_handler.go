package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pushgo/depotman/internal/middleware"
	"github.com/pushgo/depotman/internal/model"
)

// authErrorParam はログイン失敗時にフロントエンドへ渡すクエリパラメータ名。
const authErrorParam = "auth_error"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	RequestMagicLink(ctx context.Context, email string) error
	HandleCallback(ctx context.Context, tokenHash, linkType string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string)
	CurrentSession(sessionID string) (*model.Session, bool)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	BaseURL       string
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はスーパー管理者ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// magicLinkRequest はログインリンク送信リクエストのボディ。
type magicLinkRequest struct {
	Email string `json:"email"`
}

// meResponse はログイン中のスーパー管理者情報のAPIレスポンス。
type meResponse struct {
	Email      string `json:"email"`
	Superadmin bool   `json:"superadmin"`
}

// RequestMagicLink はログインリンクをメールで送信する。
// POST /auth/magic-link
func (h *AuthHandler) RequestMagicLink(w http.ResponseWriter, r *http.Request) {
	var req magicLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.RequestMagicLink(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, messageResponse{Message: "Check your email for the login link."})
}

// Callback はログインリンクからの戻りを処理する。
// 成功時はセッションCookieを設定してフロントエンドへリダイレクトする。
// 失敗時は理由をクエリパラメータに付けてリダイレクトする。
// GET /auth/callback?token_hash=xxx&type=magiclink
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	session, err := h.service.HandleCallback(r.Context(), q.Get("token_hash"), q.Get("type"))
	if err != nil {
		message := model.NewLoginFailedError().Message
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			message = apiErr.Message
		} else {
			slog.Error("login callback failed", slog.String("error", err.Error()))
		}
		h.clearSessionCookie(w)
		http.Redirect(w, r, h.redirectURL(message), http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.redirectURL(""), http.StatusTemporaryRedirect)
}

// Logout はセッションを破棄する。セッションがなくても成功する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := middleware.SessionIDFromRequest(r); id != "" {
		h.service.Logout(r.Context(), id)
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me はログイン中のスーパー管理者情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := h.service.CurrentSession(middleware.SessionIDFromRequest(r))
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, &model.APIError{
			Code:     model.ErrCodeUnauthorized,
			Message:  "Not signed in.",
			Category: "auth",
			Action:   "スーパー管理者のメールアドレスでログインしてください。",
		})
		return
	}

	writeJSON(w, http.StatusOK, meResponse{Email: session.Email, Superadmin: true})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectURL はログイン後の戻り先URLを返す。messageが空でなければ失敗理由として付与する。
func (h *AuthHandler) redirectURL(message string) string {
	base := h.config.BaseURL
	if base == "" {
		base = "/"
	}
	if message == "" {
		return base
	}
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set(authErrorParam, message)
	u.RawQuery = q.Encode()
	return u.String()
}
