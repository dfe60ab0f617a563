// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pushgo/depotman/internal/model"
)

// SessionCookieName はスーパー管理者セッションIDを保持するCookieの名前。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// emailContextKey はリクエストコンテキストにスーパー管理者のメールアドレスを格納するためのキー。
var emailContextKey = contextKey("superadmin_email")

// SessionFinder は有効なセッションの検索に必要なインターフェース。
type SessionFinder interface {
	CurrentSession(sessionID string) (*model.Session, bool)
}

// NewSessionMiddleware はHTTP Only Cookieからセッションを読み取り、
// スーパー管理者として有効かを検証するミドルウェアを返す。
// 有効な場合はメールアドレスをリクエストコンテキストに注入し、
// それ以外は401 Unauthorizedを返す。
func NewSessionMiddleware(finder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := sessionFromRequest(finder, r)
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := ContextWithEmail(r.Context(), session.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalSessionMiddleware はセッションがあればメールアドレスを注入し、
// なくても次のハンドラーに処理を渡すミドルウェアを返す。
// ログやレート制限のキーとしてメールアドレスを使うために公開APIの前段に置く。
func NewOptionalSessionMiddleware(finder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, ok := sessionFromRequest(finder, r); ok {
				r = r.WithContext(ContextWithEmail(r.Context(), session.Email))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionIDFromRequest はCookieからセッションIDを取得する。ない場合は空文字列を返す。
func SessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func sessionFromRequest(finder SessionFinder, r *http.Request) (*model.Session, bool) {
	id := SessionIDFromRequest(r)
	if id == "" {
		return nil, false
	}
	return finder.CurrentSession(id)
}

// EmailFromContext はリクエストコンテキストからスーパー管理者のメールアドレスを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func EmailFromContext(ctx context.Context) (string, error) {
	email, ok := ctx.Value(emailContextKey).(string)
	if !ok || email == "" {
		return "", fmt.Errorf("superadmin email not found in context")
	}
	return email, nil
}

// ContextWithEmail はコンテキストにメールアドレスを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailContextKey, email)
}
