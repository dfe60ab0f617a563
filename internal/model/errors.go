// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, depot, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeStoreUnavailable      = "STORE_UNAVAILABLE"
	ErrCodeVerificationFailed    = "VERIFICATION_FAILED"
	ErrCodePasskeyUpdateFailed   = "PASSKEY_UPDATE_FAILED"
	ErrCodeDepotNotFound         = "DEPOT_NOT_FOUND"
	ErrCodeDeleteRequestNotFound = "DELETE_REQUEST_NOT_FOUND"

	ErrCodeAuthProviderUnavailable = "AUTH_PROVIDER_UNAVAILABLE"
)

// MinPasskeyLength はパスキーの最小文字数。
const MinPasskeyLength = 4

// NewUnauthorizedError はスーパー管理者以外からの操作を拒否するエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Unauthorized: Only Superadmin can update the passkey.",
		Category: "auth",
		Action:   "スーパー管理者のメールアドレスでログインしてください。",
	}
}

// NewAccessDeniedError はログインしたメールアドレスがスーパー管理者でない場合のエラーを生成する。
func NewAccessDeniedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Access Denied: You are not the Superadmin.",
		Category: "auth",
		Action:   "スーパー管理者のメールアドレスでログインし直してください。",
	}
}

// NewInvalidInputError は入力値不正エラーを生成する。
func NewInvalidInputError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInput,
		Message:  reason,
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewPasskeyTooShortError はパスキーが短すぎる場合のエラーを生成する。
func NewPasskeyTooShortError() *APIError {
	return NewInvalidInputError(fmt.Sprintf("Passkey must be at least %d characters.", MinPasskeyLength))
}

// NewStoreUnavailableError はデータストアへのアクセス失敗エラーを生成する。
// messageには利用者に表示するステータス文言を指定する。
func NewStoreUnavailableError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  message,
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewVerificationFailedError はパスキー照合失敗エラーを生成する。
// パスキー不一致と照合処理自体の失敗は区別しない。
func NewVerificationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeVerificationFailed,
		Message:  "Invalid Passkey! Access Denied.",
		Category: "auth",
		Action:   "正しいパスキーを入力して再度お試しください。",
	}
}

// NewPasskeyUpdateFailedError はパスキー更新失敗エラーを生成する。
// 下位のエラー内容はログにのみ記録し、ここには含めない。
func NewPasskeyUpdateFailedError() *APIError {
	return &APIError{
		Code:     ErrCodePasskeyUpdateFailed,
		Message:  "Failed to update passkey.",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewDepotNotFoundError はデポが見つからない場合のエラーを生成する。
func NewDepotNotFoundError(depotID string) *APIError {
	return &APIError{
		Code:     ErrCodeDepotNotFound,
		Message:  fmt.Sprintf("指定されたデポが見つかりません: %s", depotID),
		Category: "depot",
		Action:   "一覧を再読み込みしてください。",
	}
}

// NewDeleteRequestNotFoundError は削除確認が見つからない（取消済み・期限切れ）場合のエラーを生成する。
func NewDeleteRequestNotFoundError(requestID string) *APIError {
	return &APIError{
		Code:     ErrCodeDeleteRequestNotFound,
		Message:  fmt.Sprintf("削除確認が見つかりません: %s", requestID),
		Category: "depot",
		Action:   "削除操作をやり直してください。",
	}
}

// NewLoginFailedError はログインリンクの検証に失敗した場合のエラーを生成する。
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Login link is invalid or has expired.",
		Category: "auth",
		Action:   "ログインリンクを再送信してください。",
	}
}

// NewAuthProviderError は認証プロバイダーへのリクエストが失敗した場合のエラーを生成する。
func NewAuthProviderError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthProviderUnavailable,
		Message:  "Failed to send magic link.",
		Category: "auth",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
