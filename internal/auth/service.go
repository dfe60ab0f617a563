// Package auth はマジックリンク認証、スーパー管理者ゲート、セッション管理を提供する。
package auth

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/pushgo/depotman/internal/metrics"
	"github.com/pushgo/depotman/internal/model"
)

// ProviderSession は認証プロバイダーが発行したセッション。
type ProviderSession struct {
	AccessToken string
	ExpiresIn   int
	Email       string
}

// MagicLinkProvider はパスワードレス認証プロバイダーのインターフェース。
type MagicLinkProvider interface {
	// SendMagicLink はemail宛にログインリンクを送信する。
	SendMagicLink(ctx context.Context, email, redirectTo string) error
	// VerifyMagicLink はログインリンクのトークンハッシュを検証する。
	VerifyMagicLink(ctx context.Context, tokenHash, linkType string) (*ProviderSession, error)
	// SignOut は外部セッションを無効化する。
	SignOut(ctx context.Context, accessToken string) error
}

// EmailExtractor はアクセストークンからメールアドレスを取り出す。
type EmailExtractor interface {
	Email(accessToken string) (string, error)
}

// Authorizer はメールアドレスがスーパー管理者かどうかを判定する。
type Authorizer interface {
	IsSuperadmin(email string) bool
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// CallbackURL はログインリンクからの戻り先。
	CallbackURL string
}

// Service はスーパー管理者のログインに関するビジネスロジックを提供する。
type Service struct {
	provider MagicLinkProvider
	tokens   EmailExtractor
	gate     Authorizer
	sessions *SessionStore
	metrics  metrics.MetricsCollector
	config   ServiceConfig
}

// NewService はServiceを生成する。mcがnilの場合はメトリクスを記録しない。
func NewService(
	provider MagicLinkProvider,
	tokens EmailExtractor,
	gate Authorizer,
	sessions *SessionStore,
	mc metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		provider: provider,
		tokens:   tokens,
		gate:     gate,
		sessions: sessions,
		metrics:  mc,
		config:   config,
	}
}

// RequestMagicLink はログインリンクを送信する。
// 送信先がスーパー管理者かどうかはここでは判定せず、コールバック時にゲートで判定する。
func (s *Service) RequestMagicLink(ctx context.Context, email string) error {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return model.NewInvalidInputError("A valid email address is required.")
	}
	email = addr.Address

	if err := s.provider.SendMagicLink(ctx, email, s.config.CallbackURL); err != nil {
		slog.Error("ログインリンクの送信に失敗",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return model.NewAuthProviderError()
	}

	slog.Info("ログインリンクを送信", slog.String("email", email))
	return nil
}

// HandleCallback はログインリンクを検証し、ゲートを通過した場合にセッションを発行する。
// ゲートで拒否された場合は外部セッションを直ちにサインアウトし、AccessDeniedを返す。
func (s *Service) HandleCallback(ctx context.Context, tokenHash, linkType string) (*model.Session, error) {
	if tokenHash == "" {
		return nil, model.NewInvalidInputError("token_hash is required.")
	}
	state := StateAnonymous

	// 1. トークンハッシュを検証して外部セッションを取得
	ps, err := s.provider.VerifyMagicLink(ctx, tokenHash, linkType)
	if err != nil {
		slog.Warn("ログインリンクの検証に失敗", slog.String("error", err.Error()))
		return nil, model.NewLoginFailedError()
	}

	// 2. アクセストークンからメールアドレスを取得
	email, err := s.tokens.Email(ps.AccessToken)
	if err != nil {
		slog.Warn("アクセストークンの検証に失敗", slog.String("error", err.Error()))
		s.signOut(ctx, ps.AccessToken)
		return nil, model.NewLoginFailedError()
	}
	state, _ = state.Next(EventSessionReceived)

	// 3. スーパー管理者ゲート
	accepted := s.gate.IsSuperadmin(email)
	s.metrics.RecordGateDecision(accepted)
	if !accepted {
		state, _ = state.Next(EventGateRejected)
		slog.Warn("スーパー管理者以外のログインを拒否",
			slog.String("email", email),
			slog.String("state", state.String()),
		)
		s.signOut(ctx, ps.AccessToken)
		return nil, model.NewAccessDeniedError()
	}
	state, _ = state.Next(EventGateAccepted)

	// 4. セッションを発行
	session, err := s.sessions.Create(email, ps.AccessToken)
	if err != nil {
		s.signOut(ctx, ps.AccessToken)
		return nil, err
	}

	slog.Info("スーパー管理者がログイン",
		slog.String("email", email),
		slog.String("state", state.String()),
	)
	return session, nil
}

// Logout はセッションを破棄し、外部セッションもサインアウトする。
// セッションが存在しない場合も成功として扱う。
func (s *Service) Logout(ctx context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	s.sessions.Delete(sessionID)
	if !ok {
		return
	}

	s.signOut(ctx, session.AccessToken)
	slog.Info("スーパー管理者がログアウト", slog.String("email", session.Email))
}

// CurrentSession は有効なセッションを返す。
// ゲートを通過できなくなったセッション（設定変更後など）は破棄する。
func (s *Service) CurrentSession(sessionID string) (*model.Session, bool) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, false
	}
	if !s.gate.IsSuperadmin(session.Email) {
		s.sessions.Delete(sessionID)
		return nil, false
	}
	return session, true
}

// State は指定セッションのログイン状態を返す。
func (s *Service) State(sessionID string) SessionState {
	if _, ok := s.CurrentSession(sessionID); ok {
		return StateAuthenticatedAuthorized
	}
	return StateAnonymous
}

// signOut は外部セッションをサインアウトする。失敗はログにのみ記録する。
func (s *Service) signOut(ctx context.Context, accessToken string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		slog.Warn("外部セッションのサインアウトに失敗", slog.String("error", err.Error()))
	}
}
