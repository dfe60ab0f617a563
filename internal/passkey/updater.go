package passkey

import (
	"context"
	"database/sql"
	"log/slog"
	"unicode/utf8"

	"github.com/pushgo/depotman/internal/metrics"
	"github.com/pushgo/depotman/internal/model"
	"github.com/pushgo/depotman/internal/passkey/internal/servicerole"
)

// Authorizer は呼び出し元がスーパー管理者かどうかを判定する。
type Authorizer interface {
	IsSuperadmin(email string) bool
}

// settingsWriter はRLSをバイパスして設定を書き込む。
type settingsWriter interface {
	Upsert(ctx context.Context, key, value string) error
}

// Updater はスーパー管理者の認可を確認したうえでパスキーを更新する。
type Updater struct {
	authz   Authorizer
	writer  settingsWriter
	metrics metrics.MetricsCollector
}

// NewUpdater はUpdaterを生成する。
// serviceRoleDBにはRLSをバイパスできるサービスロールの接続を渡すこと。
func NewUpdater(authz Authorizer, serviceRoleDB *sql.DB, mc metrics.MetricsCollector) *Updater {
	return newUpdater(authz, servicerole.NewSettingsWriter(serviceRoleDB), mc)
}

func newUpdater(authz Authorizer, writer settingsWriter, mc metrics.MetricsCollector) *Updater {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Updater{authz: authz, writer: writer, metrics: mc}
}

// Update はパスキーを新しい値で上書きする。
// 認可はストアへのアクセスより先に行い、callerEmailが空または
// スーパー管理者と一致しない場合はUnauthorizedを返す。
// 新しいパスキーが4文字（コードポイント数）未満の場合はInvalidInputを返す。
// 書き込みに失敗した場合はPasskeyUpdateFailedを返し、原因はログにのみ記録する。
func (u *Updater) Update(ctx context.Context, newPasskey, callerEmail string) error {
	// 1. 認可チェック
	if callerEmail == "" || !u.authz.IsSuperadmin(callerEmail) {
		slog.Warn("スーパー管理者以外によるパスキー更新を拒否",
			slog.String("email", callerEmail),
		)
		u.metrics.RecordPasskeyUpdate(metrics.OutcomeDenied)
		return model.NewUnauthorizedError()
	}

	// 2. 入力検証
	if utf8.RuneCountInString(newPasskey) < model.MinPasskeyLength {
		u.metrics.RecordPasskeyUpdate(metrics.OutcomeInvalid)
		return model.NewPasskeyTooShortError()
	}

	// 3. サービスロールで書き込み
	if err := u.writer.Upsert(ctx, model.PasskeySettingKey, newPasskey); err != nil {
		slog.Error("パスキーの更新に失敗",
			slog.String("email", callerEmail),
			slog.String("error", err.Error()),
		)
		u.metrics.RecordPasskeyUpdate(metrics.OutcomeFailure)
		return model.NewPasskeyUpdateFailedError()
	}

	slog.Info("パスキーを更新",
		slog.String("email", callerEmail),
	)
	u.metrics.RecordPasskeyUpdate(metrics.OutcomeSuccess)
	return nil
}
