// Package passkey は削除用パスキーの照合と更新を提供する。
package passkey

import (
	"context"
	"log/slog"

	"github.com/pushgo/depotman/internal/metrics"
	"github.com/pushgo/depotman/internal/model"
	"github.com/pushgo/depotman/internal/repository"
)

// Verifier は入力されたパスキーを保存済みの値と照合する。
// 公開ロール（RLS適用）の接続で読み取りのみを行う。
type Verifier struct {
	settings repository.SettingsReader
	metrics  metrics.MetricsCollector
}

// NewVerifier はVerifierを生成する。mcがnilの場合はメトリクスを記録しない。
func NewVerifier(settings repository.SettingsReader, mc metrics.MetricsCollector) *Verifier {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Verifier{settings: settings, metrics: mc}
}

// Verify はcandidateが保存済みパスキーと完全一致する場合にtrueを返す。
// 大文字小文字を区別し、空白の除去も行わない。
// 空文字列はストアにアクセスせずfalseを返す。
// 設定が存在しない場合や読み取りに失敗した場合もfalseを返し、エラーはログにのみ記録する。
func (v *Verifier) Verify(ctx context.Context, candidate string) bool {
	if candidate == "" {
		return false
	}

	setting, err := v.settings.Get(ctx, model.PasskeySettingKey)
	if err != nil {
		slog.Error("パスキーの読み取りに失敗",
			slog.String("error", err.Error()),
		)
		v.metrics.RecordPasskeyVerification(false)
		return false
	}
	if setting == nil {
		slog.Warn("パスキーが未設定のため照合に失敗",
			slog.String("key", model.PasskeySettingKey),
		)
		v.metrics.RecordPasskeyVerification(false)
		return false
	}

	matched := setting.Value == candidate
	v.metrics.RecordPasskeyVerification(matched)
	return matched
}
