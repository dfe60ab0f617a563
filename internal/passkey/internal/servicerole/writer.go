// Package servicerole はRLSをバイパスするサービスロール接続での書き込みを提供する。
// internal配下に置き、passkeyパッケージ以外からは利用できないようにしている。
package servicerole

import (
	"context"
	"database/sql"
	"fmt"
)

// SettingsWriter はサービスロール接続でapp_settingsに書き込む。
type SettingsWriter struct {
	db *sql.DB
}

// NewSettingsWriter はSettingsWriterを生成する。
// dbにはサービスロールで開いた接続を渡すこと。公開ロールの接続ではRLSにより書き込みが拒否される。
func NewSettingsWriter(db *sql.DB) *SettingsWriter {
	return &SettingsWriter{db: db}
}

// Upsert は指定キーの値を作成または上書きする。
func (w *SettingsWriter) Upsert(ctx context.Context, key, value string) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO app_settings (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}
