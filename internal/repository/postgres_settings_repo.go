package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pushgo/depotman/internal/model"
)

// PostgresSettingsRepo は公開ロールでapp_settingsを読み取るリポジトリ。
// 書き込みはRLSポリシーで拒否されるため、書き込みメソッドは提供しない。
type PostgresSettingsRepo struct {
	db *sql.DB
}

// NewPostgresSettingsRepo はPostgresSettingsRepoを生成する。
func NewPostgresSettingsRepo(db *sql.DB) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{db: db}
}

// Get は指定キーの設定を取得する。見つからない場合はnilを返す。
func (r *PostgresSettingsRepo) Get(ctx context.Context, key string) (*model.AppSetting, error) {
	setting := &model.AppSetting{}
	err := r.db.QueryRowContext(ctx,
		`SELECT key, value FROM app_settings WHERE key = $1`,
		key,
	).Scan(&setting.Key, &setting.Value)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}

	return setting, nil
}

// compile-time interface check
var _ SettingsReader = (*PostgresSettingsRepo)(nil)
