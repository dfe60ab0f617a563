// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pushgo/depotman/internal/model"
)

// ErrNotFound は更新・削除対象の行が存在しない場合に返される。
var ErrNotFound = errors.New("record not found")

// DepotRow はdepotsテーブルの1行をストアの列名のまま表す。
// アプリケーション側のmodel.Depotとの変換はdepotパッケージが担う。
type DepotRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	District  string    `json:"district"`
	TLName    string    `json:"tl_name"`
	TLNumber  string    `json:"tl_number"`
	Address   string    `json:"address"`
	MapLink   string    `json:"map_link"`
	CreatedAt time.Time `json:"created_at"`
}

// DepotRepository はデポデータの永続化インターフェース。
// 公開ロール（RLS適用）の接続で動作する。
type DepotRepository interface {
	// List は全デポをcreated_at降順で返す。
	List(ctx context.Context) ([]DepotRow, error)

	// Insert はデポを作成する。IDは呼び出し側で採番済みであること。
	// created_atはストア側で付与する。
	Insert(ctx context.Context, row DepotRow) error

	// Update は指定IDのデポの全属性（ID、created_atを除く）を上書きする。
	// 楽観ロックは行わない（後勝ち）。対象がない場合はErrNotFoundを返す。
	Update(ctx context.Context, row DepotRow) error

	// Delete は指定IDのデポを削除する。対象がない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id string) error
}

// SettingsReader はapp_settingsの読み取りインターフェース。
// 公開ロールで読み取れる範囲のみを扱い、書き込み手段は持たない。
type SettingsReader interface {
	// Get は指定キーの設定を取得する。見つからない場合はnilを返す。
	Get(ctx context.Context, key string) (*model.AppSetting, error)
}
