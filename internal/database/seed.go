package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// seedDepot は初期投入するデポ。任意項目は空で登録する。
type seedDepot struct {
	Name  string
	State string
}

// initialDepots は運用開始時点で登録済みだったデポの一覧。
var initialDepots = []seedDepot{
	{"Sasaram_Karwandiya_D", "Bihar"},
	{"Jhanjharpur_Mahespura_D", "Bihar"},
	{"Sasaram_Manikpur_D", "Bihar"},
	{"Chhapra_Newajitola_D", "Bihar"},
	{"Arrah_Pakariabar_D", "Bihar"},
	{"Sonbarsa_Sitamarhi_D", "Bihar"},
	{"Gopalganj_HarsanHosp_D", "Bihar"},
	{"Jamshedpur_Jugsalai_D", "Jharkhand"},
	{"Dinara_Wardno7_D", "Bihar"},
	{"Udakishanganj_ClgChwk_D", "Bihar"},
	{"Patna_Chanakyavihar_D", "Bihar"},
	{"Simrahi_Bazar_D", "Bihar"},
	{"Begusarai_Haibatpur_D", "Bihar"},
	{"Sugauli_Ward3_D", "Bihar"},
	{"Muzaffarpur_Motipur_D", "Bihar"},
	{"Purnia_Banbhag1_D", "Bihar"},
	{"Mohania_Shivpuricolony_D", "Bihar"},
	{"Dhanbad_Tilabani_D", "Jharkhand"},
}

// SeedDepots はdepotsテーブルが空の場合に初期デポを投入する。
// 既に1件以上ある場合は何もせず0を返す。投入件数を返す。
func SeedDepots(ctx context.Context, db *sql.DB) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM depots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count depots: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	// 一覧はcreated_at降順で表示されるため、末尾から投入して元の並び順を保つ
	for i := len(initialDepots) - 1; i >= 0; i-- {
		d := initialDepots[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO depots (id, name, state, created_at)
			 VALUES ($1, $2, $3, clock_timestamp())`,
			uuid.New().String(), d.Name, d.State,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert seed depot %s: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(initialDepots), nil
}
