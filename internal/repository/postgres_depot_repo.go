package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresDepotRepo はPostgreSQLを使用したデポリポジトリ。
type PostgresDepotRepo struct {
	db *sql.DB
}

// NewPostgresDepotRepo はPostgresDepotRepoを生成する。
func NewPostgresDepotRepo(db *sql.DB) *PostgresDepotRepo {
	return &PostgresDepotRepo{db: db}
}

// List は全デポをcreated_at降順で返す。
// 任意項目がNULLの行も空文字列として読み取る。
func (r *PostgresDepotRepo) List(ctx context.Context) ([]DepotRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, state,
		        COALESCE(district, ''), COALESCE(tl_name, ''), COALESCE(tl_number, ''),
		        COALESCE(address, ''), COALESCE(map_link, ''), created_at
		 FROM depots
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list depots: %w", err)
	}
	defer rows.Close()

	result := make([]DepotRow, 0)
	for rows.Next() {
		var row DepotRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.State,
			&row.District, &row.TLName, &row.TLNumber,
			&row.Address, &row.MapLink, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan depot: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate depots: %w", err)
	}

	return result, nil
}

// Insert はデポを作成する。
func (r *PostgresDepotRepo) Insert(ctx context.Context, row DepotRow) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO depots (id, name, state, district, tl_name, tl_number, address, map_link)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		row.ID, row.Name, row.State, row.District, row.TLName, row.TLNumber, row.Address, row.MapLink,
	)
	if err != nil {
		return fmt.Errorf("failed to insert depot: %w", err)
	}
	return nil
}

// Update は指定IDのデポを上書き更新する。
func (r *PostgresDepotRepo) Update(ctx context.Context, row DepotRow) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE depots
		 SET name = $2, state = $3, district = $4, tl_name = $5,
		     tl_number = $6, address = $7, map_link = $8
		 WHERE id = $1`,
		row.ID, row.Name, row.State, row.District, row.TLName, row.TLNumber, row.Address, row.MapLink,
	)
	if err != nil {
		return fmt.Errorf("failed to update depot: %w", err)
	}
	return expectAffected(result)
}

// Delete は指定IDのデポを削除する。
func (r *PostgresDepotRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM depots WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete depot: %w", err)
	}
	return expectAffected(result)
}

// expectAffected は1行以上が更新されたことを確認する。
func expectAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// compile-time interface check
var _ DepotRepository = (*PostgresDepotRepo)(nil)
