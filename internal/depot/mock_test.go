package depot

import (
	"context"
	"sync"
	"time"

	"github.com/pushgo/depotman/internal/repository"
)

// mockDepotRepository はDepotRepositoryのテスト用モック。
// Fnが未設定の操作はメモリ上の行に対して動作する。
type mockDepotRepository struct {
	mu   sync.Mutex
	rows []repository.DepotRow
	tick time.Time

	listFn   func(ctx context.Context) ([]repository.DepotRow, error)
	insertFn func(ctx context.Context, row repository.DepotRow) error
	updateFn func(ctx context.Context, row repository.DepotRow) error
	deleteFn func(ctx context.Context, id string) error
}

func newMockDepotRepository(rows ...repository.DepotRow) *mockDepotRepository {
	return &mockDepotRepository{
		rows: rows,
		tick: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockDepotRepository) List(ctx context.Context) ([]repository.DepotRow, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// created_at降順
	out := make([]repository.DepotRow, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0; i-- {
		out = append(out, m.rows[i])
	}
	return out, nil
}

func (m *mockDepotRepository) Insert(ctx context.Context, row repository.DepotRow) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick = m.tick.Add(time.Second)
	row.CreatedAt = m.tick
	m.rows = append(m.rows, row)
	return nil
}

func (m *mockDepotRepository) Update(ctx context.Context, row repository.DepotRow) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rows {
		if m.rows[i].ID == row.ID {
			row.CreatedAt = m.rows[i].CreatedAt
			m.rows[i] = row
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockDepotRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockDepotRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

var _ repository.DepotRepository = (*mockDepotRepository)(nil)
