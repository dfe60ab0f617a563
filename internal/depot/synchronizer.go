// Package depot はデポ一覧の同期、絞り込み、ステータス通知を提供する。
package depot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pushgo/depotman/internal/metrics"
	"github.com/pushgo/depotman/internal/model"
	"github.com/pushgo/depotman/internal/repository"
)

// DefaultStoreTimeout はストア呼び出し1回あたりのデフォルトのタイムアウト。
const DefaultStoreTimeout = 10 * time.Second

// Config はSynchronizerの設定。
type Config struct {
	// StoreTimeout はストア呼び出し1回あたりのタイムアウト。
	// 呼び出し元のキャンセルとは切り離して適用する。
	StoreTimeout time.Duration
}

// Synchronizer はデポストアとメモリ上のスナップショットを同期する。
// ストアが正であり、スナップショットは最後に読み込めた一覧を保持する。
// ストアのエラーは操作の境界で捕捉し、ログとステータス通知に変換したうえで
// 型付きのエラーとして返す。
type Synchronizer struct {
	repo    repository.DepotRepository
	board   *Board
	metrics metrics.MetricsCollector
	timeout time.Duration
	newID   func() string

	mu       sync.RWMutex
	snapshot []model.Depot
}

// NewSynchronizer はSynchronizerを生成する。
// mcがnilの場合はメトリクスを記録しない。
func NewSynchronizer(repo repository.DepotRepository, board *Board, mc metrics.MetricsCollector, cfg Config) *Synchronizer {
	if mc == nil {
		mc = metrics.Nop{}
	}
	timeout := cfg.StoreTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Synchronizer{
		repo:     repo,
		board:    board,
		metrics:  mc,
		timeout:  timeout,
		newID:    func() string { return uuid.New().String() },
		snapshot: []model.Depot{},
	}
}

// List はストアから全デポを読み込み、スナップショットを置き換えて返す。
// 読み込みに失敗した場合はスナップショットを変更せず、
// 直前のスナップショットとStoreUnavailableエラーを両方返す。
func (s *Synchronizer) List(ctx context.Context) ([]model.Depot, error) {
	rows, err := s.listRows(ctx)
	if err != nil {
		slog.Error("デポ一覧の読み込みに失敗",
			slog.String("error", err.Error()),
		)
		s.board.Post(NoticeError, MsgLoadFailed)
		return s.Snapshot(), model.NewStoreUnavailableError(MsgLoadFailed)
	}

	depots := fromRows(rows)
	s.mu.Lock()
	s.snapshot = depots
	s.mu.Unlock()

	return s.Snapshot(), nil
}

// Snapshot は最後に読み込めたデポ一覧のコピーを返す。
func (s *Synchronizer) Snapshot() []model.Depot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Depot, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// Create は新しいIDを採番してデポを作成する。
// 成功した場合はスナップショットを再読み込みする。
func (s *Synchronizer) Create(ctx context.Context, fields model.DepotFields) (model.Depot, error) {
	if err := validate(fields); err != nil {
		s.metrics.RecordDepotOperation("create", metrics.OutcomeInvalid)
		return model.Depot{}, err
	}

	d := fields.WithID(s.newID())
	err := s.withStore(ctx, "create", func(ctx context.Context) error {
		return s.repo.Insert(ctx, toRow(d))
	})
	if err != nil {
		slog.Error("デポの作成に失敗",
			slog.String("depot_name", d.Name),
			slog.String("error", err.Error()),
		)
		s.board.Post(NoticeError, MsgSaveFailed)
		return model.Depot{}, model.NewStoreUnavailableError(MsgSaveFailed)
	}

	s.board.Post(NoticeSuccess, MsgDepotAdded)
	s.refresh(ctx)
	return d, nil
}

// Update は指定IDのデポのID以外の属性を上書きする。後勝ちで、競合検出は行わない。
func (s *Synchronizer) Update(ctx context.Context, id string, fields model.DepotFields) (model.Depot, error) {
	if err := validate(fields); err != nil {
		s.metrics.RecordDepotOperation("update", metrics.OutcomeInvalid)
		return model.Depot{}, err
	}

	d := fields.WithID(id)
	err := s.withStore(ctx, "update", func(ctx context.Context) error {
		return s.repo.Update(ctx, toRow(d))
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.Depot{}, model.NewDepotNotFoundError(id)
	}
	if err != nil {
		slog.Error("デポの更新に失敗",
			slog.String("depot_id", id),
			slog.String("error", err.Error()),
		)
		s.board.Post(NoticeError, MsgSaveFailed)
		return model.Depot{}, model.NewStoreUnavailableError(MsgSaveFailed)
	}

	s.board.Post(NoticeSuccess, MsgDepotUpdated)
	s.refresh(ctx)
	return d, nil
}

// Delete は指定IDのデポを削除する。取り消しはできない。
// パスキー照合を経た削除確認フローからのみ呼び出すこと。
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	err := s.withStore(ctx, "delete", func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if errors.Is(err, repository.ErrNotFound) {
		s.removeFromSnapshot(id)
		return model.NewDepotNotFoundError(id)
	}
	if err != nil {
		slog.Error("デポの削除に失敗",
			slog.String("depot_id", id),
			slog.String("error", err.Error()),
		)
		s.board.Post(NoticeError, MsgDeleteFailed)
		return model.NewStoreUnavailableError(MsgDeleteFailed)
	}

	s.board.Post(NoticeSuccess, MsgDepotDeleted)
	s.removeFromSnapshot(id)
	s.refresh(ctx)
	return nil
}

func (s *Synchronizer) listRows(ctx context.Context) ([]repository.DepotRow, error) {
	var rows []repository.DepotRow
	err := s.withStore(ctx, "list", func(ctx context.Context) error {
		var err error
		rows, err = s.repo.List(ctx)
		return err
	})
	return rows, err
}

// refresh は書き込み成功後にスナップショットを再読み込みする。
// 失敗した場合は通知のみ行い、書き込み自体の結果は変えない。
func (s *Synchronizer) refresh(ctx context.Context) {
	_, _ = s.List(ctx)
}

func (s *Synchronizer) removeFromSnapshot(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.snapshot[:0:0]
	for _, d := range s.snapshot {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	s.snapshot = kept
}

// withStore はストア呼び出しを実行し、レイテンシと結果を記録する。
// 呼び出し元のキャンセルは伝播させず、StoreTimeoutのみを適用する。
func (s *Synchronizer) withStore(ctx context.Context, op string, fn func(context.Context) error) error {
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	err := fn(storeCtx)
	s.metrics.RecordStoreLatency(op, time.Since(start))

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	s.metrics.RecordDepotOperation(op, outcome)
	return err
}

// validate は必須項目を検証する。値は加工せずそのまま保存する。
func validate(f model.DepotFields) error {
	if strings.TrimSpace(f.Name) == "" {
		return model.NewInvalidInputError("Depot name is required.")
	}
	if !f.State.Valid() {
		return model.NewInvalidInputError("State must be one of Bihar or Jharkhand.")
	}
	return nil
}
