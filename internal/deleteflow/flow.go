// Package deleteflow はパスキー照合を経てデポを削除する確認フローを提供する。
package deleteflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pushgo/depotman/internal/model"
)

// デフォルト値
const (
	DefaultTTL        = 10 * time.Minute
	DefaultMaxPending = 1024
)

// Verifier はパスキーを照合する。
type Verifier interface {
	Verify(ctx context.Context, candidate string) bool
}

// Deleter はデポを削除する。
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Config はFlowの設定。
type Config struct {
	// TTL は削除確認の有効期限。期限切れの確認は取り消し扱いになる。
	TTL time.Duration
	// MaxPending は同時に保持する削除確認の上限。超えた場合は古いものから破棄する。
	MaxPending int
}

// PendingDelete は削除対象のデポIDだけを保持する削除確認。
type PendingDelete struct {
	ID          string
	DepotID     string
	RequestedAt time.Time
}

// Flow は削除確認の発行・確定・取り消しを扱う。
// 照合に失敗しても確認は残り、回数制限なく再試行できる。
type Flow struct {
	verifier Verifier
	deleter  Deleter
	pending  *expirable.LRU[string, PendingDelete]
	newID    func() string
	now      func() time.Time
}

// NewFlow はFlowを生成する。
func NewFlow(verifier Verifier, deleter Deleter, cfg Config) *Flow {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	size := cfg.MaxPending
	if size <= 0 {
		size = DefaultMaxPending
	}
	return &Flow{
		verifier: verifier,
		deleter:  deleter,
		pending:  expirable.NewLRU[string, PendingDelete](size, nil, ttl),
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
}

// Request は指定デポの削除確認を発行する。
func (f *Flow) Request(depotID string) (PendingDelete, error) {
	if strings.TrimSpace(depotID) == "" {
		return PendingDelete{}, model.NewInvalidInputError("Depot ID is required.")
	}

	p := PendingDelete{
		ID:          f.newID(),
		DepotID:     depotID,
		RequestedAt: f.now(),
	}
	f.pending.Add(p.ID, p)
	return p, nil
}

// Get は発行済みの削除確認を返す。
func (f *Flow) Get(pendingID string) (PendingDelete, bool) {
	return f.pending.Get(pendingID)
}

// Confirm はパスキーを照合し、一致した場合にデポを削除して確認を破棄する。
// 不一致の場合はVerificationFailedを返し、確認は残す。
// 削除に失敗した場合も確認は残すが、デポが既に存在しない場合は破棄する。
func (f *Flow) Confirm(ctx context.Context, pendingID, passkey string) error {
	// 1. 削除確認の取得
	p, ok := f.pending.Get(pendingID)
	if !ok {
		return model.NewDeleteRequestNotFoundError(pendingID)
	}

	// 2. 入力チェック
	if passkey == "" {
		return model.NewInvalidInputError("Passkey is required.")
	}

	// 3. パスキー照合
	if !f.verifier.Verify(ctx, passkey) {
		slog.Warn("削除確認のパスキー照合に失敗",
			slog.String("pending_id", pendingID),
			slog.String("depot_id", p.DepotID),
		)
		return model.NewVerificationFailedError()
	}

	// 4. 削除
	if err := f.deleter.Delete(ctx, p.DepotID); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDepotNotFound {
			f.pending.Remove(pendingID)
		}
		return err
	}

	f.pending.Remove(pendingID)
	slog.Info("デポを削除",
		slog.String("pending_id", pendingID),
		slog.String("depot_id", p.DepotID),
	)
	return nil
}

// Cancel は削除確認を破棄する。存在しない場合も何もせず成功する。
func (f *Flow) Cancel(pendingID string) {
	f.pending.Remove(pendingID)
}
