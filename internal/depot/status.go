package depot

import (
	"sync"
	"time"
)

// NoticeKind はステータス通知の種別。
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// 利用者に表示するステータス文言
const (
	MsgDepotAdded   = "New depot added successfully"
	MsgDepotUpdated = "Depot updated successfully"
	MsgDepotDeleted = "Depot deleted successfully"
	MsgLoadFailed   = "Error loading data"
	MsgSaveFailed   = "Failed to save data"
	MsgDeleteFailed = "Failed to delete depot"
)

// Notice は一時的に表示するステータス通知。
type Notice struct {
	Kind     NoticeKind
	Message  string
	PostedAt time.Time
}

// Board は直近のステータス通知を1件だけ保持する。
// 通知は投稿からdismissAfter経過後に自動的に消える。
// 新しい通知は古い通知を置き換え、古い通知のタイマーは新しい通知を消さない。
type Board struct {
	mu           sync.Mutex
	dismissAfter time.Duration
	current      *Notice
	seq          uint64
	timer        *time.Timer
	now          func() time.Time
}

// NewBoard はBoardを生成する。dismissAfterが0以下の場合は自動で消えない。
func NewBoard(dismissAfter time.Duration) *Board {
	return &Board{
		dismissAfter: dismissAfter,
		now:          time.Now,
	}
}

// Post は通知を投稿し、以前の通知を置き換える。
func (b *Board) Post(kind NoticeKind, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	seq := b.seq
	b.current = &Notice{Kind: kind, Message: message, PostedAt: b.now()}

	if b.timer != nil {
		b.timer.Stop()
	}
	if b.dismissAfter > 0 {
		b.timer = time.AfterFunc(b.dismissAfter, func() { b.dismiss(seq) })
	}
}

// Current は表示中の通知を返す。通知がない場合はfalseを返す。
func (b *Board) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return Notice{}, false
	}
	return *b.current, true
}

// Clear は表示中の通知を即座に消す。
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = nil
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Board) dismiss(seq uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seq == seq {
		b.current = nil
		b.timer = nil
	}
}
