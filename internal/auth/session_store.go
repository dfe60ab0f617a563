package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pushgo/depotman/internal/model"
)

// SessionStore はスーパー管理者のセッションをメモリ上に保持する。
// プロセス再起動で失われるため、その場合は再ログインが必要になる。
type SessionStore struct {
	sessions *expirable.LRU[string, *model.Session]
	maxAge   time.Duration
	now      func() time.Time
}

// NewSessionStore はSessionStoreを生成する。
// sizeは同時に保持するセッション数の上限、maxAgeはセッションの有効期間。
func NewSessionStore(size int, maxAge time.Duration) *SessionStore {
	if size <= 0 {
		size = 128
	}
	return &SessionStore{
		sessions: expirable.NewLRU[string, *model.Session](size, nil, maxAge),
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Create は新しいセッションを発行する。
func (s *SessionStore) Create(email, accessToken string) (*model.Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:          id,
		Email:       email,
		AccessToken: accessToken,
		ExpiresAt:   now.Add(s.maxAge),
		CreatedAt:   now,
	}
	s.sessions.Add(id, session)
	return session, nil
}

// Get はセッションを返す。存在しない、または期限切れの場合はfalseを返す。
func (s *SessionStore) Get(id string) (*model.Session, bool) {
	if id == "" {
		return nil, false
	}
	session, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	if !s.now().Before(session.ExpiresAt) {
		s.sessions.Remove(id)
		return nil, false
	}
	return session, true
}

// Delete はセッションを破棄する。
func (s *SessionStore) Delete(id string) {
	s.sessions.Remove(id)
}

// Len は保持しているセッション数を返す。
func (s *SessionStore) Len() int {
	return s.sessions.Len()
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
