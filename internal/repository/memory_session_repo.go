package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/unimart/internal/model"
)

// MemorySessionRepo はSessionRepositoryのインメモリ実装。
type MemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemorySessionRepo はMemorySessionRepoを生成する。
func NewMemorySessionRepo() *MemorySessionRepo {
	return &MemorySessionRepo{
		sessions: make(map[string]*model.Session),
	}
}

// Create はセッションを保存する。
func (r *MemorySessionRepo) Create(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

// FindByID はIDに一致する有効なセッションを返す。
// 期限切れのセッションはその場で破棄し、(nil, nil)を返す。
func (r *MemorySessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	if time.Now().After(session.ExpiresAt) {
		delete(r.sessions, id)
		return nil, nil
	}
	clone := *session
	return &clone, nil
}

// DeleteByID はIDに一致するセッションを削除する。存在しない場合は何もしない。
func (r *MemorySessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// DeleteAll は全セッションを破棄する。
func (r *MemorySessionRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = make(map[string]*model.Session)
	return nil
}
