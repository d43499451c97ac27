package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/hitoshi/unimart/internal/model"
)

// MemoryUserRepo はUserRepositoryのインメモリ実装。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: make(map[string]*model.User),
	}
}

// Create はユーザーを保存する。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *user
	r.users[user.ID] = &clone
	return nil
}

// FindByID はIDに一致するユーザーを返す。存在しない場合は(nil, nil)。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

// Update はユーザーを上書き保存する。存在しない場合はエラーを返す。
func (r *MemoryUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user not found: %s", user.ID)
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

// DeleteAll は全ユーザーを破棄する。
func (r *MemoryUserRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[string]*model.User)
	return nil
}
