package repository

import (
	"context"
	"sync"

	"github.com/hitoshi/unimart/internal/model"
)

// MemoryListingRepo はListingRepositoryのインメモリ実装。
// 出品をスライスで保持し、挿入順（新しい順）を維持する。
// 読み取りはコピーを返すため、呼び出し側での変更が内部状態に影響することはない。
type MemoryListingRepo struct {
	mu       sync.RWMutex
	listings []*model.Listing
}

// NewMemoryListingRepo はMemoryListingRepoを生成する。
func NewMemoryListingRepo() *MemoryListingRepo {
	return &MemoryListingRepo{}
}

// Insert は出品をコレクションの先頭に追加する。
func (r *MemoryListingRepo) Insert(ctx context.Context, listing *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *listing
	r.listings = append([]*model.Listing{&clone}, r.listings...)
	return nil
}

// FindByID はIDに一致する出品を返す。存在しない場合は(nil, nil)。
func (r *MemoryListingRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.listings {
		if l.ID == id {
			clone := *l
			return &clone, nil
		}
	}
	return nil, nil
}

// Update はIDに一致する出品へパッチを適用する。
// nilフィールドは変更しない。IDと出品者スナップショットは対象外。
func (r *MemoryListingRepo) Update(ctx context.Context, id string, patch model.ListingPatch) (*model.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.listings {
		if l.ID != id {
			continue
		}
		if patch.Title != nil {
			l.Title = *patch.Title
		}
		if patch.Description != nil {
			l.Description = *patch.Description
		}
		if patch.Price != nil {
			l.Price = *patch.Price
		}
		if patch.Category != nil {
			l.Category = *patch.Category
		}
		if patch.Negotiable != nil {
			l.Negotiable = *patch.Negotiable
		}
		if patch.Image != nil {
			l.Image = *patch.Image
		}
		clone := *l
		return &clone, nil
	}
	return nil, nil
}

// Delete はIDに一致する出品を削除する。存在しない場合は何もしない。
func (r *MemoryListingRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, l := range r.listings {
		if l.ID == id {
			r.listings = append(r.listings[:i], r.listings[i+1:]...)
			return nil
		}
	}
	return nil
}

// List は全出品を挿入順（新しい順）で返す。
func (r *MemoryListingRepo) List(ctx context.Context) ([]*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Listing, len(r.listings))
	for i, l := range r.listings {
		clone := *l
		result[i] = &clone
	}
	return result, nil
}

// Clear は全出品を破棄する。
func (r *MemoryListingRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings = nil
	return nil
}
