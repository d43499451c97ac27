// Package repository はデータアクセス層を提供する。
//
// 本サービスは永続ストレージを持たず、すべてのデータはプロセスメモリ上に
// 保持される。カタログはプロセス起動時にサンプルデータから初期化され、
// プロセス終了とともに破棄される。
package repository

import (
	"context"

	"github.com/hitoshi/unimart/internal/model"
)

// ListingRepository は出品コレクションへのアクセスインターフェース。
// コレクションは挿入順（新しい順）を維持する。
type ListingRepository interface {
	// Insert は出品をコレクションの先頭に追加する（新しい順を維持）。
	Insert(ctx context.Context, listing *model.Listing) error
	// FindByID はIDに一致する出品を返す。存在しない場合は(nil, nil)。
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	// Update はIDに一致する出品へパッチを適用し、更新後の出品を返す。
	// 存在しない場合は(nil, nil)を返し、何も変更しない。IDは上書きできない。
	Update(ctx context.Context, id string, patch model.ListingPatch) (*model.Listing, error)
	// Delete はIDに一致する出品を削除する。存在しない場合は何もしない。
	Delete(ctx context.Context, id string) error
	// List は全出品を挿入順（新しい順）で返す。
	List(ctx context.Context) ([]*model.Listing, error)
	// Clear は全出品を破棄する。
	Clear(ctx context.Context) error
}

// SessionRepository はログインセッションへのアクセスインターフェース。
type SessionRepository interface {
	// Create はセッションを保存する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID はIDに一致する有効なセッションを返す。
	// 存在しないか期限切れの場合は(nil, nil)。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID はIDに一致するセッションを削除する。存在しない場合は何もしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteAll は全セッションを破棄する。
	// ログインは既存セッションを丸ごと置き換えるため、発行前に呼び出される。
	DeleteAll(ctx context.Context) error
}

// UserRepository はユーザーへのアクセスインターフェース。
type UserRepository interface {
	// Create はユーザーを保存する。
	Create(ctx context.Context, user *model.User) error
	// FindByID はIDに一致するユーザーを返す。存在しない場合は(nil, nil)。
	FindByID(ctx context.Context, id string) (*model.User, error)
	// Update はユーザーを上書き保存する。存在しない場合はエラーを返す。
	Update(ctx context.Context, user *model.User) error
	// DeleteAll は全ユーザーを破棄する。
	DeleteAll(ctx context.Context) error
}
