// Package model はドメインモデルを定義する。
package model

import "time"

// Listing は出品された商品を表す。
// Seller系フィールドは出品時点の出品者プロフィールのスナップショットであり、
// 出品後にプロフィールを編集しても既存の出品には反映されない。
type Listing struct {
	ID           string
	Title        string
	Description  string
	Price        int
	Category     string
	Negotiable   bool
	Image        string
	SellerID     string
	SellerName   string
	SellerPhone  string
	SellerAvatar string
	CreatedAt    time.Time
}

// ListingPatch は出品の部分更新を表す。nilフィールドは変更しない。
// IDと出品者スナップショットは更新対象に含まれない。
type ListingPatch struct {
	Title       *string
	Description *string
	Price       *int
	Category    *string
	Negotiable  *bool
	Image       *string
}

// ListingFilter は出品一覧の絞り込み条件を表す。
// ゼロ値のフィールドは条件なしとして扱われ、指定された条件はすべてAND結合される。
// MinPrice/MaxPriceは両端を含む。
type ListingFilter struct {
	Category string
	MinPrice *int
	MaxPrice *int
	Search   string
}

// ListingSort は管理画面での出品一覧の並び順を表す。
type ListingSort string

const (
	// ListingSortRecent は新しい順（createdAt降順）を表す。
	ListingSortRecent ListingSort = "recent"
	// ListingSortOldest は古い順（createdAt昇順）を表す。
	ListingSortOldest ListingSort = "oldest"
	// ListingSortPriceHigh は価格の高い順を表す。
	ListingSortPriceHigh ListingSort = "price-high"
	// ListingSortPriceLow は価格の安い順を表す。
	ListingSortPriceLow ListingSort = "price-low"
)

// ValidListingSort は並び順指定がサポート対象かを検証する。
func ValidListingSort(s ListingSort) bool {
	switch s {
	case ListingSortRecent, ListingSortOldest, ListingSortPriceHigh, ListingSortPriceLow:
		return true
	default:
		return false
	}
}

// TitleMaxLength は出品タイトルの最大文字数。
const TitleMaxLength = 100

// DescriptionMaxLength は出品説明の最大文字数。
const DescriptionMaxLength = 500
