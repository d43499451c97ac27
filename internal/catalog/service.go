// Package catalog は出品カタログのドメインロジックを提供する。
//
// カタログ全体と「マイ出品」の2つのコレクションを管理する。
// マイ出品はカタログを出品者IDで絞り込んだ導出ビューではなく、
// 現在のセッション中に作成された出品だけを保持する並行リストであり、
// ログインのたびに空へリセットされる。
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/unimart/internal/model"
	"github.com/hitoshi/unimart/internal/repository"
)

// TextSanitizer はタイトル・説明文のサニタイズインターフェース。
// security.TextSanitizerServiceの部分集合として定義する。
type TextSanitizer interface {
	Sanitize(input string) string
}

// ImageURLValidator は画像URLの事前検証インターフェース。
// security.ImageURLGuardServiceの部分集合として定義する。
type ImageURLValidator interface {
	ValidateURL(rawURL string) error
}

// MetricsRecorder は出品操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordListingCreated(category string)
	RecordListingDeleted()
}

// CreateListingInput は出品作成の入力を表す。
// ID・作成日時・出品者スナップショットはサービス側で付与される。
type CreateListingInput struct {
	Title       string
	Description string
	Price       int
	Category    string
	Negotiable  bool
	Image       string
}

// AdminStats は管理画面向けのカタログ統計を表す。
type AdminStats struct {
	TotalCount int
	TotalValue int
}

// Service は出品カタログのサービス層。
// カタログとマイ出品の2コレクションを常にロックステップで変更する。
type Service struct {
	catalogRepo repository.ListingRepository
	mineRepo    repository.ListingRepository
	sanitizer   TextSanitizer
	imageGuard  ImageURLValidator
	metrics     MetricsRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil可（テスト等でメトリクス収集を省略する場合）。
func NewService(
	catalogRepo repository.ListingRepository,
	mineRepo repository.ListingRepository,
	sanitizer TextSanitizer,
	imageGuard ImageURLValidator,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		catalogRepo: catalogRepo,
		mineRepo:    mineRepo,
		sanitizer:   sanitizer,
		imageGuard:  imageGuard,
		metrics:     metrics,
	}
}

// AddListing は出品を作成し、カタログとマイ出品の両方の先頭に追加する。
// 出品者スナップショット（名前・電話・アバター）は作成時点のプロフィールの
// コピーであり、以後のプロフィール編集には追従しない。
// 未認証（seller == nil）の場合は拒否する。
func (s *Service) AddListing(ctx context.Context, seller *model.User, input CreateListingInput) (*model.Listing, error) {
	if seller == nil {
		return nil, model.NewUnauthorizedError()
	}

	title := s.sanitizer.Sanitize(input.Title)
	description := s.sanitizer.Sanitize(input.Description)

	if err := validateListingFields(title, description, input.Price, input.Category); err != nil {
		return nil, err
	}
	if input.Image != "" {
		if err := s.imageGuard.ValidateURL(input.Image); err != nil {
			return nil, model.NewInvalidImageURLError(err.Error())
		}
	}

	listing := &model.Listing{
		ID:           uuid.New().String(),
		Title:        title,
		Description:  description,
		Price:        input.Price,
		Category:     input.Category,
		Negotiable:   input.Negotiable,
		Image:        input.Image,
		SellerID:     seller.ID,
		SellerName:   seller.Name,
		SellerPhone:  seller.Phone,
		SellerAvatar: seller.Avatar,
		CreatedAt:    time.Now(),
	}

	if err := s.catalogRepo.Insert(ctx, listing); err != nil {
		return nil, fmt.Errorf("出品の追加に失敗しました: %w", err)
	}
	if err := s.mineRepo.Insert(ctx, listing); err != nil {
		return nil, fmt.Errorf("マイ出品への追加に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordListingCreated(listing.Category)
	}

	return listing, nil
}

// UpdateListing は出品者本人による出品の部分更新を行う。
// 出品が存在しない場合は(nil, NotFound)、本人以外の場合はForbidden相当を返す。
func (s *Service) UpdateListing(ctx context.Context, userID, listingID string, patch model.ListingPatch) (*model.Listing, error) {
	existing, err := s.catalogRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("出品の取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil, model.NewListingNotFoundError(listingID)
	}
	if existing.SellerID != userID {
		return nil, model.NewNotListingSellerError()
	}

	if err := s.validatePatch(&patch); err != nil {
		return nil, err
	}

	updated, err := s.catalogRepo.Update(ctx, listingID, patch)
	if err != nil {
		return nil, fmt.Errorf("出品の更新に失敗しました: %w", err)
	}
	// マイ出品側も同じパッチでロックステップ更新する。
	// セッション跨ぎの古い出品はマイ出品に存在しないため、未検出はno-op。
	if _, err := s.mineRepo.Update(ctx, listingID, patch); err != nil {
		return nil, fmt.Errorf("マイ出品の更新に失敗しました: %w", err)
	}

	return updated, nil
}

// DeleteListing は出品者本人による出品の削除を行う。
// 出品が存在しない場合はエラーにせずno-opとする。
func (s *Service) DeleteListing(ctx context.Context, userID, listingID string) error {
	existing, err := s.catalogRepo.FindByID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("出品の取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil
	}
	if existing.SellerID != userID {
		return model.NewNotListingSellerError()
	}

	return s.removeFromBoth(ctx, listingID)
}

// AdminDeleteListing は管理者による出品の削除を行う。出品者の制約を受けない。
// 出品が存在しない場合はエラーにせずno-opとする。
func (s *Service) AdminDeleteListing(ctx context.Context, listingID string) error {
	existing, err := s.catalogRepo.FindByID(ctx, listingID)
	if err != nil {
		return fmt.Errorf("出品の取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil
	}

	return s.removeFromBoth(ctx, listingID)
}

// removeFromBoth はカタログとマイ出品の両方から出品を削除する。
func (s *Service) removeFromBoth(ctx context.Context, listingID string) error {
	if err := s.catalogRepo.Delete(ctx, listingID); err != nil {
		return fmt.Errorf("出品の削除に失敗しました: %w", err)
	}
	if err := s.mineRepo.Delete(ctx, listingID); err != nil {
		return fmt.Errorf("マイ出品の削除に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordListingDeleted()
	}
	return nil
}

// GetListing はIDに一致する出品を返す。
// 存在しない場合は(nil, nil)を返し、ハンドラー側で「見つかりません」状態として描画する。
func (s *Service) GetListing(ctx context.Context, listingID string) (*model.Listing, error) {
	listing, err := s.catalogRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("出品の取得に失敗しました: %w", err)
	}
	return listing, nil
}

// ListAll は全出品をカタログ順（新しい順）で返す。
func (s *Service) ListAll(ctx context.Context) ([]*model.Listing, error) {
	listings, err := s.catalogRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("出品一覧の取得に失敗しました: %w", err)
	}
	return listings, nil
}

// MyListings は現在のセッション中に作成された出品を新しい順で返す。
func (s *Service) MyListings(ctx context.Context) ([]*model.Listing, error) {
	listings, err := s.mineRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("マイ出品一覧の取得に失敗しました: %w", err)
	}
	return listings, nil
}

// ResetMyListings はマイ出品を空にする。ログイン・ログアウト時に呼び出される。
func (s *Service) ResetMyListings(ctx context.Context) error {
	if err := s.mineRepo.Clear(ctx); err != nil {
		return fmt.Errorf("マイ出品のリセットに失敗しました: %w", err)
	}
	return nil
}

// ListByCategory はカテゴリに一致する出品をカタログ順で返す。
func (s *Service) ListByCategory(ctx context.Context, categoryID string) ([]*model.Listing, error) {
	return s.FilterListings(ctx, model.ListingFilter{Category: categoryID})
}

// SearchListings はタイトルまたは説明文に対する大文字小文字を区別しない
// 部分一致検索を行う。空クエリは全件に一致する。
func (s *Service) SearchListings(ctx context.Context, query string) ([]*model.Listing, error) {
	return s.FilterListings(ctx, model.ListingFilter{Search: query})
}

// FilterListings は指定された条件をすべてAND結合して絞り込んだ結果を
// カタログ順のまま新しいスライスで返す。カタログ自体は変更しない。
// 同じ状態と入力に対しては常に同じ順序・同じ要素を返す。
func (s *Service) FilterListings(ctx context.Context, filter model.ListingFilter) ([]*model.Listing, error) {
	listings, err := s.catalogRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("出品一覧の取得に失敗しました: %w", err)
	}

	result := make([]*model.Listing, 0, len(listings))
	for _, l := range listings {
		if matchesFilter(l, filter) {
			result = append(result, l)
		}
	}
	return result, nil
}

// AdminListListings は管理画面向けの検索・並び替え済み一覧と統計を返す。
// 検索はタイトル・出品者名・カテゴリに対する大文字小文字を区別しない部分一致。
// 統計（総出品数・総額）は検索条件に関わらずカタログ全体を対象とする。
func (s *Service) AdminListListings(ctx context.Context, query string, sortBy model.ListingSort) ([]*model.Listing, *AdminStats, error) {
	if sortBy == "" {
		sortBy = model.ListingSortRecent
	}
	if !model.ValidListingSort(sortBy) {
		return nil, nil, model.NewInvalidSortError(string(sortBy))
	}

	listings, err := s.catalogRepo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("出品一覧の取得に失敗しました: %w", err)
	}

	stats := &AdminStats{TotalCount: len(listings)}
	for _, l := range listings {
		stats.TotalValue += l.Price
	}

	q := strings.ToLower(query)
	filtered := make([]*model.Listing, 0, len(listings))
	for _, l := range listings {
		if q == "" ||
			strings.Contains(strings.ToLower(l.Title), q) ||
			strings.Contains(strings.ToLower(l.SellerName), q) ||
			strings.Contains(strings.ToLower(l.Category), q) {
			filtered = append(filtered, l)
		}
	}

	SortListings(filtered, sortBy)
	return filtered, stats, nil
}

// CategoryCounts はカテゴリIDごとの出品件数を返す。ホーム画面の表示用。
func (s *Service) CategoryCounts(ctx context.Context) (map[string]int, error) {
	listings, err := s.catalogRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("出品一覧の取得に失敗しました: %w", err)
	}

	counts := make(map[string]int)
	for _, l := range listings {
		counts[l.Category]++
	}
	return counts, nil
}

// Seed はサンプルデータでカタログを初期化する。プロセス起動時に1回呼び出される。
// listingsは新しい順で渡されることを想定し、逆順に挿入して順序を保つ。
func (s *Service) Seed(ctx context.Context, listings []*model.Listing) error {
	for i := len(listings) - 1; i >= 0; i-- {
		if err := s.catalogRepo.Insert(ctx, listings[i]); err != nil {
			return fmt.Errorf("サンプルデータの投入に失敗しました: %w", err)
		}
	}
	return nil
}

// SortListings は出品スライスをその場で並び替える。
// 同値キーに対しては入力順を保つ安定ソート。
func SortListings(listings []*model.Listing, sortBy model.ListingSort) {
	switch sortBy {
	case model.ListingSortRecent:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		})
	case model.ListingSortOldest:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.Before(listings[j].CreatedAt)
		})
	case model.ListingSortPriceHigh:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price > listings[j].Price
		})
	case model.ListingSortPriceLow:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price < listings[j].Price
		})
	}
}

// matchesFilter は出品が絞り込み条件をすべて満たすかを判定する。
func matchesFilter(l *model.Listing, filter model.ListingFilter) bool {
	if filter.Category != "" && l.Category != filter.Category {
		return false
	}
	if filter.MinPrice != nil && l.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && l.Price > *filter.MaxPrice {
		return false
	}
	if filter.Search != "" {
		q := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(l.Title), q) &&
			!strings.Contains(strings.ToLower(l.Description), q) {
			return false
		}
	}
	return true
}

// validateListingFields は出品の必須フィールドと不変条件を検証する。
func validateListingFields(title, description string, price int, category string) error {
	if title == "" {
		return model.NewMissingFieldError("タイトル")
	}
	if len([]rune(title)) > model.TitleMaxLength {
		return model.NewFieldTooLongError("タイトル", model.TitleMaxLength)
	}
	if description == "" {
		return model.NewMissingFieldError("説明文")
	}
	if len([]rune(description)) > model.DescriptionMaxLength {
		return model.NewFieldTooLongError("説明文", model.DescriptionMaxLength)
	}
	if price <= 0 {
		return model.NewInvalidPriceError()
	}
	if !model.ValidCategory(category) {
		return model.NewInvalidCategoryError(category)
	}
	return nil
}

// validatePatch はパッチの各フィールドを検証し、テキストをサニタイズする。
func (s *Service) validatePatch(patch *model.ListingPatch) error {
	if patch.Title != nil {
		title := s.sanitizer.Sanitize(*patch.Title)
		if title == "" {
			return model.NewMissingFieldError("タイトル")
		}
		if len([]rune(title)) > model.TitleMaxLength {
			return model.NewFieldTooLongError("タイトル", model.TitleMaxLength)
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		description := s.sanitizer.Sanitize(*patch.Description)
		if description == "" {
			return model.NewMissingFieldError("説明文")
		}
		if len([]rune(description)) > model.DescriptionMaxLength {
			return model.NewFieldTooLongError("説明文", model.DescriptionMaxLength)
		}
		patch.Description = &description
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return model.NewInvalidPriceError()
	}
	if patch.Category != nil && !model.ValidCategory(*patch.Category) {
		return model.NewInvalidCategoryError(*patch.Category)
	}
	if patch.Image != nil && *patch.Image != "" {
		if err := s.imageGuard.ValidateURL(*patch.Image); err != nil {
			return model.NewInvalidImageURLError(err.Error())
		}
	}
	return nil
}
