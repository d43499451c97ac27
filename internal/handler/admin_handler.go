package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/unimart/internal/catalog"
	"github.com/hitoshi/unimart/internal/model"
)

// AdminServiceInterface は管理画面ハンドラーが必要とするサービスインターフェース。
type AdminServiceInterface interface {
	AdminListListings(ctx context.Context, query string, sortBy model.ListingSort) ([]*model.Listing, *catalog.AdminStats, error)
	AdminDeleteListing(ctx context.Context, listingID string) error
}

// AdminHandler は管理画面のHTTPハンドラー。
// 管理者ゲートはミドルウェア側（RequireAdmin）で行われる。
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// adminStatsResponse は管理画面の統計レスポンス。
type adminStatsResponse struct {
	TotalCount int `json:"total_count"`
	TotalValue int `json:"total_value"`
}

// ListListings は全出品の検索・並び替え済み一覧と統計を返す。
// GET /api/admin/listings?q=&sort=
func (h *AdminHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	sortBy := model.ListingSort(r.URL.Query().Get("sort"))

	listings, stats, err := h.service.AdminListListings(r.Context(), query, sortBy)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]listingResponse, len(listings))
	for i, l := range listings {
		items[i] = toListingResponse(l)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"listings": items,
		"stats": adminStatsResponse{
			TotalCount: stats.TotalCount,
			TotalValue: stats.TotalValue,
		},
	})
}

// DeleteListing は任意の出品を削除する。出品者の制約を受けない。
// DELETE /api/admin/listings/{id}
func (h *AdminHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	if err := h.service.AdminDeleteListing(r.Context(), listingID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
