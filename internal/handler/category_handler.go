package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/unimart/internal/model"
)

// CategoryCounter はカテゴリ別出品件数の集計インターフェース。
// catalog.Serviceの部分集合として定義する。
type CategoryCounter interface {
	CategoryCounts(ctx context.Context) (map[string]int, error)
}

// CategoryHandler はカテゴリ一覧のHTTPハンドラー。
type CategoryHandler struct {
	counter CategoryCounter
}

// NewCategoryHandler はCategoryHandlerを生成する。
func NewCategoryHandler(counter CategoryCounter) *CategoryHandler {
	return &CategoryHandler{counter: counter}
}

// categoryResponse はカテゴリ情報のAPIレスポンス。
type categoryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// List は固定カテゴリの一覧を現在の出品件数付きで返す。
// GET /api/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	counts, err := h.counter.CategoryCounts(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]categoryResponse, len(model.Categories))
	for i, c := range model.Categories {
		items[i] = categoryResponse{
			ID:    c.ID,
			Name:  c.Name,
			Icon:  c.Icon,
			Color: c.Color,
			Count: counts[c.ID],
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"categories": items})
}
