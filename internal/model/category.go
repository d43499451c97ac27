// Package model はドメインモデルを定義する。
package model

// Category は出品カテゴリの静的な参照データを表す。
// ユーザーによる変更はできない。
type Category struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Color       string
}

// Categories は固定のカテゴリ一覧。
// 出品のCategoryフィールドはこのいずれかのIDでなければならない。
var Categories = []Category{
	{ID: "books", Name: "Books & Notes", Description: "Textbooks, reference books and study notes", Icon: "📚", Color: "#3B82F6"},
	{ID: "electronics", Name: "Electronics", Description: "Laptops, calculators, gadgets and accessories", Icon: "💻", Color: "#8B5CF6"},
	{ID: "clothing", Name: "Clothing", Description: "Apparel, shoes and fashion accessories", Icon: "👕", Color: "#EC4899"},
	{ID: "furniture", Name: "Furniture", Description: "Desks, chairs, mattresses and hostel essentials", Icon: "🪑", Color: "#F59E0B"},
	{ID: "tickets", Name: "Tickets", Description: "Event passes, fest tickets and travel tickets", Icon: "🎫", Color: "#10B981"},
	{ID: "miscellaneous", Name: "Miscellaneous", Description: "Everything else worth selling", Icon: "📦", Color: "#6B7280"},
}

// ValidCategory はカテゴリIDが固定カテゴリ一覧に含まれるかを検証する。
func ValidCategory(id string) bool {
	for _, c := range Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
