package catalog

import (
	"time"

	"github.com/hitoshi/unimart/internal/model"
)

// seedSeller はサンプルデータ用の出品者スナップショット。
type seedSeller struct {
	id     string
	name   string
	phone  string
	avatar string
}

var seedSellers = []seedSeller{
	{"seed_user_rahul", "rahul.sharma", "+91 98765 43210", "https://api.dicebear.com/7.x/avataaars/svg?seed=rahul.sharma"},
	{"seed_user_priya", "priya.patel", "+91 87654 32109", "https://api.dicebear.com/7.x/avataaars/svg?seed=priya.patel"},
	{"seed_user_arjun", "arjun.mehta", "+91 76543 21098", "https://api.dicebear.com/7.x/avataaars/svg?seed=arjun.mehta"},
}

// SeedListings はカタログ初期化用のサンプル出品を新しい順で返す。
// 呼び出しのたびに新しいスライスを生成するため、テスト間で状態を共有しない。
func SeedListings() []*model.Listing {
	now := time.Now()

	type seedItem struct {
		id          string
		title       string
		description string
		price       int
		category    string
		negotiable  bool
		image       string
		seller      int // seedSellersのインデックス
		ageHours    int
	}

	items := []seedItem{
		{
			id:          "seed_item_calculator",
			title:       "Casio FX-991ES Plus Calculator",
			description: "Scientific calculator in perfect working condition. Used for one semester only.",
			price:       800,
			category:    "electronics",
			negotiable:  true,
			image:       "https://images.example.com/seed/calculator.jpg",
			seller:      0,
			ageHours:    6,
		},
		{
			id:          "seed_item_textbook",
			title:       "Engineering Mathematics by B.S. Grewal",
			description: "43rd edition, barely used. All chapters intact with no markings.",
			price:       450,
			category:    "books",
			negotiable:  true,
			image:       "https://images.example.com/seed/grewal.jpg",
			seller:      1,
			ageHours:    20,
		},
		{
			id:          "seed_item_study_table",
			title:       "Foldable Study Table",
			description: "Compact wooden study table, fits hostel rooms. Minor scratches on the surface.",
			price:       1200,
			category:    "furniture",
			negotiable:  true,
			image:       "https://images.example.com/seed/table.jpg",
			seller:      2,
			ageHours:    30,
		},
		{
			id:          "seed_item_fest_pass",
			title:       "Oneiros Fest Pass (Day 2)",
			description: "Single-day pass for the cultural fest. Selling because of an exam clash.",
			price:       350,
			category:    "tickets",
			negotiable:  false,
			image:       "https://images.example.com/seed/pass.jpg",
			seller:      0,
			ageHours:    48,
		},
		{
			id:          "seed_item_hoodie",
			title:       "College Hoodie (Size M)",
			description: "Official merchandise hoodie, worn twice. Freshly washed.",
			price:       600,
			category:    "clothing",
			negotiable:  true,
			image:       "https://images.example.com/seed/hoodie.jpg",
			seller:      1,
			ageHours:    72,
		},
		{
			id:          "seed_item_lamp",
			title:       "LED Desk Lamp with USB Port",
			description: "Three brightness levels, charges your phone while you study.",
			price:       500,
			category:    "electronics",
			negotiable:  false,
			image:       "https://images.example.com/seed/lamp.jpg",
			seller:      2,
			ageHours:    96,
		},
		{
			id:          "seed_item_notes",
			title:       "DSA Handwritten Notes (Complete)",
			description: "Full semester of data structures notes with solved examples.",
			price:       200,
			category:    "books",
			negotiable:  false,
			image:       "https://images.example.com/seed/notes.jpg",
			seller:      0,
			ageHours:    120,
		},
		{
			id:          "seed_item_kettle",
			title:       "Electric Kettle 1.5L",
			description: "Perfect for instant noodles and chai. Works like new.",
			price:       700,
			category:    "miscellaneous",
			negotiable:  true,
			image:       "https://images.example.com/seed/kettle.jpg",
			seller:      1,
			ageHours:    150,
		},
	}

	listings := make([]*model.Listing, len(items))
	for i, item := range items {
		seller := seedSellers[item.seller]
		listings[i] = &model.Listing{
			ID:           item.id,
			Title:        item.title,
			Description:  item.description,
			Price:        item.price,
			Category:     item.category,
			Negotiable:   item.negotiable,
			Image:        item.image,
			SellerID:     seller.id,
			SellerName:   seller.name,
			SellerPhone:  seller.phone,
			SellerAvatar: seller.avatar,
			CreatedAt:    now.Add(-time.Duration(item.ageHours) * time.Hour),
		}
	}
	return listings
}
