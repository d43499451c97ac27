package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/unimart/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// 観測性（いずれもnil可。未設定の場合は対応する機能を組み込まない）
	Logger         *slog.Logger
	RequestMetrics middleware.RequestMetricsRecorder
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 出品カタログ
	ListingService ListingServiceInterface
	AdminService   AdminServiceInterface
	CategoryCounts CategoryCounter
	UserFinder     UserFinder
	ImageClient    ImageFetcher
	ImageProxy     ImageProxyConfig

	// ユーザー
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → Session → CSRF → RateLimit(General)
//
// 認証ルート（/auth/*）とカテゴリ一覧はセッションチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.RequestMetrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	listingHandler := NewListingHandler(deps.ListingService, deps.UserFinder, deps.ImageClient, deps.ImageProxy)
	categoryHandler := NewCategoryHandler(deps.CategoryCounts)
	adminHandler := NewAdminHandler(deps.AdminService)
	userHandler := NewUserHandler(deps.UserService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// カテゴリ一覧とCSRFトークンはログイン画面からも参照される
	r.Get("/api/categories", categoryHandler.List)
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 出品管理
		r.Route("/api/listings", func(r chi.Router) {
			r.Get("/", listingHandler.List)

			// POST /api/listings - 出品作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.ListingCreateMiddleware()).Post("/", listingHandler.Create)

			// GET /api/listings/mine - マイ出品
			r.Get("/mine", listingHandler.Mine)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", listingHandler.Get)
				r.Patch("/", listingHandler.Update)
				r.Delete("/", listingHandler.Delete)

				// GET /api/listings/{id}/image - SSRF安全な画像プロキシ
				r.Get("/image", listingHandler.ImageProxy)
			})
		})

		// プロフィール管理
		r.Route("/api/users", func(r chi.Router) {
			r.Patch("/me", userHandler.UpdateProfile)
		})

		// 管理画面（管理者セッションのみ）
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Get("/listings", adminHandler.ListListings)
			r.Delete("/listings/{id}", adminHandler.DeleteListing)
		})
	})

	return r
}
