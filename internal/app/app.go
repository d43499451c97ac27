// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/unimart/internal/auth"
	"github.com/hitoshi/unimart/internal/catalog"
	"github.com/hitoshi/unimart/internal/config"
	"github.com/hitoshi/unimart/internal/handler"
	"github.com/hitoshi/unimart/internal/logger"
	"github.com/hitoshi/unimart/internal/metrics"
	"github.com/hitoshi/unimart/internal/middleware"
	"github.com/hitoshi/unimart/internal/repository"
	"github.com/hitoshi/unimart/internal/security"
	"github.com/hitoshi/unimart/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// 全データはプロセスメモリ上に保持され、カタログはサンプルデータで初期化される。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. リポジトリの初期化（インメモリ）
	catalogRepo := repository.NewMemoryListingRepo()
	mineRepo := repository.NewMemoryListingRepo()
	sessionRepo := repository.NewMemorySessionRepo()
	userRepo := repository.NewMemoryUserRepo()

	// 2. セキュリティサービスの初期化
	sanitizer := security.NewTextSanitizer()
	imageGuard := security.NewImageURLGuard()

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ドメインサービスの初期化
	catalogService := catalog.NewService(catalogRepo, mineRepo, sanitizer, imageGuard, collector)
	authService := auth.NewService(userRepo, sessionRepo, catalogService, collector, auth.ServiceConfig{
		EmailDomain:   cfg.EmailDomain,
		AdminEmail:    cfg.AdminEmail,
		SessionMaxAge: cfg.SessionMaxAge,
	})
	userService := user.NewService(userRepo, sanitizer)

	// 5. カタログのサンプルデータ投入
	if err := catalogService.Seed(ctx, catalog.SeedListings()); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	slog.Info("catalog seeded with sample listings")

	// 6. レート制限（configはreq/min単位なのでreq/secに変換する）
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:        rate.Limit(float64(cfg.RateLimitGeneral) / 60.0),
		GeneralBurst:       cfg.RateLimitGeneral,
		ListingCreateRate:  rate.Limit(float64(cfg.RateLimitListingCreate) / 60.0),
		ListingCreateBurst: cfg.RateLimitListingCreate,
		CleanupInterval:    5 * time.Minute,
	})
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},

		Logger:         slog.Default(),
		RequestMetrics: collector,
		MetricsHandler: metrics.Handler(registry),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ListingService: catalogService,
		AdminService:   catalogService,
		CategoryCounts: catalogService,
		UserFinder:     userRepo,
		ImageClient:    imageGuard,
		ImageProxy: handler.ImageProxyConfig{
			Timeout: time.Duration(cfg.ImageProxyTimeoutSec) * time.Second,
			MaxSize: cfg.ImageProxyMaxSize,
		},

		UserService: userService,
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
