package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Auth
	EmailDomain string // ログインを許可する大学メールドメイン
	AdminEmail  string // 管理者権限を付与する予約済みメールアドレス

	// Session
	SessionMaxAge int

	// Rate Limit
	RateLimitGeneral       int // API全般（req/min/user）
	RateLimitListingCreate int // 出品作成（req/min/user）

	// Image
	ImageProxyTimeoutSec int   // 画像プロキシのタイムアウト（秒）
	ImageProxyMaxSize    int64 // 画像プロキシの最大レスポンスサイズ（バイト）

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.EmailDomain = getEnvString("EMAIL_DOMAIN", "jaipur.manipal.edu")
	cfg.AdminEmail = strings.ToLower(getEnvString("ADMIN_EMAIL", "admin@"+cfg.EmailDomain))
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitListingCreate = getEnvInt("RATE_LIMIT_LISTING_CREATE", 10)
	cfg.ImageProxyTimeoutSec = getEnvInt("IMAGE_PROXY_TIMEOUT_SEC", 10)
	cfg.ImageProxyMaxSize = getEnvInt64("IMAGE_PROXY_MAX_SIZE", 5242880)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	// 管理者メールアドレスはログイン許可ドメインに属していなければならない
	if !strings.HasSuffix(cfg.AdminEmail, "@"+cfg.EmailDomain) {
		return nil, fmt.Errorf("ADMIN_EMAIL %q does not belong to EMAIL_DOMAIN %q", cfg.AdminEmail, cfg.EmailDomain)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}
