// Package auth は大学メールによるログイン、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/unimart/internal/model"
	"github.com/hitoshi/unimart/internal/repository"
)

// ListingResetter はログイン・ログアウト時にマイ出品を空へ戻すインターフェース。
// catalog.Serviceの部分集合として定義する。
type ListingResetter interface {
	ResetMyListings(ctx context.Context) error
}

// MetricsRecorder はログイン試行のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	EmailDomain   string // 許可する大学メールドメイン
	AdminEmail    string // 管理者として扱うメールアドレス（小文字）
	SessionMaxAge int    // セッション有効期間（秒）
}

// LoginResult はログイン成功時の結果を表す。
type LoginResult struct {
	Session    *model.Session
	User       *model.User
	RedirectTo string // 管理者は"/admin"、それ以外は"/"
}

// Service は認証に関するビジネスロジックを提供する。
// 常に最大1つのアクティブセッションを維持する。新しいログインは
// 既存のユーザー・セッション・マイ出品をすべて置き換える。
type Service struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	resetter     ListingResetter
	metrics      MetricsRecorder
	config       ServiceConfig
	emailPattern *regexp.Regexp
}

// NewService はServiceを生成する。
// metricsはnil可（テスト等でメトリクス収集を省略する場合）。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	resetter ListingResetter,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	pattern := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@` + regexp.QuoteMeta(config.EmailDomain) + `$`)
	return &Service{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		resetter:     resetter,
		metrics:      metrics,
		config:       config,
		emailPattern: pattern,
	}
}

// Login は大学メールとパスワードを検証し、セッションを発行する。
// 検証順序: 必須フィールド → メール形式（ドメイン一致） → パスワード長。
// 成功時は既存のユーザー・セッションをすべて破棄してから新しい状態を作る。
// 失敗時は既存の状態を一切変更しない。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" {
		s.recordFailure()
		return nil, model.NewMissingFieldError("メールアドレス")
	}
	if password == "" {
		s.recordFailure()
		return nil, model.NewMissingFieldError("パスワード")
	}
	if !s.emailPattern.MatchString(email) {
		s.recordFailure()
		return nil, model.NewInvalidEmailError(s.config.EmailDomain)
	}
	if len(password) < model.PasswordMinLength {
		s.recordFailure()
		return nil, model.NewInvalidPasswordError()
	}

	// 新しいログインは前のセッション状態を丸ごと置き換える
	if err := s.sessionRepo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear sessions: %w", err)
	}
	if err := s.userRepo.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear users: %w", err)
	}
	if err := s.resetter.ResetMyListings(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset my listings: %w", err)
	}

	isAdmin := email == s.config.AdminEmail
	now := time.Now()

	user := &model.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      localPart(email),
		Phone:     model.DefaultPhone,
		Avatar:    avatarURL(email),
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.createSession(ctx, user.ID, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	redirectTo := "/"
	if isAdmin {
		redirectTo = "/admin"
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.Bool("is_admin", isAdmin),
	)

	return &LoginResult{Session: session, User: user, RedirectTo: redirectTo}, nil
}

// Logout はセッションとユーザー状態を破棄する。
// セッションが既に存在しない場合も成功として扱う（冪等）。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID != "" {
		if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}
	if err := s.userRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear users: %w", err)
	}
	if err := s.resetter.ResetMyListings(ctx); err != nil {
		return fmt.Errorf("failed to reset my listings: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションが無効・期限切れ・ユーザー不在の場合は(nil, nil)を返し、
// 呼び出し側で匿名状態として扱う。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindSession はセッションIDからセッションを取得する。ミドルウェア用。
func (s *Service) FindSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.sessionRepo.FindByID(ctx, sessionID)
}

// createSession はセッションを作成し保存する。
func (s *Service) createSession(ctx context.Context, userID string, isAdmin bool) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		IsAdmin:   isAdmin,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

func (s *Service) recordFailure() {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
}

// localPart はメールアドレスの@より前の部分を返す。表示名の既定値になる。
func localPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// avatarURL はメールアドレスをシードにしたアバター画像URLを返す。
func avatarURL(email string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + email
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
