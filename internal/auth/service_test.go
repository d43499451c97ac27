package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/unimart/internal/model"
	"github.com/hitoshi/unimart/internal/repository"
)

// stubResetter はResetMyListingsの呼び出し回数を記録するモック。
type stubResetter struct {
	calls int
	err   error
}

func (r *stubResetter) ResetMyListings(ctx context.Context) error {
	r.calls++
	return r.err
}

func newTestService(resetter *stubResetter) *Service {
	return NewService(
		repository.NewMemoryUserRepo(),
		repository.NewMemorySessionRepo(),
		resetter,
		nil,
		ServiceConfig{
			EmailDomain:   "jaipur.manipal.edu",
			AdminEmail:    "admin@jaipur.manipal.edu",
			SessionMaxAge: 3600,
		},
	)
}

// TestService_Login_Success はログイン成功時のユーザー・セッション構築を検証する。
func TestService_Login_Success(t *testing.T) {
	ctx := context.Background()
	resetter := &stubResetter{}
	svc := newTestService(resetter)

	result, err := svc.Login(ctx, "rahul.sharma@jaipur.manipal.edu", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if result.User.Email != "rahul.sharma@jaipur.manipal.edu" {
		t.Errorf("Email = %q", result.User.Email)
	}
	if result.User.Name != "rahul.sharma" {
		t.Errorf("Name = %q, want local part of email", result.User.Name)
	}
	if result.User.Phone != model.DefaultPhone {
		t.Errorf("Phone = %q, want placeholder %q", result.User.Phone, model.DefaultPhone)
	}
	if !strings.Contains(result.User.Avatar, "seed=rahul.sharma@jaipur.manipal.edu") {
		t.Errorf("Avatar = %q, want email-seeded URL", result.User.Avatar)
	}
	if result.User.IsAdmin {
		t.Error("ordinary student must not be admin")
	}
	if result.RedirectTo != "/" {
		t.Errorf("RedirectTo = %q, want %q", result.RedirectTo, "/")
	}

	if result.Session.ID == "" || len(result.Session.ID) != 64 {
		t.Errorf("session ID = %q, want 64 hex chars", result.Session.ID)
	}
	if result.Session.UserID != result.User.ID {
		t.Error("session is not bound to the created user")
	}
	if result.Session.IsAdmin {
		t.Error("session IsAdmin must be false for a student")
	}
	if !result.Session.ExpiresAt.After(time.Now()) {
		t.Error("session already expired at creation")
	}

	// ログイン時にマイ出品がリセットされる
	if resetter.calls != 1 {
		t.Errorf("ResetMyListings calls = %d, want 1", resetter.calls)
	}

	// セッションIDから同じユーザーが引ける
	user, err := svc.GetCurrentUser(ctx, result.Session.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if user == nil || user.ID != result.User.ID {
		t.Errorf("GetCurrentUser = %v, want the logged-in user", user)
	}
}

// TestService_Login_EmailNormalization は大文字・前後空白の正規化を検証する。
func TestService_Login_EmailNormalization(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&stubResetter{})

	result, err := svc.Login(ctx, "  Priya.Patel@JAIPUR.MANIPAL.EDU  ", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.User.Email != "priya.patel@jaipur.manipal.edu" {
		t.Errorf("Email = %q, want lowercased and trimmed", result.User.Email)
	}
	if result.User.Name != "priya.patel" {
		t.Errorf("Name = %q", result.User.Name)
	}
}

// TestService_Login_Admin は管理者メールでのログインを検証する。
func TestService_Login_Admin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&stubResetter{})

	result, err := svc.Login(ctx, "admin@jaipur.manipal.edu", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !result.User.IsAdmin {
		t.Error("admin email must produce an admin user")
	}
	if !result.Session.IsAdmin {
		t.Error("admin session must carry IsAdmin")
	}
	if result.RedirectTo != "/admin" {
		t.Errorf("RedirectTo = %q, want %q", result.RedirectTo, "/admin")
	}
}

// TestService_Login_Validation は検証順序と各拒否理由を検証する。
func TestService_Login_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantCode string
	}{
		{"empty email", "", "secret123", model.ErrCodeMissingField},
		{"empty password", "a@jaipur.manipal.edu", "", model.ErrCodeMissingField},
		{"both empty reports email first", "", "", model.ErrCodeMissingField},
		{"wrong domain", "student@gmail.com", "secret123", model.ErrCodeInvalidEmail},
		{"domain as suffix of another", "student@fake-jaipur.manipal.edu.evil.com", "secret123", model.ErrCodeInvalidEmail},
		{"missing local part", "@jaipur.manipal.edu", "secret123", model.ErrCodeInvalidEmail},
		{"short password", "a@jaipur.manipal.edu", "12345", model.ErrCodeInvalidPassword},
		// メール形式の検証はパスワード長より先
		{"bad email and short password", "student@gmail.com", "123", model.ErrCodeInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestService(&stubResetter{})

			_, err := svc.Login(ctx, tt.email, tt.password)
			if err == nil {
				t.Fatal("Login succeeded, want rejection")
			}
			apiErr, ok := err.(*model.APIError)
			if !ok {
				t.Fatalf("expected *model.APIError, got %T: %v", err, err)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("error code = %s, want %s", apiErr.Code, tt.wantCode)
			}
		})
	}
}

// TestService_Login_FailureKeepsState はログイン失敗が既存セッションを壊さないことを検証する。
func TestService_Login_FailureKeepsState(t *testing.T) {
	ctx := context.Background()
	resetter := &stubResetter{}
	svc := newTestService(resetter)

	first, err := svc.Login(ctx, "rahul.sharma@jaipur.manipal.edu", "secret123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	callsAfterLogin := resetter.calls

	_, err = svc.Login(ctx, "outsider@gmail.com", "secret123")
	if err == nil {
		t.Fatal("Login with wrong domain succeeded")
	}

	// 失敗してもリセットは走らず、元のセッションは生きている
	if resetter.calls != callsAfterLogin {
		t.Errorf("ResetMyListings calls = %d, want %d", resetter.calls, callsAfterLogin)
	}
	user, _ := svc.GetCurrentUser(ctx, first.Session.ID)
	if user == nil || user.ID != first.User.ID {
		t.Error("previous session was destroyed by a failed login")
	}
}

// TestService_Login_ReplacesPreviousSession は再ログインによる全置き換えを検証する。
func TestService_Login_ReplacesPreviousSession(t *testing.T) {
	ctx := context.Background()
	resetter := &stubResetter{}
	svc := newTestService(resetter)

	first, _ := svc.Login(ctx, "rahul.sharma@jaipur.manipal.edu", "secret123")
	second, err := svc.Login(ctx, "priya.patel@jaipur.manipal.edu", "secret456")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	// 前のセッションは無効になっている
	user, err := svc.GetCurrentUser(ctx, first.Session.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if user != nil {
		t.Error("previous session is still valid after re-login")
	}

	// 新しいセッションは有効
	user, _ = svc.GetCurrentUser(ctx, second.Session.ID)
	if user == nil || user.Email != "priya.patel@jaipur.manipal.edu" {
		t.Errorf("GetCurrentUser = %v, want the new user", user)
	}

	// ログインごとにマイ出品がリセットされる
	if resetter.calls != 2 {
		t.Errorf("ResetMyListings calls = %d, want 2", resetter.calls)
	}
}

// TestService_Logout はログアウトの状態破棄と冪等性を検証する。
func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	resetter := &stubResetter{}
	svc := newTestService(resetter)

	result, _ := svc.Login(ctx, "rahul.sharma@jaipur.manipal.edu", "secret123")

	if err := svc.Logout(ctx, result.Session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	user, err := svc.GetCurrentUser(ctx, result.Session.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if user != nil {
		t.Error("session still resolves a user after logout")
	}
	// ログイン1回＋ログアウト1回
	if resetter.calls != 2 {
		t.Errorf("ResetMyListings calls = %d, want 2", resetter.calls)
	}

	// 既に無効なセッションでのログアウトも成功する
	if err := svc.Logout(ctx, result.Session.ID); err != nil {
		t.Errorf("repeated Logout failed: %v", err)
	}
	if err := svc.Logout(ctx, ""); err != nil {
		t.Errorf("Logout with empty session ID failed: %v", err)
	}
}

// TestService_GetCurrentUser_Anonymous は匿名状態の表現を検証する。
func TestService_GetCurrentUser_Anonymous(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&stubResetter{})

	tests := []struct {
		name      string
		sessionID string
	}{
		{"empty session ID", ""},
		{"unknown session ID", "deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.GetCurrentUser(ctx, tt.sessionID)
			if err != nil {
				t.Fatalf("GetCurrentUser failed: %v", err)
			}
			if user != nil {
				t.Errorf("GetCurrentUser = %v, want nil for anonymous", user)
			}
		})
	}
}

// TestService_GetCurrentUser_ExpiredSession は期限切れセッションの扱いを検証する。
func TestService_GetCurrentUser_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	sessionRepo := repository.NewMemorySessionRepo()
	svc := NewService(
		repository.NewMemoryUserRepo(),
		sessionRepo,
		&stubResetter{},
		nil,
		ServiceConfig{
			EmailDomain:   "jaipur.manipal.edu",
			AdminEmail:    "admin@jaipur.manipal.edu",
			SessionMaxAge: 3600,
		},
	)

	result, _ := svc.Login(ctx, "rahul.sharma@jaipur.manipal.edu", "secret123")

	// 有効期限を過去に書き換えた同IDのセッションを作り直す
	_ = sessionRepo.DeleteByID(ctx, result.Session.ID)
	_ = sessionRepo.Create(ctx, &model.Session{
		ID:        result.Session.ID,
		UserID:    result.User.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: result.Session.CreatedAt,
	})

	user, err := svc.GetCurrentUser(ctx, result.Session.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if user != nil {
		t.Error("expired session still resolves a user")
	}
}
