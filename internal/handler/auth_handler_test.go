package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/unimart/internal/auth"
	"github.com/hitoshi/unimart/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	loginFn          func(ctx context.Context, email, password string) (*auth.LoginResult, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

func testLoginResult() *auth.LoginResult {
	return &auth.LoginResult{
		Session: &model.Session{
			ID:        "session-id-abc",
			UserID:    "user-id-123",
			ExpiresAt: time.Now().Add(24 * time.Hour),
		},
		User: &model.User{
			ID:     "user-id-123",
			Email:  "rahul.sharma@jaipur.manipal.edu",
			Name:   "rahul.sharma",
			Phone:  model.DefaultPhone,
			Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=rahul.sharma@jaipur.manipal.edu",
		},
		RedirectTo: "/",
	}
}

// --- テスト ---

func TestAuthHandler_Login_Success_SetsCookieAndReturnsUser(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*auth.LoginResult, error) {
			if email != "rahul.sharma@jaipur.manipal.edu" {
				t.Errorf("email = %q passed to service", email)
			}
			return testLoginResult(), nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{
		CookieDomain:  "",
		CookieSecure:  false,
		SessionMaxAge: 86400,
	})

	body := `{"email":"rahul.sharma@jaipur.manipal.edu","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// セッションCookieがHTTP Onlyで設定される
	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("session cookie was not set")
	}
	if sessionCookie.Value != "session-id-abc" {
		t.Errorf("cookie value = %q, want %q", sessionCookie.Value, "session-id-abc")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if sessionCookie.MaxAge != 86400 {
		t.Errorf("cookie MaxAge = %d, want 86400", sessionCookie.MaxAge)
	}

	var got loginResponse
	decodeBody(t, resp, &got)
	if got.User.Email != "rahul.sharma@jaipur.manipal.edu" {
		t.Errorf("user.email = %q", got.User.Email)
	}
	if got.RedirectTo != "/" {
		t.Errorf("redirect_to = %q, want %q", got.RedirectTo, "/")
	}
}

func TestAuthHandler_Login_Admin_RedirectsToAdmin(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*auth.LoginResult, error) {
			result := testLoginResult()
			result.User.IsAdmin = true
			result.Session.IsAdmin = true
			result.RedirectTo = "/admin"
			return result, nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{SessionMaxAge: 86400})

	body := `{"email":"admin@jaipur.manipal.edu","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	var got loginResponse
	decodeBody(t, w.Result(), &got)
	if got.RedirectTo != "/admin" {
		t.Errorf("redirect_to = %q, want %q", got.RedirectTo, "/admin")
	}
	if !got.User.IsAdmin {
		t.Error("user.is_admin = false, want true")
	}
}

func TestAuthHandler_Login_InvalidBody_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{SessionMaxAge: 86400})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Login_MissingFields_Returns400(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty email", `{"email":"","password":"secret123"}`},
		{"empty password", `{"email":"a@jaipur.manipal.edu","password":""}`},
		{"empty body", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loginCalled := false
			svc := &mockAuthService{
				loginFn: func(ctx context.Context, email, password string) (*auth.LoginResult, error) {
					loginCalled = true
					return nil, nil
				},
			}
			h := NewAuthHandler(svc, AuthHandlerConfig{SessionMaxAge: 86400})

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Login(w, req)

			if w.Result().StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
			}
			if loginCalled {
				t.Error("service.Login should not be called for an incomplete request")
			}
		})
	}
}

func TestAuthHandler_Login_ServiceRejection_ReturnsAPIError(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"wrong domain", model.NewInvalidEmailError("jaipur.manipal.edu"), http.StatusBadRequest, model.ErrCodeInvalidEmail},
		{"short password", model.NewInvalidPasswordError(), http.StatusBadRequest, model.ErrCodeInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				loginFn: func(ctx context.Context, email, password string) (*auth.LoginResult, error) {
					return nil, tt.serviceErr
				},
			}
			h := NewAuthHandler(svc, AuthHandlerConfig{SessionMaxAge: 86400})

			body := `{"email":"x@gmail.com","password":"123"}`
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
			w := httptest.NewRecorder()

			h.Login(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			var errBody apiErrorResponse
			decodeBody(t, resp, &errBody)
			if errBody.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", errBody.Code, tt.wantCode)
			}
		})
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var loggedOutSession string
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			loggedOutSession = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{SessionMaxAge: 86400})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "session-to-kill"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if loggedOutSession != "session-to-kill" {
		t.Errorf("logged out session = %q, want %q", loggedOutSession, "session-to-kill")
	}

	// Cookieが失効される
	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			cleared = c
		}
	}
	if cleared == nil {
		t.Fatal("session cookie was not cleared")
	}
	if cleared.MaxAge != -1 || cleared.Value != "" {
		t.Errorf("cookie = {Value:%q MaxAge:%d}, want cleared", cleared.Value, cleared.MaxAge)
	}
}

func TestAuthHandler_Logout_NoCookie_StillSucceeds(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{SessionMaxAge: 86400})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	w := httptest.NewRecorder()

	h.Logout(w, req)

	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
	}
}

func TestAuthHandler_Me_ReturnsCurrentUser(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			if sessionID != "valid-session" {
				return nil, nil
			}
			return &model.User{
				ID:    "user-1",
				Email: "priya.patel@jaipur.manipal.edu",
				Name:  "priya.patel",
			}, nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{SessionMaxAge: 86400})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "valid-session"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got userResponse
	decodeBody(t, resp, &got)
	if got.Email != "priya.patel@jaipur.manipal.edu" {
		t.Errorf("email = %q", got.Email)
	}
}

func TestAuthHandler_Me_AnonymousStates_Return401(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"empty cookie", &http.Cookie{Name: sessionCookieName, Value: ""}},
		{"unknown session", &http.Cookie{Name: sessionCookieName, Value: "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{SessionMaxAge: 86400})

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()

			h.Me(w, req)

			if w.Result().StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
			}
		})
	}
}
