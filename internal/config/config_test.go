package config

import (
	"testing"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("BASE_URL", "http://localhost:8080")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:8080")
	}
}

func TestLoad_MissingBaseURL_ReturnsError(t *testing.T) {
	t.Setenv("BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing BASE_URL, got nil")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.EmailDomain != "jaipur.manipal.edu" {
		t.Errorf("EmailDomain = %q, want %q", cfg.EmailDomain, "jaipur.manipal.edu")
	}
	if cfg.AdminEmail != "admin@jaipur.manipal.edu" {
		t.Errorf("AdminEmail = %q, want %q", cfg.AdminEmail, "admin@jaipur.manipal.edu")
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("SessionMaxAge = %d, want %d", cfg.SessionMaxAge, 86400)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want %d", cfg.RateLimitGeneral, 120)
	}
	if cfg.RateLimitListingCreate != 10 {
		t.Errorf("RateLimitListingCreate = %d, want %d", cfg.RateLimitListingCreate, 10)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:3000")
	}
}

func TestLoad_CookieSecure_DerivedFromBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    bool
	}{
		{"https => secure", "https://unimart.example.com", true},
		{"http => not secure", "http://localhost:8080", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BASE_URL", tt.baseURL)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cfg.CookieSecure != tt.want {
				t.Errorf("CookieSecure = %v, want %v", cfg.CookieSecure, tt.want)
			}
		})
	}
}

func TestLoad_CustomEmailDomain(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("EMAIL_DOMAIN", "institution.edu")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.EmailDomain != "institution.edu" {
		t.Errorf("EmailDomain = %q, want %q", cfg.EmailDomain, "institution.edu")
	}
	// 管理者メールはドメインに追従する
	if cfg.AdminEmail != "admin@institution.edu" {
		t.Errorf("AdminEmail = %q, want %q", cfg.AdminEmail, "admin@institution.edu")
	}
}

func TestLoad_AdminEmailOutsideDomain_ReturnsError(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("ADMIN_EMAIL", "admin@gmail.com")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for admin email outside the allowed domain, got nil")
	}
}
