package security

import (
	"testing"
	"time"
)

// TestImageURLGuard_ValidateURL_AllowedURLs は安全なURLの通過を検証する。
func TestImageURLGuard_ValidateURL_AllowedURLs(t *testing.T) {
	g := NewImageURLGuard()

	tests := []string{
		"https://api.dicebear.com/7.x/avataaars/svg?seed=student",
		"https://images.example.com/listing/desk.jpg",
		"http://cdn.example.org/photo.png",
		"https://8.8.8.8/image.png",
	}

	for _, rawURL := range tests {
		t.Run(rawURL, func(t *testing.T) {
			if err := g.ValidateURL(rawURL); err != nil {
				t.Errorf("ValidateURL(%q) = %v, want nil", rawURL, err)
			}
		})
	}
}

// TestImageURLGuard_ValidateURL_BlockedURLs は危険なURLの拒否を検証する。
func TestImageURLGuard_ValidateURL_BlockedURLs(t *testing.T) {
	g := NewImageURLGuard()

	tests := []struct {
		name   string
		rawURL string
	}{
		{"empty URL", ""},
		{"javascript scheme", "javascript:alert(1)"},
		{"data scheme", "data:image/png;base64,xxxx"},
		{"file scheme", "file:///etc/passwd"},
		{"localhost", "http://localhost/image.png"},
		{"loopback IP", "http://127.0.0.1/image.png"},
		{"private IP 10.x", "http://10.0.0.5/image.png"},
		{"private IP 192.168.x", "http://192.168.1.10/image.png"},
		{"private IP 172.16.x", "http://172.16.0.1/image.png"},
		{"cloud metadata IP", "http://169.254.169.254/latest/meta-data/"},
		{"IPv6 loopback", "http://[::1]/image.png"},
		{"missing host", "https:///image.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.ValidateURL(tt.rawURL); err == nil {
				t.Errorf("ValidateURL(%q) = nil, want error", tt.rawURL)
			}
		})
	}
}

// TestImageURLGuard_NewSafeClient はクライアント生成とタイムアウト設定を検証する。
func TestImageURLGuard_NewSafeClient(t *testing.T) {
	g := NewImageURLGuard()

	client := g.NewSafeClient(5*time.Second, 1024*1024)
	if client == nil {
		t.Fatal("NewSafeClient returned nil")
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want %v", client.Timeout, 5*time.Second)
	}
}
