package security

import (
	"strings"
	"testing"
)

// TestValidateRedirectURL_Allowed は正当なIdPのURLが許可されることを検証する。
func TestValidateRedirectURL_Allowed(t *testing.T) {
	guard := NewRedirectGuard()

	urls := []string{
		"https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		"https://login.microsoftonline.com/authorize?client_id=abc&redirect_uri=https%3A%2F%2Fjool.example",
	}
	for _, u := range urls {
		if err := guard.ValidateRedirectURL(u); err != nil {
			t.Errorf("ValidateRedirectURL(%q) = %v, want nil", u, err)
		}
	}
}

// TestValidateRedirectURL_DisallowedScheme はhttps以外のスキームが
// 拒否されることを検証する。
func TestValidateRedirectURL_DisallowedScheme(t *testing.T) {
	guard := NewRedirectGuard()

	urls := []string{
		"http://login.microsoftonline.com/authorize",
		"javascript:alert(1)",
		"file:///etc/passwd",
		"ftp://example.com/",
	}
	for _, u := range urls {
		err := guard.ValidateRedirectURL(u)
		if err == nil {
			t.Errorf("ValidateRedirectURL(%q) = nil, want scheme error", u)
			continue
		}
		if !strings.Contains(err.Error(), "scheme") {
			t.Errorf("ValidateRedirectURL(%q) = %v, want scheme error", u, err)
		}
	}
}

// TestValidateRedirectURL_BlockedIPs はプライベート・ループバック等の
// IPアドレスが拒否されることを検証する。
func TestValidateRedirectURL_BlockedIPs(t *testing.T) {
	guard := NewRedirectGuard()

	urls := []string{
		"https://127.0.0.1/authorize",
		"https://10.0.0.5/authorize",
		"https://172.16.1.1/authorize",
		"https://192.168.1.1/authorize",
		"https://169.254.169.254/latest/meta-data/",
		"https://[::1]/authorize",
		"https://[fe80::1]/authorize",
	}
	for _, u := range urls {
		if err := guard.ValidateRedirectURL(u); err == nil {
			t.Errorf("ValidateRedirectURL(%q) = nil, want blocked", u)
		}
	}
}

// TestValidateRedirectURL_PublicIPAllowed はグローバルIPアドレスが
// 許可されることを検証する。
func TestValidateRedirectURL_PublicIPAllowed(t *testing.T) {
	guard := NewRedirectGuard()

	if err := guard.ValidateRedirectURL("https://20.190.128.1/authorize"); err != nil {
		t.Errorf("public IP should be allowed: %v", err)
	}
}

// TestValidateRedirectURL_BlockedHostnames はlocalhost系のホスト名が
// 拒否されることを検証する。
func TestValidateRedirectURL_BlockedHostnames(t *testing.T) {
	guard := NewRedirectGuard()

	urls := []string{
		"https://localhost/authorize",
		"https://LOCALHOST/authorize",
		"https://evil.localhost/authorize",
		"https://printer.local/authorize",
	}
	for _, u := range urls {
		if err := guard.ValidateRedirectURL(u); err == nil {
			t.Errorf("ValidateRedirectURL(%q) = nil, want blocked", u)
		}
	}
}

// TestValidateRedirectURL_Malformed は空・不正なURLが拒否されることを検証する。
func TestValidateRedirectURL_Malformed(t *testing.T) {
	guard := NewRedirectGuard()

	urls := []string{
		"",
		"https://",
		"://missing-scheme",
	}
	for _, u := range urls {
		if err := guard.ValidateRedirectURL(u); err == nil {
			t.Errorf("ValidateRedirectURL(%q) = nil, want error", u)
		}
	}
}
