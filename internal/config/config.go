// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// API
	APIBaseURL  string        // JOOL APIのベースURL
	HTTPTimeout time.Duration // APIコールのクライアント側タイムアウト

	// Session
	SessionDir   string        // トークン・プロフィールを永続化するディレクトリ
	SessionTTL   time.Duration // パスワードログイン時にクライアント側で計算する有効期間
	CookieSecure bool          // 本番環境でのSecureフラグ相当

	// Policy
	AllowedEmailDomain string // SSOで許可する機関メールドメイン（@付きサフィックス）

	// SSO callback
	CallbackPort string // ループバックキャプチャサーバーのポート

	// Rate limit
	LoginRatePerMin int // ログイン試行のレート（req/min）
}

// デフォルト値。原則すべての項目は環境変数で上書き可能とする。
const (
	defaultAPIBaseURL   = "http://localhost:8080"
	defaultEmailDomain  = "@merida.tecnm.mx"
	defaultCallbackPort = "3000"
)

// Load は環境変数からConfigを読み込む。
// 設定値が不正な形式の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.APIBaseURL = strings.TrimSuffix(getEnvString("JOOL_API_BASE_URL", defaultAPIBaseURL), "/")
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return nil, fmt.Errorf("JOOL_API_BASE_URL must start with http:// or https://: %q", cfg.APIBaseURL)
	}

	cfg.HTTPTimeout = getEnvDuration("JOOL_HTTP_TIMEOUT", 10*time.Second)
	cfg.SessionTTL = getEnvDuration("JOOL_SESSION_TTL", 24*time.Hour)

	sessionDir, err := resolveSessionDir(os.Getenv("JOOL_SESSION_DIR"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session dir: %w", err)
	}
	cfg.SessionDir = sessionDir

	cfg.AllowedEmailDomain = getEnvString("JOOL_ALLOWED_EMAIL_DOMAIN", defaultEmailDomain)
	if !strings.HasPrefix(cfg.AllowedEmailDomain, "@") {
		return nil, fmt.Errorf("JOOL_ALLOWED_EMAIL_DOMAIN must start with '@': %q", cfg.AllowedEmailDomain)
	}

	cfg.CallbackPort = getEnvString("JOOL_CALLBACK_PORT", defaultCallbackPort)
	cfg.CookieSecure = getEnvString("JOOL_ENV", "development") == "production"
	cfg.LoginRatePerMin = getEnvInt("JOOL_LOGIN_RATE_PER_MIN", 10)

	return cfg, nil
}

// resolveSessionDir はセッションディレクトリを決定する。
// 未指定の場合はOSのユーザー設定ディレクトリ配下のjoolを使用する。
func resolveSessionDir(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "jool"), nil
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

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
