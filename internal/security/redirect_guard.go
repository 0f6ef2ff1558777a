// Package security はクライアントのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// RedirectGuardService はSSOリダイレクトURL検証のインターフェースを定義する。
// APIから受け取ったredirect_urlへブラウザを遷移させる前の事前チェックとして使用する。
// APIの応答が改ざん・誤設定されていた場合に、ローカルネットワークや
// 非HTTPスキームへのナビゲーションを拒否する。
type RedirectGuardService interface {
	// ValidateRedirectURL はリダイレクトURLの安全性を検証する。
	// スキーム、ホスト、IPアドレスの検証を行い、危険なURLの場合はエラーを返す。
	ValidateRedirectURL(rawURL string) error
}

// allowedSchemes はリダイレクト先として許可されるURLスキーム。
var allowedSchemes = []string{"https"}

// blockedNetworks はリダイレクト先として拒否されるネットワーク範囲。
// パッケージ初期化時に1回だけパースする。
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// プライベートIPアドレス (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// ループバック (RFC 1122)
		"127.0.0.0/8",
		// リンクローカル (RFC 3927)
		"169.254.0.0/16",
		// カレントネットワーク
		"0.0.0.0/8",
		// IPv6ループバック
		"::1/128",
		// IPv6リンクローカル
		"fe80::/10",
		// IPv6ユニークローカル
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// redirectGuard はRedirectGuardServiceの実装。
type redirectGuard struct{}

// NewRedirectGuard はRedirectGuardServiceの新しいインスタンスを生成する。
func NewRedirectGuard() *redirectGuard {
	return &redirectGuard{}
}

// ValidateRedirectURL はリダイレクトURLの安全性を検証する。
// IdPのログインページは常にhttpsで提供されるため、httpは許可しない。
func (g *redirectGuard) ValidateRedirectURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty redirect URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid redirect URL: %w", err)
	}

	// スキーム検証
	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme in redirect URL: %s (allowed: %v)", scheme, allowedSchemes)
	}

	// ホスト検証: 空ホストを拒否
	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in redirect URL: %s", rawURL)
	}

	// IPアドレスの場合: ブロック対象CIDRとの照合
	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address in redirect URL: %s", ip.String())
		}
		return nil
	}

	// ホスト名の場合: localhost等の危険なホスト名を拒否
	if isBlockedHostname(host) {
		return fmt.Errorf("blocked host in redirect URL: %s", host)
	}

	return nil
}

// isAllowedScheme はURLスキームが許可リストに含まれるかを検証する。
func isAllowedScheme(scheme string) bool {
	for _, s := range allowedSchemes {
		if scheme == s {
			return true
		}
	}
	return false
}

// isBlockedIP はIPアドレスがブロック対象ネットワークに含まれるかを検証する。
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// isBlockedHostname は危険なホスト名を検証する。
func isBlockedHostname(host string) bool {
	lower := strings.ToLower(host)
	return lower == "localhost" || strings.HasSuffix(lower, ".localhost") || strings.HasSuffix(lower, ".local")
}

// compile-time interface check
var _ RedirectGuardService = (*redirectGuard)(nil)
