// Package api はJOOL APIの認可付きクライアントを提供する。
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/jool/internal/metrics"
)

// TokenSource はベアラートークンの取得に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type TokenSource interface {
	Token() (string, bool)
}

// SessionInvalidator はセッション破棄に必要なインターフェース。
type SessionInvalidator interface {
	Logout()
}

// LoginRedirector はログインページへの強制遷移に必要なインターフェース。
type LoginRedirector interface {
	Replace(url string)
}

// AuthHeader は外部APIコール用のヘッダーを組み立てる。
// トークンが存在する場合のみAuthorizationヘッダーを付与する。
//
// 通常のリソース呼び出しはTransportが注入を行うためこれを必要としない。
// Transportを経由せずにリクエストを組み立てる呼び出し側
// （カスタムクライアントやスクリプト）向けのヘルパー。
func AuthHeader(tokens TokenSource) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if token, ok := tokens.Token(); ok {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

// Transport は全アウトバウンドAPIコールに横断適用されるRoundTripper。
//
//   - リクエストにAuthorizationヘッダーとX-Request-IDを注入する
//   - レスポンスのステータスとレイテンシをメトリクスに記録する
//   - 401受信時はセッションを破棄し、ログインページへの遷移を行う。
//     トークン不正と正当な期限切れは区別せず、どちらも全セッション破棄に倒す。
//     副作用の後もレスポンスはそのまま返し、呼び出し元のエラー処理も実行させる。
type Transport struct {
	base        http.RoundTripper
	tokens      TokenSource
	invalidator SessionInvalidator
	redirector  LoginRedirector
	collector   metrics.MetricsCollector
	loginURL    string
}

// NewTransport はTransportを生成する。baseがnilの場合はhttp.DefaultTransportを使用する。
func NewTransport(
	base http.RoundTripper,
	tokens TokenSource,
	invalidator SessionInvalidator,
	redirector LoginRedirector,
	collector metrics.MetricsCollector,
	loginURL string,
) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if loginURL == "" {
		loginURL = "/login"
	}
	return &Transport{
		base:        base,
		tokens:      tokens,
		invalidator: invalidator,
		redirector:  redirector,
		collector:   collector,
		loginURL:    loginURL,
	}
}

// RoundTrip はリクエストを送信する。http.RoundTripperを実装する。
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTripperは元リクエストを変更してはならないため複製する
	clone := req.Clone(req.Context())
	if token, ok := t.tokens.Token(); ok {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	clone.Header.Set("X-Request-ID", uuid.New().String())

	start := time.Now()
	resp, err := t.base.RoundTrip(clone)
	if err != nil {
		return nil, err
	}
	t.collector.RecordRequestLatency(time.Since(start))
	t.collector.RecordHTTPStatus(resp.StatusCode)

	// 401はセッション死亡のシグナル。破棄とログイン遷移を先に行い、
	// レスポンス自体は呼び出し元へ返す。
	if resp.StatusCode == http.StatusUnauthorized {
		slog.Warn("received 401, invalidating session",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
		)
		t.collector.RecordSessionInvalidated()
		t.invalidator.Logout()
		t.redirector.Replace(t.loginURL)
	}

	return resp, nil
}

// compile-time interface check
var _ http.RoundTripper = (*Transport)(nil)
