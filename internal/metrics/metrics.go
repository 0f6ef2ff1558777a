// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証フローとAPIトランスポートから利用する。
type MetricsCollector interface {
	RecordLoginSuccess(method string)
	RecordLoginFailure(method string, reason string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordSessionInvalidated()
}

// ログイン方式のラベル値。
const (
	MethodPassword  = "password"
	MethodMicrosoft = "microsoft"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	loginSuccess       *prometheus.CounterVec
	loginFail          *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
	requestLatency     prometheus.Histogram
	sessionInvalidated prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jool_login_success_total",
			Help: "ログイン成功の合計数（方式別）",
		}, []string{"method"}),
		loginFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jool_login_failure_total",
			Help: "ログイン失敗の合計数（方式・理由別）",
		}, []string{"method", "reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jool_api_http_status_total",
			Help: "APIレスポンスのHTTPステータスコード別合計数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jool_api_request_latency_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		sessionInvalidated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jool_session_invalidated_total",
			Help: "401応答によるセッション無効化の合計数",
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFail,
		c.httpStatus,
		c.requestLatency,
		c.sessionInvalidated,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess(method string) {
	c.loginSuccess.WithLabelValues(method).Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure(method string, reason string) {
	c.loginFail.WithLabelValues(method, reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はAPIリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordSessionInvalidated は401応答によるセッション無効化を記録する。
func (c *Collector) RecordSessionInvalidated() {
	c.sessionInvalidated.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// SSOキャプチャサーバーの/metricsにマウントされる。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
