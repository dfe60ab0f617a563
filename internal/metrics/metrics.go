// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 操作結果のラベル値
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
	OutcomeInvalid = "invalid"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とミドルウェアから利用する。
type MetricsCollector interface {
	RecordDepotOperation(op string, outcome string)
	RecordStoreLatency(op string, duration time.Duration)
	RecordPasskeyVerification(matched bool)
	RecordPasskeyUpdate(outcome string)
	RecordGateDecision(accepted bool)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	depotOps      *prometheus.CounterVec
	storeLatency  *prometheus.HistogramVec
	passkeyVerify *prometheus.CounterVec
	passkeyUpdate *prometheus.CounterVec
	gateDecisions *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		depotOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depotman_depot_operations_total",
			Help: "デポ操作（list/create/update/delete）の結果別件数",
		}, []string{"op", "outcome"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "depotman_store_latency_seconds",
			Help:    "データストア呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		passkeyVerify: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depotman_passkey_verifications_total",
			Help: "パスキー照合の結果別件数",
		}, []string{"result"}),
		passkeyUpdate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depotman_passkey_updates_total",
			Help: "パスキー更新の結果別件数",
		}, []string{"outcome"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depotman_superadmin_gate_decisions_total",
			Help: "スーパー管理者ゲートの判定結果別件数",
		}, []string{"decision"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depotman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.depotOps,
		c.storeLatency,
		c.passkeyVerify,
		c.passkeyUpdate,
		c.gateDecisions,
		c.httpStatus,
	)

	return c
}

// RecordDepotOperation はデポ操作の結果を記録する。
func (c *Collector) RecordDepotOperation(op string, outcome string) {
	c.depotOps.WithLabelValues(op, outcome).Inc()
}

// RecordStoreLatency はデータストア呼び出しのレイテンシを記録する。
func (c *Collector) RecordStoreLatency(op string, duration time.Duration) {
	c.storeLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordPasskeyVerification はパスキー照合の結果を記録する。
func (c *Collector) RecordPasskeyVerification(matched bool) {
	result := "mismatch"
	if matched {
		result = "match"
	}
	c.passkeyVerify.WithLabelValues(result).Inc()
}

// RecordPasskeyUpdate はパスキー更新の結果を記録する。
func (c *Collector) RecordPasskeyUpdate(outcome string) {
	c.passkeyUpdate.WithLabelValues(outcome).Inc()
}

// RecordGateDecision はスーパー管理者ゲートの判定を記録する。
func (c *Collector) RecordGateDecision(accepted bool) {
	decision := "rejected"
	if accepted {
		decision = "accepted"
	}
	c.gateDecisions.WithLabelValues(decision).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordDepotOperation(string, string) {}
func (Nop) RecordStoreLatency(string, time.Duration) {}
func (Nop) RecordPasskeyVerification(bool) {}
func (Nop) RecordPasskeyUpdate(string) {}
func (Nop) RecordGateDecision(bool) {}
func (Nop) RecordHTTPStatus(int) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
