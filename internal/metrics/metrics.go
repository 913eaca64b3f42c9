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
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordWarrantyRegistrationSuccess()
	RecordWarrantyRegistrationFailure()
	RecordWarrantyLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	warrantySuccess prometheus.Counter
	warrantyFail    prometheus.Counter
	warrantyLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assetman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assetman_request_latency_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		warrantySuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assetman_warranty_registration_success_total",
			Help: "保証登録成功の合計数",
		}),
		warrantyFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assetman_warranty_registration_fail_total",
			Help: "保証登録失敗の合計数",
		}),
		warrantyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "assetman_warranty_downstream_latency_seconds",
			Help:    "保証サービス呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.warrantySuccess,
		c.warrantyFail,
		c.warrantyLatency,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はAPIリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordWarrantyRegistrationSuccess は保証登録成功を記録する。
func (c *Collector) RecordWarrantyRegistrationSuccess() {
	c.warrantySuccess.Inc()
}

// RecordWarrantyRegistrationFailure は保証登録失敗を記録する。
func (c *Collector) RecordWarrantyRegistrationFailure() {
	c.warrantyFail.Inc()
}

// RecordWarrantyLatency は保証サービス呼び出しのレイテンシを記録する。
func (c *Collector) RecordWarrantyLatency(duration time.Duration) {
	c.warrantyLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
