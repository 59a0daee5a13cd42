package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API 请求计数器
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	// API 请求响应时间
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// 文档创建数
	documentsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "documents_created_total",
			Help: "Total number of document records created",
		},
	)

	// 审核操作数
	verificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifications_total",
			Help: "Total number of verification decisions",
		},
		[]string{"result"}, // verified, rejected
	)

	// 证书导出数
	certificateExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificate_exports_total",
			Help: "Total number of certificate exports",
		},
		[]string{"mode"}, // full, degraded, failed
	)

	// QR 编码降级数
	qrFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "qr_fallbacks_total",
			Help: "Total number of QR encodings served by the remote fallback",
		},
	)

	// 文档状态分布
	documentsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "documents_by_status",
			Help: "Number of document records by status",
		},
		[]string{"status"},
	)
)

var (
	once sync.Once
)

func init() {
	// 注册指标
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(documentsCreatedTotal)
	prometheus.MustRegister(verificationsTotal)
	prometheus.MustRegister(certificateExportsTotal)
	prometheus.MustRegister(qrFallbacksTotal)
	prometheus.MustRegister(documentsByStatus)

	// 注册 Go 运行时指标（只注册一次）
	once.Do(func() {
		_ = prometheus.Register(prometheus.NewGoCollector())
		_ = prometheus.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	})
}

// Handler 返回 Prometheus 指标处理器
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest 记录 API 请求
func RecordAPIRequest(method, path string, status int, duration float64) {
	statusText := http.StatusText(status)
	if statusText == "" {
		statusText = fmt.Sprintf("%d", status)
	}
	apiRequestsTotal.WithLabelValues(method, path, statusText).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordDocumentCreated 记录文档创建
func RecordDocumentCreated() {
	documentsCreatedTotal.Inc()
}

// RecordVerification 记录审核结果
func RecordVerification(result string) {
	verificationsTotal.WithLabelValues(result).Inc()
}

// RecordCertificateExport 记录证书导出
func RecordCertificateExport(mode string) {
	certificateExportsTotal.WithLabelValues(mode).Inc()
}

// RecordQRFallback 记录 QR 编码降级
func RecordQRFallback() {
	qrFallbacksTotal.Inc()
}

// SetDocumentsByStatus 更新文档状态分布
func SetDocumentsByStatus(status string, count float64) {
	documentsByStatus.WithLabelValues(status).Set(count)
}
