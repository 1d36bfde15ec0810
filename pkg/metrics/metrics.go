// Package metrics exposes Prometheus metrics for the locker.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locker_http_requests_total",
			Help: "Total HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "locker_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Business metrics, updated from the use case layer
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locker_uploads_total",
			Help: "Uploaded files by result (saved, rejected, failed)",
		},
		[]string{"result"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "locker_upload_bytes_total",
			Help: "Bytes written by successful uploads",
		},
	)

	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locker_deletes_total",
			Help: "Deletions by kind (file, group)",
		},
		[]string{"kind"},
	)

	Groups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "locker_groups",
			Help: "Number of registered groups",
		},
	)

	MirrorErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "locker_mirror_errors_total",
			Help: "Failed mirror operations by operation",
		},
		[]string{"operation"},
	)
)

// Upload results
const (
	ResultSaved    = "saved"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Middleware records request count and latency, labelled by route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
