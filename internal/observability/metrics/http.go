package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPBuckets are latency buckets in seconds. Backend round trips dominate
// the tail, so the upper buckets stretch to the backend timeout.
var HTTPBuckets = []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetrics collects request counts, latency and in-flight requests by
// route pattern.
type HTTPMetrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestsInProgress prometheus.Gauge
}

// NewHTTPMetrics registers the collectors with registerer.
func NewHTTPMetrics(namespace string, registerer prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(registerer)

	return &HTTPMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route pattern, method, and status code",
			},
			[]string{"route", "method", "status_code"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route pattern",
				Buckets:   HTTPBuckets,
			},
			[]string{"route"},
		),
		RequestsInProgress: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_progress",
				Help:      "Current number of HTTP requests being served",
			},
		),
	}
}

// RecordRequest records one finished request. route should be the mux
// pattern, never the raw path, to bound label cardinality.
func (m *HTTPMetrics) RecordRequest(route, method string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// IsScrapeOrProbe reports paths excluded from request metrics.
func IsScrapeOrProbe(path string) bool {
	switch path {
	case "/metrics", "/healthz":
		return true
	default:
		return false
	}
}
