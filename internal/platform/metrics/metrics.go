package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics shared by all handlers.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
}

// New creates and registers the shared HTTP metrics.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pedulikucing_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pedulikucing_http_requests_total",
			Help: "Total HTTP requests by route, method, and status",
		}, []string{"route", "method", "status"}),
	}
}
