// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry  = prometheus.NewRegistry()
	startTime = time.Now()

	// RequestsTotal counts handled HTTP requests by method, route and status.
	RequestsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "equicloud_http_requests_total",
			Help: "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration observes request latency by route.
	RequestDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "equicloud_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// LegacyMigrations counts settings records rewritten from the legacy key
	// to the current key.
	LegacyMigrations = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "equicloud_legacy_migrations_total",
			Help: "Settings records migrated from the legacy key scheme.",
		},
	)

	// SettingsOps counts settings operations by kind and outcome.
	SettingsOps = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "equicloud_settings_operations_total",
			Help: "Settings operations by kind (get/put/delete) and outcome.",
		},
		[]string{"op", "outcome"},
	)

	uptime = promauto.With(registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "equicloud_uptime_seconds",
			Help: "Seconds since process start.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// Handler returns the HTTP handler serving the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
