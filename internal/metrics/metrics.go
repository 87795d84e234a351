// Package metrics exposes Prometheus collectors for the pipeline, the
// notification dispatcher, and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	httpRequestsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	feedFetchesTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total number of feed fetch attempts",
		},
		[]string{"feed", "status"},
	)

	cycleDuration = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scrape_cycle_duration_seconds",
			Help:    "Duration of one full fetch-match-store cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	alertsRecordedTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_recorded_total",
			Help: "Alerts offered to the store, by outcome",
		},
		[]string{"status"},
	)

	notificationsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification send attempts, by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	dbQueriesTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Database operations, by type and outcome",
		},
		[]string{"operation", "status"},
	)

	dbConnectionsActive = promauto.With(registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Currently acquired database connections",
		},
	)
)

// Handler returns the metrics endpoint handler
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordFeedFetch records the outcome of one feed fetch
func RecordFeedFetch(feed, status string) {
	feedFetchesTotal.WithLabelValues(feed, status).Inc()
}

// RecordCycle records the duration of one full scrape cycle
func RecordCycle(duration time.Duration) {
	cycleDuration.Observe(duration.Seconds())
}

// RecordAlert records a dedup-store outcome: created, duplicate or error
func RecordAlert(status string) {
	alertsRecordedTotal.WithLabelValues(status).Inc()
}

// RecordNotification records a notification attempt
func RecordNotification(channel, status string) {
	notificationsTotal.WithLabelValues(channel, status).Inc()
}

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, status string) {
	dbQueriesTotal.WithLabelValues(operation, status).Inc()
}

// SetDBConnectionsActive sets the number of active database connections
func SetDBConnectionsActive(count float64) {
	dbConnectionsActive.Set(count)
}
