package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	// ComparisonCount counts comparison requests by outcome
	ComparisonCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "winnow_comparisons_total",
			Help: "Total number of document comparisons",
		},
		[]string{"status"},
	)

	// ComparisonDuration measures one-vs-many comparison duration
	ComparisonDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "winnow_comparison_duration_seconds",
			Help: "Comparison duration in seconds",
		},
	)

	// CacheLookups counts fingerprint cache hits and misses
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "winnow_cache_lookups_total",
			Help: "Fingerprint cache lookups",
		},
		[]string{"result"},
	)

	// JobCount counts stream jobs by outcome
	JobCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "winnow_jobs_total",
			Help: "Total number of queued comparison jobs processed",
		},
		[]string{"status"},
	)

	registerOnce sync.Once
)

// InitPrometheus registers the collectors with the default registry. Safe
// to call more than once.
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCount)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ComparisonCount)
		prometheus.MustRegister(ComparisonDuration)
		prometheus.MustRegister(CacheLookups)
		prometheus.MustRegister(JobCount)
	})
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
