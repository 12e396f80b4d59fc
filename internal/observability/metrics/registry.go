// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Pipeline metrics track the refresh cycle and per-source extraction
var (
	// ArticlesTotal tracks the number of articles in the current snapshot
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "articles_total",
			Help: "Number of articles in the current snapshot",
		},
	)

	// ArticlesExtractedTotal counts articles extracted per source
	ArticlesExtractedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_extracted_total",
			Help: "Total number of articles extracted from sources",
		},
		[]string{"source_id"},
	)

	// EntriesDroppedTotal counts listing entries dropped during extraction
	EntriesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entries_dropped_total",
			Help: "Total number of listing entries dropped during extraction",
		},
		[]string{"source_id", "reason"}, // reason: empty_title, bad_link
	)

	// SummaryFallbacksTotal counts placeholder summaries emitted when no
	// paragraph text was found near a title block
	SummaryFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_fallbacks_total",
			Help: "Total number of placeholder summaries emitted",
		},
		[]string{"source_id"},
	)

	// SourceRefreshDuration measures time to fetch and extract one source
	SourceRefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_refresh_duration_seconds",
			Help:    "Time taken to fetch and extract one source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source_id"},
	)

	// SourceRefreshErrors counts per-source refresh failures
	SourceRefreshErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_refresh_errors_total",
			Help: "Total number of per-source refresh failures",
		},
		[]string{"source_id", "error_type"},
	)

	// RefreshCyclesTotal counts whole refresh cycles by result
	RefreshCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_cycles_total",
			Help: "Total number of refresh cycles",
		},
		[]string{"result"}, // result: success, partial, failure, skipped
	)

	// RefreshDuration measures time for a whole refresh cycle
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_duration_seconds",
			Help:    "Time taken for a whole refresh cycle",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

// Content fetch metrics track the full-article enhancement path
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched content size in bytes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "content_fetch_size_bytes",
			Help: "Fetched article content size in bytes",
			Buckets: []float64{
				100, 200, 400, 800, 1600, 3200, 6400, 12800,
				25600, 51200, 102400, 204800, 409600, 819200,
				1638400, 3276800, 6553600, 10485760, // up to 10MB
			},
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
