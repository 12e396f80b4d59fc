package worker

import (
	"medfeed/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks scheduled refresh job execution for the worker process.
// It embeds the configuration metric set so fallback activity shows up under
// the same "worker" component prefix.
type Metrics struct {
	*config.ConfigMetrics

	// JobRunsTotal counts refresh job runs by status (success, failure).
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures refresh job execution time.
	JobDurationSeconds prometheus.Histogram

	// JobArticlesTotal counts articles aggregated across all job runs.
	JobArticlesTotal prometheus.Counter

	// JobLastSuccessTimestamp is the Unix time of the last successful run.
	JobLastSuccessTimestamp prometheus.Gauge
}

// NewMetrics registers the worker metric set on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_refresh_job_runs_total",
			Help: "Total number of scheduled refresh job runs by status",
		}, []string{"status"}),

		JobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_refresh_job_duration_seconds",
			Help:    "Duration of scheduled refresh job execution in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),

		JobArticlesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_refresh_job_articles_total",
			Help: "Total number of articles aggregated across refresh job runs",
		}),

		JobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_refresh_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful refresh job run",
		}),
	}
}

// RecordJobRun increments the run counter for "success" or "failure".
func (m *Metrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a job execution duration in seconds.
func (m *Metrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

// RecordArticles adds the article count of a completed run to the total.
func (m *Metrics) RecordArticles(count int) {
	m.JobArticlesTotal.Add(float64(count))
}

// RecordLastSuccess marks the current time as the last successful run.
func (m *Metrics) RecordLastSuccess() {
	m.JobLastSuccessTimestamp.SetToCurrentTime()
}
