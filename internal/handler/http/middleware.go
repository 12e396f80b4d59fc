package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"medfeed/internal/observability/metrics"
)

// statusRecorder captures the status code and bytes written so the
// middleware can log and record what the handler actually sent.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// WithObservability wraps a handler with request logging and Prometheus
// metrics. The pattern string is used as the path label to keep metric
// cardinality bounded regardless of request paths.
func WithObservability(pattern string, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, pattern, strconv.Itoa(rec.status), elapsed, rec.bytes)

		logger.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Int("bytes", rec.bytes),
			slog.Duration("elapsed", elapsed))
	})
}
