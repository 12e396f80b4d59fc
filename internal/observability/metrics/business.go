package metrics

import "time"

// RecordArticlesExtracted records the number of articles extracted from a source.
func RecordArticlesExtracted(sourceID string, count int) {
	ArticlesExtractedTotal.WithLabelValues(sourceID).Add(float64(count))
}

// RecordEntryDropped records one listing entry dropped during extraction.
// Reason should be "empty_title" or "bad_link".
func RecordEntryDropped(sourceID, reason string) {
	EntriesDroppedTotal.WithLabelValues(sourceID, reason).Inc()
}

// RecordSummaryFallback records one placeholder summary emitted for a source.
func RecordSummaryFallback(sourceID string) {
	SummaryFallbacksTotal.WithLabelValues(sourceID).Inc()
}

// RecordSourceRefresh records metrics for one per-source fetch and extract.
func RecordSourceRefresh(sourceID string, duration time.Duration) {
	SourceRefreshDuration.WithLabelValues(sourceID).Observe(duration.Seconds())
}

// RecordSourceRefreshError records a per-source refresh failure.
// ErrorType describes the failure class ("fetch", "decode", "status").
func RecordSourceRefreshError(sourceID, errorType string) {
	SourceRefreshErrors.WithLabelValues(sourceID, errorType).Inc()
}

// RecordRefreshCycle records the outcome of a whole refresh cycle.
// Result should be "success", "partial", "failure", or "skipped".
func RecordRefreshCycle(result string, duration time.Duration) {
	RefreshCyclesTotal.WithLabelValues(result).Inc()
	if result != "skipped" {
		RefreshDuration.Observe(duration.Seconds())
	}
}

// UpdateArticlesTotal updates the article count gauge after a snapshot swap.
func UpdateArticlesTotal(count int) {
	ArticlesTotal.Set(float64(count))
}

// RecordContentFetchSuccess records a successful content fetch with its
// duration and the size of the extracted text.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed content fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}
