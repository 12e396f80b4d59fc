package refresh

import "errors"

// Sentinel errors for the fetch and refresh pipeline. Fetch-level sentinels
// are wrapped by the infra layer so callers can classify failures with
// errors.Is without depending on transport details.
var (
	// ErrFetchFailed indicates the listing page could not be retrieved at all.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrBadStatus indicates the origin answered with a non-2xx status.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrDecodeFailure indicates the response body was not valid UTF-8 text.
	ErrDecodeFailure = errors.New("response body decode failure")

	// ErrBodyTooLarge indicates the response body exceeded the size limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrInvalidURL indicates a URL failed validation before fetching.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrTooManyRedirects indicates the redirect chain exceeded the cap.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrPrivateIP indicates a hostname resolved to a private address.
	ErrPrivateIP = errors.New("URL resolves to private IP")

	// ErrTimeout indicates a fetch exceeded its per-request deadline.
	ErrTimeout = errors.New("request timed out")

	// ErrReadabilityFailed indicates article text extraction failed.
	ErrReadabilityFailed = errors.New("readability extraction failed")

	// ErrContentEmpty indicates a content fetch produced no usable text.
	ErrContentEmpty = errors.New("extracted content is empty")

	// ErrAllSourcesFailed indicates every registered source failed in one
	// refresh cycle; the previous snapshot is left in place.
	ErrAllSourcesFailed = errors.New("all sources failed")

	// ErrRefreshInProgress indicates a refresh was requested while another
	// one was still running; the request is a no-op.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)
