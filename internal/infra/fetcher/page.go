package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"medfeed/internal/domain/entity"
	"medfeed/internal/resilience/circuitbreaker"
	"medfeed/internal/resilience/retry"
	"medfeed/internal/usecase/refresh"
)

// mobileUserAgent is presented on every listing-page request. The sources
// serve a simpler markup variant to mobile browsers, and the extraction
// patterns are tuned against that variant.
const mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

// PageFetcher retrieves listing pages as UTF-8 text. Requests are throttled
// by a shared rate limiter, retried with backoff, and guarded by one circuit
// breaker per source so a flapping origin cannot starve the others.
//
// Thread safety: PageFetcher is safe for concurrent use.
type PageFetcher struct {
	client *http.Client
	limit  *rate.Limiter
	config PageFetchConfig

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker
}

// NewPageFetcher creates a PageFetcher with the given configuration.
func NewPageFetcher(config PageFetchConfig) *PageFetcher {
	client := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}

	return &PageFetcher{
		client:   client,
		limit:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		config:   config,
		breakers: make(map[string]*circuitbreaker.CircuitBreaker),
	}
}

// FetchPage retrieves the listing page of a source and returns the decoded
// body. Errors are classified with the refresh sentinels: ErrBadStatus for
// non-2xx answers, ErrBodyTooLarge for oversized bodies, ErrDecodeFailure
// for bodies that are not valid UTF-8, and ErrFetchFailed for transport
// failures.
func (f *PageFetcher) FetchPage(ctx context.Context, source entity.Source) (string, error) {
	if err := validateURL(source.BaseURL, f.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	if err := f.limit.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", refresh.ErrFetchFailed, err)
	}

	breaker := f.breakerFor(source)

	var body string
	err := retry.WithBackoff(ctx, retry.PageFetchConfig(), func() error {
		result, err := breaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, source.BaseURL)
		})
		if err != nil {
			return err
		}
		body = result.(string)
		return nil
	})
	if err != nil {
		return "", err
	}
	return body, nil
}

func (f *PageFetcher) breakerFor(source entity.Source) *circuitbreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := f.breakers[source.ID]; ok {
		return cb
	}

	var cfg circuitbreaker.Config
	if source.Kind == entity.SourceKindRSS {
		cfg = circuitbreaker.FeedFetchConfig(source.ID)
	} else {
		cfg = circuitbreaker.PageFetchConfig(source.ID)
	}
	cb := circuitbreaker.New(cfg)
	f.breakers[source.ID] = cb
	return cb
}

func (f *PageFetcher) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", refresh.ErrInvalidURL, err)
	}

	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: request exceeded %v", refresh.ErrTimeout, f.config.Timeout)
		}
		return "", fmt.Errorf("%w: %v", refresh.ErrFetchFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Any 2xx is accepted; everything else is a fetch failure. The wrapped
	// HTTPError lets the retry layer distinguish 5xx from 4xx.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %w", refresh.ErrBadStatus, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		})
	}

	limitedReader := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	bodyBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %v", refresh.ErrFetchFailed, err)
	}

	if int64(len(bodyBytes)) > f.config.MaxBodySize {
		return "", fmt.Errorf("%w: response exceeds %d bytes", refresh.ErrBodyTooLarge, f.config.MaxBodySize)
	}

	if !utf8.Valid(bodyBytes) {
		return "", fmt.Errorf("%w: response body is not valid UTF-8", refresh.ErrDecodeFailure)
	}

	return string(bodyBytes), nil
}
