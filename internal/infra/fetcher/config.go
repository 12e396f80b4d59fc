package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PageFetchConfig holds the configuration for listing-page fetches.
type PageFetchConfig struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 15s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Enforced while reading, not via Content-Length. Default: 10MB
	MaxBodySize int64

	// RequestsPerSecond throttles outbound requests across all sources.
	// Default: 2
	RequestsPerSecond float64

	// Burst is the rate limiter burst size. Default: 4
	Burst int

	// DenyPrivateIPs blocks URLs resolving to private addresses.
	// Should always be true in production. Default: true
	DenyPrivateIPs bool
}

// DefaultPageFetchConfig returns production defaults for page fetching.
func DefaultPageFetchConfig() PageFetchConfig {
	return PageFetchConfig{
		Timeout:           15 * time.Second,
		MaxBodySize:       10 * 1024 * 1024,
		RequestsPerSecond: 2,
		Burst:             4,
		DenyPrivateIPs:    true,
	}
}

// Validate checks the configuration for values that would be unsafe or
// unworkable at runtime.
func (c *PageFetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %v", c.RequestsPerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	return nil
}

// LoadPageFetchConfigFromEnv loads page-fetch configuration from environment
// variables, starting from defaults. Unset variables keep their defaults;
// malformed values are errors because a half-applied fetch policy is worse
// than failing startup.
//
// Environment variables:
//   - PAGE_FETCH_TIMEOUT: duration string (default: 15s)
//   - PAGE_FETCH_MAX_BODY_SIZE: bytes (default: 10485760)
//   - PAGE_FETCH_RATE: requests per second (default: 2)
//   - PAGE_FETCH_BURST: burst size (default: 4)
//   - PAGE_FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
func LoadPageFetchConfigFromEnv() (PageFetchConfig, error) {
	cfg := DefaultPageFetchConfig()

	if val := os.Getenv("PAGE_FETCH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid PAGE_FETCH_TIMEOUT: %v (expected format: '15s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("PAGE_FETCH_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid PAGE_FETCH_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("PAGE_FETCH_RATE"); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid PAGE_FETCH_RATE: %v", err)
		}
		cfg.RequestsPerSecond = parsed
	}

	if val := os.Getenv("PAGE_FETCH_BURST"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid PAGE_FETCH_BURST: %v", err)
		}
		cfg.Burst = parsed
	}

	if val := os.Getenv("PAGE_FETCH_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val == "true"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ContentFetchConfig holds the configuration for full-article content
// fetches used by the speech surface.
type ContentFetchConfig struct {
	// Enabled toggles content fetching; when false, the listing summary is
	// used directly. Default: true
	Enabled bool

	// Timeout is the maximum duration for a single HTTP request.
	// Default: 10s
	Timeout time.Duration

	// MaxBodySize is the maximum HTTP response body size in bytes.
	// Default: 10MB
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow. Each
	// redirect target is validated for SSRF. Default: 5
	MaxRedirects int

	// DenyPrivateIPs blocks URLs resolving to private addresses.
	// Default: true
	DenyPrivateIPs bool
}

// DefaultContentFetchConfig returns production defaults for content fetching.
func DefaultContentFetchConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Enabled:        true,
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks the content-fetch configuration.
func (c *ContentFetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadContentFetchConfigFromEnv loads content-fetch configuration from
// environment variables.
//
// Environment variables:
//   - CONTENT_FETCH_ENABLED: "true" or "false" (default: true)
//   - CONTENT_FETCH_TIMEOUT: duration string (default: 10s)
//   - CONTENT_FETCH_MAX_BODY_SIZE: bytes (default: 10485760)
//   - CONTENT_FETCH_MAX_REDIRECTS: integer (default: 5)
//   - CONTENT_FETCH_DENY_PRIVATE_IPS: "true" or "false" (default: true)
func LoadContentFetchConfigFromEnv() (ContentFetchConfig, error) {
	cfg := DefaultContentFetchConfig()

	if val := os.Getenv("CONTENT_FETCH_ENABLED"); val != "" {
		cfg.Enabled = val == "true"
	}

	if val := os.Getenv("CONTENT_FETCH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_TIMEOUT: %v (expected format: '10s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_MAX_REDIRECTS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid CONTENT_FETCH_MAX_REDIRECTS: %v", err)
		}
		cfg.MaxRedirects = parsed
	}

	if val := os.Getenv("CONTENT_FETCH_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val == "true"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
