// Package worker holds the scheduled-refresh process pieces: its
// configuration, health endpoints, and job metrics.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"medfeed/internal/pkg/config"
)

// Config controls the worker process: when scheduled refreshes run, how
// long one cycle may take, and which ports the operational servers bind.
//
// Configuration is loaded fail-open: an invalid environment value falls
// back to its default, logs a warning, and increments a metric, so the
// worker always starts with a usable configuration.
type Config struct {
	// CronSchedule is the five-field cron expression for refresh runs.
	// Default: "0 */4 * * *" (every four hours).
	CronSchedule string

	// Timezone is the IANA timezone name used for cron scheduling.
	// Default: "UTC".
	Timezone string

	// RefreshTimeout bounds a single refresh cycle. The cycle's context
	// is cancelled when it elapses. Default: 5 minutes.
	RefreshTimeout time.Duration

	// RefreshOnStart runs one refresh immediately at startup so the
	// snapshot is populated before the first scheduled run. Default: true.
	RefreshOnStart bool

	// HealthPort is the port for the liveness/readiness server.
	// Range 1024-65535, default 9091.
	HealthPort int

	// MetricsPort is the port for the Prometheus scrape endpoint.
	// Range 1024-65535, default 9092.
	MetricsPort int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CronSchedule:   "0 */4 * * *",
		Timezone:       "UTC",
		RefreshTimeout: 5 * time.Minute,
		RefreshOnStart: true,
		HealthPort:     9091,
		MetricsPort:    9092,
	}
}

// Validate checks every field and returns all violations together.
func (c *Config) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RefreshTimeout); err != nil {
		errs = append(errs, fmt.Errorf("refresh timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidateIntRange(c.MetricsPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables with fallback to defaults on any invalid value.
//
// Environment variables:
//   - REFRESH_CRON: cron expression (default "0 */4 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default "UTC")
//   - REFRESH_TIMEOUT: duration between 30s and 1h (default 5m)
//   - REFRESH_ON_START: bool (default true)
//   - WORKER_HEALTH_PORT: int 1024-65535 (default 9091)
//   - WORKER_METRICS_PORT: int 1024-65535 (default 9092)
//
// The returned error is always nil; the signature keeps the call site
// uniform with loaders that can fail.
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) (*Config, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	warn := func(field string, warnings []string) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field)
		for _, w := range warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", w))
		}
	}

	result := config.LoadEnvWithFallback("REFRESH_CRON", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	if result.FallbackApplied {
		warn("cron_schedule", result.Warnings)
	}

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	if result.FallbackApplied {
		warn("timezone", result.Warnings)
	}

	result = config.LoadEnvDuration("REFRESH_TIMEOUT", cfg.RefreshTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 30*time.Second, time.Hour)
	})
	cfg.RefreshTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		warn("refresh_timeout", result.Warnings)
	}

	result = config.LoadEnvBool("REFRESH_ON_START", cfg.RefreshOnStart)
	cfg.RefreshOnStart = result.Value.(bool)
	if result.FallbackApplied {
		warn("refresh_on_start", result.Warnings)
	}

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	if result.FallbackApplied {
		warn("health_port", result.Warnings)
	}

	result = config.LoadEnvInt("WORKER_METRICS_PORT", cfg.MetricsPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.MetricsPort = result.Value.(int)
	if result.FallbackApplied {
		warn("metrics_port", result.Warnings)
	}

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
