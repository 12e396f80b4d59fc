package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"medfeed/internal/infra/fetcher"
	"medfeed/internal/infra/scraper"
	workerPkg "medfeed/internal/infra/worker"
	"medfeed/internal/observability/logging"
	"medfeed/internal/pkg/config"
	"medfeed/internal/registry"
	"medfeed/internal/usecase/refresh"
)

func main() {
	logger := initLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker configuration loads fail-open; invalid values fall back to
	// defaults with a warning.
	workerMetrics := workerPkg.NewMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("refresh_timeout", workerConfig.RefreshTimeout),
		slog.Bool("refresh_on_start", workerConfig.RefreshOnStart),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	svc := setupRefreshService(logger)

	startMetricsServer(ctx, logger, workerConfig.MetricsPort)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	if workerConfig.RefreshOnStart {
		runRefreshJob(logger, svc, workerConfig, workerMetrics)
	}

	c := startCron(logger, svc, workerConfig, workerMetrics)
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	healthServer.SetReady(false)
	stopCtx := c.Stop()
	<-stopCtx.Done()
	cancel()
	logger.Info("worker stopped")
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// setupRefreshService wires the refresh pipeline: the source registry, the
// rate-limited page fetcher, and the per-kind scrapers.
func setupRefreshService(logger *slog.Logger) *refresh.Service {
	pageConfig, err := fetcher.LoadPageFetchConfigFromEnv()
	if err != nil {
		logger.Error("failed to load page fetch configuration", slog.Any("error", err))
		os.Exit(1)
	}

	pages := fetcher.NewPageFetcher(pageConfig)
	scrapers := scraper.NewFactory(pages, logger)
	sources := registry.All()
	logger.Info("sources registered", slog.Int("count", len(sources)))

	parallelism := config.LoadEnvInt("REFRESH_PARALLELISM", 4, func(v int) error {
		return config.ValidateIntRange(v, 1, 16)
	}).Value.(int)

	return refresh.NewService(sources, scrapers, refresh.NewState(), logger, parallelism)
}

// startMetricsServer serves the Prometheus scrape endpoint for the worker
// process.
func startMetricsServer(ctx context.Context, logger *slog.Logger, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}()
}

// startCron schedules the periodic refresh job in the configured timezone.
func startCron(logger *slog.Logger, svc *refresh.Service, cfg *workerPkg.Config, metrics *workerPkg.Metrics) *cron.Cron {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC",
			slog.String("timezone", cfg.Timezone),
			slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runRefreshJob(logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	return c
}

// runRefreshJob executes one refresh cycle with a timeout.
func runRefreshJob(logger *slog.Logger, svc *refresh.Service, cfg *workerPkg.Config, metrics *workerPkg.Metrics) {
	start := time.Now()
	logger.Info("refresh job started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RefreshTimeout)
	defer cancel()

	snap, err := svc.Refresh(ctx)
	if err != nil {
		logger.Error("refresh job failed", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(start).Seconds())
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(start).Seconds())
	metrics.RecordArticles(len(snap.Articles))
	metrics.RecordLastSuccess()

	logger.Info("refresh job completed",
		slog.Int("articles", len(snap.Articles)),
		slog.Int("failed_sources", len(snap.Failures)),
		slog.Duration("elapsed", time.Since(start)))
}
