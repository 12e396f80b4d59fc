package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handler "medfeed/internal/handler/http"
	"medfeed/internal/infra/fetcher"
	"medfeed/internal/infra/scraper"
	"medfeed/internal/observability/logging"
	"medfeed/internal/pkg/config"
	"medfeed/internal/registry"
	"medfeed/internal/usecase/article"
	"medfeed/internal/usecase/refresh"
)

func main() {
	logger := initLogger()

	refreshSvc, articleSvc := setupServices(logger)

	// Populate the snapshot before accepting traffic so the first listing
	// request does not see an empty aggregate.
	if config.LoadEnvBool("REFRESH_ON_START", true).Value.(bool) {
		runInitialRefresh(logger, refreshSvc)
	}

	articles := handler.NewArticleHandler(articleSvc, refreshSvc, logger)
	router := handler.NewRouter(articles, logger)

	runServer(logger, router)
}

// initLogger initializes the structured logger and installs it as the
// process default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// setupServices wires the refresh pipeline and the read service over one
// shared state store.
func setupServices(logger *slog.Logger) (*refresh.Service, *article.Service) {
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

	state := refresh.NewState()
	refreshSvc := refresh.NewService(sources, scrapers, state, logger, parallelism)

	contentFetcher, contentEnabled := setupContentFetcher(logger)
	articleSvc := article.NewService(state, contentFetcher, contentEnabled, logger)

	return refreshSvc, articleSvc
}

// setupContentFetcher creates the full-text fetcher for the speech surface.
// Configuration errors disable content fetching instead of aborting startup;
// speech then falls back to listing summaries.
func setupContentFetcher(logger *slog.Logger) (article.ContentFetcher, bool) {
	contentConfig, err := fetcher.LoadContentFetchConfigFromEnv()
	if err != nil {
		logger.Error("failed to load content fetch configuration", slog.Any("error", err))
		logger.Warn("content fetching disabled due to configuration error")
		return nil, false
	}

	if !contentConfig.Enabled {
		logger.Info("content fetching disabled")
		return nil, false
	}

	logger.Info("content fetching enabled",
		slog.Duration("timeout", contentConfig.Timeout),
		slog.Int("max_redirects", contentConfig.MaxRedirects))
	return fetcher.NewReadabilityFetcher(contentConfig), true
}

// runInitialRefresh runs one refresh cycle at startup. An all-sources
// failure is logged but does not abort; the API starts with an empty
// snapshot and recovers on the next refresh.
func runInitialRefresh(logger *slog.Logger, svc *refresh.Service) {
	timeout := config.LoadEnvDuration("REFRESH_TIMEOUT", 5*time.Minute, config.ValidatePositiveDuration).Value.(time.Duration)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap, err := svc.Refresh(ctx)
	if err != nil {
		logger.Error("initial refresh failed", slog.Any("error", err))
		return
	}
	logger.Info("initial refresh completed",
		slog.Int("articles", len(snap.Articles)),
		slog.Int("failed_sources", len(snap.Failures)))
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, router http.Handler) {
	addr := ":" + config.LoadEnvString("PORT", "8080")

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
