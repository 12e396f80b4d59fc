package handler

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the HTTP surface: article queries, the refresh trigger,
// health, and the Prometheus scrape endpoint.
func NewRouter(articles *ArticleHandler, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	route := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, WithObservability(pattern, logger, h))
	}

	route("GET /articles", articles.List)
	route("GET /articles/search", articles.Search)
	route("GET /articles/{id}/speech", articles.Speech)
	route("POST /refresh", articles.Refresh)
	route("GET /healthz", Health)

	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
