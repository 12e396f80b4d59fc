// Package handler exposes the pipeline's read surface over HTTP: article
// listing, topic search, speech text, and a refresh trigger.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"medfeed/internal/domain/entity"
	"medfeed/internal/handler/http/respond"
	"medfeed/internal/usecase/article"
	"medfeed/internal/usecase/refresh"
)

// Refresher triggers an aggregate refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context) (refresh.Snapshot, error)
}

// ArticleHandler serves article queries from the latest snapshot.
type ArticleHandler struct {
	articles  *article.Service
	refresher Refresher
	logger    *slog.Logger
}

// NewArticleHandler creates the handler over the read service and refresher.
func NewArticleHandler(articles *article.Service, refresher Refresher, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{articles: articles, refresher: refresher, logger: logger}
}

type articleResponse struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	FetchedAt time.Time `json:"fetched_at"`
}

type failureResponse struct {
	SourceID string `json:"source_id"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

type listResponse struct {
	Articles   []articleResponse `json:"articles"`
	Failures   []failureResponse `json:"failures,omitempty"`
	Refreshing bool              `json:"refreshing"`
	Error      string            `json:"error,omitempty"`
}

func toArticleResponses(articles []entity.Article) []articleResponse {
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleResponse{
			ID:        a.ID,
			SourceID:  a.SourceID,
			Title:     a.Title,
			URL:       a.URL,
			Summary:   a.Summary,
			FetchedAt: a.FetchedAt,
		})
	}
	return out
}

func toFailureResponses(failures []refresh.SourceFailure) []failureResponse {
	out := make([]failureResponse, 0, len(failures))
	for _, f := range failures {
		out = append(out, failureResponse{SourceID: f.SourceID, Kind: f.Kind, Message: f.Message})
	}
	return out
}

// List handles GET /articles.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, listResponse{
		Articles:   toArticleResponses(h.articles.List()),
		Failures:   toFailureResponses(h.articles.Failures()),
		Refreshing: h.articles.Refreshing(),
		Error:      h.articles.LastError(),
	})
}

// Search handles GET /articles/search?q=topic.
func (h *ArticleHandler) Search(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("q")
	respond.JSON(w, http.StatusOK, listResponse{
		Articles: toArticleResponses(h.articles.Search(topic)),
	})
}

// Speech handles GET /articles/{id}/speech.
func (h *ArticleHandler) Speech(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respond.Error(w, http.StatusBadRequest, errors.New("article id is required"))
		return
	}

	text, err := h.articles.SpeechText(r.Context(), id)
	if err != nil {
		if errors.Is(err, article.ErrArticleNotFound) {
			respond.SafeError(w, http.StatusNotFound, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"id": id, "text": text})
}

// Refresh handles POST /refresh. A refresh already in flight answers 409;
// a cycle where every source failed answers 502 while the previous snapshot
// stays served.
func (h *ArticleHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.refresher.Refresh(r.Context())
	switch {
	case errors.Is(err, refresh.ErrRefreshInProgress):
		respond.SafeError(w, http.StatusConflict, err)
		return
	case errors.Is(err, refresh.ErrAllSourcesFailed):
		respond.SafeError(w, http.StatusBadGateway, err)
		return
	case err != nil:
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"articles":       len(snap.Articles),
		"failed_sources": len(snap.Failures),
		"refreshed_at":   snap.RefreshedAt,
	})
}
