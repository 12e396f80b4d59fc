// Package article exposes the read side of the pipeline: listing the
// current snapshot, topic search, and speech text for playback.
package article

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"medfeed/internal/domain/entity"
	"medfeed/internal/usecase/refresh"
)

// ErrArticleNotFound indicates the requested article is not in the current
// snapshot. Articles are replaced wholesale on refresh, so a stale ID from
// a previous snapshot is expected and not a server fault.
var ErrArticleNotFound = errors.New("article not found in current snapshot")

// ContentFetcher retrieves the full text of an article page.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Service answers read queries against the latest published snapshot.
type Service struct {
	state          *refresh.State
	content        ContentFetcher
	contentEnabled bool
	logger         *slog.Logger
}

// NewService creates the read service. content may be nil when full-text
// enhancement is disabled; speech text then always uses the summary.
func NewService(state *refresh.State, content ContentFetcher, contentEnabled bool, logger *slog.Logger) *Service {
	return &Service{
		state:          state,
		content:        content,
		contentEnabled: contentEnabled && content != nil,
		logger:         logger,
	}
}

// List returns the articles of the current snapshot in their published
// title order.
func (s *Service) List() []entity.Article {
	return s.state.Snapshot().Articles
}

// Failures returns the per-source failure records of the current snapshot.
func (s *Service) Failures() []refresh.SourceFailure {
	return s.state.Snapshot().Failures
}

// Refreshing reports whether a refresh cycle is currently running.
func (s *Service) Refreshing() bool {
	return s.state.Refreshing()
}

// LastError returns the message of the last failed refresh cycle, empty
// after a successful one.
func (s *Service) LastError() string {
	return s.state.LastError()
}

// Search returns articles whose title or summary contains the topic,
// case-insensitively. An empty topic returns the full list.
func (s *Service) Search(topic string) []entity.Article {
	articles := s.List()
	if strings.TrimSpace(topic) == "" {
		return articles
	}

	needle := strings.ToLower(topic)
	matched := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), needle) ||
			strings.Contains(strings.ToLower(a.Summary), needle) {
			matched = append(matched, a)
		}
	}
	return matched
}

// Get returns the article with the given ID from the current snapshot.
func (s *Service) Get(id string) (entity.Article, error) {
	for _, a := range s.List() {
		if a.ID == id {
			return a, nil
		}
	}
	return entity.Article{}, ErrArticleNotFound
}

// SpeechText returns the text to hand to the playback collaborator for an
// article. When content enhancement is enabled the full article text is
// fetched; any fetch failure degrades to the summary, so playback always
// has something to say.
func (s *Service) SpeechText(ctx context.Context, id string) (string, error) {
	a, err := s.Get(id)
	if err != nil {
		return "", err
	}

	if !s.contentEnabled {
		return a.Summary, nil
	}

	content, err := s.content.FetchContent(ctx, a.URL)
	if err != nil {
		s.logger.Warn("content fetch failed, using summary for speech",
			slog.String("article_id", a.ID),
			slog.String("url", a.URL),
			slog.Any("error", err))
		return a.Summary, nil
	}
	if strings.TrimSpace(content) == "" {
		return a.Summary, nil
	}
	return content, nil
}
