package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"medfeed/internal/domain/entity"
	"medfeed/internal/observability/metrics"
	"medfeed/internal/usecase/refresh"
)

// RSSScraper extracts entries from sources that expose an RSS or Atom feed.
// The same invariants apply as for HTML listings: at most
// maxEntriesPerSource entries in document order, empty titles and
// unresolvable links dropped, and a placeholder summary when the feed item
// carries no usable description.
type RSSScraper struct {
	pages  PageSource
	parser *gofeed.Parser
	logger *slog.Logger
}

// NewRSSScraper creates a scraper reading feed documents from the given
// fetcher.
func NewRSSScraper(pages PageSource, logger *slog.Logger) *RSSScraper {
	return &RSSScraper{
		pages:  pages,
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// Scrape fetches and parses the source's feed.
func (s *RSSScraper) Scrape(ctx context.Context, source entity.Source) ([]refresh.Entry, error) {
	body, err := s.pages.FetchPage(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetch feed for %s: %w", source.ID, err)
	}

	feed, err := s.parser.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed for %s: %v", refresh.ErrDecodeFailure, source.ID, err)
	}

	entries := make([]refresh.Entry, 0, maxEntriesPerSource)
	for _, item := range feed.Items {
		if len(entries) >= maxEntriesPerSource {
			break
		}

		title := strings.TrimSpace(stripMarkup(item.Title))
		if title == "" {
			metrics.RecordEntryDropped(source.ID, "empty_title")
			continue
		}

		link, err := source.ResolveLink(item.Link)
		if err != nil {
			metrics.RecordEntryDropped(source.ID, "bad_link")
			s.logger.Debug("dropping feed item with unresolvable link",
				slog.String("source_id", source.ID),
				slog.String("link", item.Link),
				slog.Any("error", err))
			continue
		}

		summary := strings.TrimSpace(stripMarkup(item.Description))
		if summary == "" {
			metrics.RecordSummaryFallback(source.ID)
			summary = placeholderSummary(title)
		}

		entries = append(entries, refresh.Entry{
			Title:   title,
			URL:     link,
			Summary: summary,
		})
	}

	return entries, nil
}
