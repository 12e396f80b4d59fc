// Package scraper turns fetched source documents into listing entries.
// The HTML listing scraper works by pattern scan over the raw markup rather
// than a structural parse: the source pages have no stable feed, and the
// placeholder fallback depends on match failure being tolerated, so markup
// that fails to match yields fewer entries, never an error.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"medfeed/internal/domain/entity"
	"medfeed/internal/observability/metrics"
	"medfeed/internal/usecase/refresh"
)

const (
	// maxEntriesPerSource bounds extraction per source per fetch. A hard
	// cap against unbounded or malicious input, not a page-size guess.
	maxEntriesPerSource = 10

	// summaryWindow is how many bytes before and after a title match are
	// searched for a summary paragraph. Bounding the window keeps cost
	// constant per entry instead of rescanning the whole document.
	summaryWindow = 1500
)

var (
	// titleBlockPattern matches an element carrying a title class marker
	// containing an anchor, capturing the href value and the anchor's inner
	// text. Attribute order inside the anchor may vary; nested markup in
	// the inner text is stripped later.
	titleBlockPattern = regexp.MustCompile(`(?is)<[a-z][a-z0-9]*\s+[^>]*class\s*=\s*"[^"]*title[^"]*"[^>]*>.*?<a\s+[^>]*href\s*=\s*"([^"]*)"[^>]*>(.*?)</a>`)

	// paragraphPattern matches the first paragraph-like block in a window.
	paragraphPattern = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)

	// tagPattern strips any remaining markup from captured text.
	tagPattern = regexp.MustCompile(`(?s)<[^>]+>`)
)

// PageSource fetches one source's raw document text.
type PageSource interface {
	FetchPage(ctx context.Context, source entity.Source) (string, error)
}

// ListingScraper extracts entries from HTML listing pages.
type ListingScraper struct {
	pages  PageSource
	logger *slog.Logger
}

// NewListingScraper creates a scraper reading pages from the given fetcher.
func NewListingScraper(pages PageSource, logger *slog.Logger) *ListingScraper {
	return &ListingScraper{pages: pages, logger: logger}
}

// Scrape fetches the source's listing page and extracts its entries.
// Fetch errors propagate; extraction itself never fails. Entries with an
// empty trimmed title or an unresolvable link are dropped silently.
func (s *ListingScraper) Scrape(ctx context.Context, source entity.Source) ([]refresh.Entry, error) {
	body, err := s.pages.FetchPage(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetch listing for %s: %w", source.ID, err)
	}
	return s.extract(body, source), nil
}

// extract runs the title-block scan over the document, bounded to the first
// maxEntriesPerSource matches in document order.
func (s *ListingScraper) extract(body string, source entity.Source) []refresh.Entry {
	matches := titleBlockPattern.FindAllStringSubmatchIndex(body, maxEntriesPerSource)

	entries := make([]refresh.Entry, 0, len(matches))
	for _, m := range matches {
		// m[0]:m[1] is the whole match span, m[2]:m[3] the href value,
		// m[4]:m[5] the anchor inner text.
		href := body[m[2]:m[3]]
		title := strings.TrimSpace(stripMarkup(body[m[4]:m[5]]))

		if title == "" {
			metrics.RecordEntryDropped(source.ID, "empty_title")
			s.logger.Debug("dropping entry with empty title",
				slog.String("source_id", source.ID),
				slog.String("href", href))
			continue
		}

		link, err := source.ResolveLink(href)
		if err != nil {
			metrics.RecordEntryDropped(source.ID, "bad_link")
			s.logger.Debug("dropping entry with unresolvable link",
				slog.String("source_id", source.ID),
				slog.String("href", href),
				slog.Any("error", err))
			continue
		}

		entries = append(entries, refresh.Entry{
			Title:   title,
			URL:     link,
			Summary: resolveSummary(body, m[0], m[1], title, source.ID),
		})
	}

	return entries
}

// resolveSummary searches a fixed window around the title match for the
// first paragraph block and returns its stripped text. It never fails: when
// no usable paragraph exists in the window the deterministic placeholder is
// returned so every entry carries non-empty display text.
func resolveSummary(body string, matchStart, matchEnd int, title, sourceID string) string {
	start := matchStart - summaryWindow
	if start < 0 {
		start = 0
	}
	end := matchEnd + summaryWindow
	if end > len(body) {
		end = len(body)
	}

	if m := paragraphPattern.FindStringSubmatch(body[start:end]); m != nil {
		summary := strings.TrimSpace(stripMarkup(m[1]))
		if summary != "" {
			return summary
		}
	}

	metrics.RecordSummaryFallback(sourceID)
	return placeholderSummary(title)
}

// placeholderSummary is the fallback summary for entries with no nearby
// paragraph. It includes the title so playback and display stay meaningful.
func placeholderSummary(title string) string {
	return fmt.Sprintf("No summary available for %s.", title)
}

// stripMarkup removes markup tags and the non-breaking-space entity from a
// captured fragment.
func stripMarkup(fragment string) string {
	text := tagPattern.ReplaceAllString(fragment, "")
	return strings.ReplaceAll(text, "&nbsp;", " ")
}
