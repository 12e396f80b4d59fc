// Package refresh implements the aggregation cycle: every registered source
// is fetched and scraped in parallel, per-source failures are absorbed into
// failure records, and the merged article list is published as one snapshot.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"medfeed/internal/domain/entity"
	"medfeed/internal/observability/metrics"
)

// Entry is one listing entry produced by a scraper: a resolved absolute
// link, its title, and the summary text extracted around the title block.
type Entry struct {
	Title   string
	URL     string
	Summary string
}

// SourceScraper fetches one source's listing and extracts its entries.
// Implementations enforce the per-source entry cap and drop entries with
// empty titles or unresolvable links before returning.
type SourceScraper interface {
	Scrape(ctx context.Context, source entity.Source) ([]Entry, error)
}

// ScraperSelector returns the scraper for a source kind.
type ScraperSelector interface {
	Select(kind entity.SourceKind) (SourceScraper, error)
}

// Service runs refresh cycles over the registered sources.
type Service struct {
	sources     []entity.Source
	scrapers    ScraperSelector
	state       *State
	logger      *slog.Logger
	parallelism int

	inFlight atomic.Bool
}

// NewService creates a refresh service. Parallelism bounds the number of
// sources fetched concurrently; values below 1 are clamped to 1.
func NewService(sources []entity.Source, scrapers ScraperSelector, state *State, logger *slog.Logger, parallelism int) *Service {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Service{
		sources:     sources,
		scrapers:    scrapers,
		state:       state,
		logger:      logger,
		parallelism: parallelism,
	}
}

// State returns the state store the service publishes to.
func (s *Service) State() *State {
	return s.state
}

// Refresh fetches all sources, merges their entries into articles, sorts
// them by title, and publishes the result as the new snapshot.
//
// Concurrency contract: only one refresh runs at a time. A call that finds
// another refresh in flight does no work and returns the current snapshot
// with ErrRefreshInProgress.
//
// Failure contract: individual source failures never abort the cycle; they
// become SourceFailure records on the published snapshot. Only when every
// source fails is nothing published, the previous snapshot stays current,
// and ErrAllSourcesFailed is returned.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.RecordRefreshCycle("skipped", 0)
		return s.state.Snapshot(), ErrRefreshInProgress
	}
	defer s.inFlight.Store(false)

	s.state.SetRefreshing(true)
	defer s.state.SetRefreshing(false)

	start := time.Now()
	s.logger.Info("refresh started", slog.Int("sources", len(s.sources)))

	var (
		mu       sync.Mutex
		articles []entity.Article
		failures []SourceFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for _, src := range s.sources {
		src := src
		g.Go(func() error {
			got, failure := s.refreshSource(gctx, src)
			mu.Lock()
			defer mu.Unlock()
			if failure != nil {
				failures = append(failures, *failure)
				return nil
			}
			articles = append(articles, got...)
			return nil
		})
	}

	// Workers only report through the shared slices, never through errors,
	// so Wait cannot fail here.
	_ = g.Wait()

	elapsed := time.Since(start)

	if len(failures) == len(s.sources) {
		metrics.RecordRefreshCycle("failure", elapsed)
		s.state.SetError(fmt.Sprintf("refresh failed: all %d sources failed", len(s.sources)))
		s.logger.Error("refresh failed for all sources",
			slog.Int("sources", len(s.sources)),
			slog.Duration("elapsed", elapsed))
		return s.state.Snapshot(), fmt.Errorf("refresh: %w", ErrAllSourcesFailed)
	}

	// Title order is the one guarantee consumers get; the per-source fetch
	// order is nondeterministic under the errgroup.
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].Title < articles[j].Title
	})

	snap := Snapshot{
		Articles:    articles,
		Failures:    failures,
		RefreshedAt: time.Now(),
	}
	s.state.Publish(snap)
	metrics.UpdateArticlesTotal(len(articles))

	result := "success"
	if len(failures) > 0 {
		result = "partial"
	}
	metrics.RecordRefreshCycle(result, elapsed)

	s.logger.Info("refresh completed",
		slog.Int("articles", len(articles)),
		slog.Int("failed_sources", len(failures)),
		slog.Duration("elapsed", elapsed))

	return s.state.Snapshot(), nil
}

// refreshSource fetches and scrapes a single source. It returns either the
// extracted articles or a failure record, never both.
func (s *Service) refreshSource(ctx context.Context, src entity.Source) ([]entity.Article, *SourceFailure) {
	start := time.Now()

	scraper, err := s.scrapers.Select(src.Kind)
	if err != nil {
		return nil, s.recordFailure(src, "extract", err, start)
	}

	entries, err := scraper.Scrape(ctx, src)
	if err != nil {
		return nil, s.recordFailure(src, classifyError(err), err, start)
	}

	now := time.Now()
	articles := make([]entity.Article, 0, len(entries))
	for _, e := range entries {
		articles = append(articles, entity.Article{
			ID:        uuid.NewString(),
			SourceID:  src.ID,
			Title:     e.Title,
			URL:       e.URL,
			Summary:   e.Summary,
			FetchedAt: now,
		})
	}

	metrics.RecordSourceRefresh(src.ID, time.Since(start))
	metrics.RecordArticlesExtracted(src.ID, len(articles))
	s.logger.Info("source refreshed",
		slog.String("source_id", src.ID),
		slog.Int("articles", len(articles)),
		slog.Duration("elapsed", time.Since(start)))

	return articles, nil
}

func (s *Service) recordFailure(src entity.Source, kind string, err error, start time.Time) *SourceFailure {
	metrics.RecordSourceRefreshError(src.ID, kind)
	s.logger.Warn("source refresh failed",
		slog.String("source_id", src.ID),
		slog.String("kind", kind),
		slog.Any("error", err),
		slog.Duration("elapsed", time.Since(start)))
	return &SourceFailure{
		SourceID:   src.ID,
		Kind:       kind,
		Message:    err.Error(),
		OccurredAt: time.Now(),
	}
}

// classifyError maps a scrape error onto a failure kind for metrics and
// failure records.
func classifyError(err error) string {
	switch {
	case errors.Is(err, ErrBadStatus):
		return "status"
	case errors.Is(err, ErrDecodeFailure), errors.Is(err, ErrBodyTooLarge):
		return "decode"
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrInvalidURL), errors.Is(err, ErrTooManyRedirects):
		return "fetch"
	default:
		return "fetch"
	}
}
