package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medfeed/internal/domain/entity"
	"medfeed/internal/observability/logging"
)

type stubScraper struct {
	mu      sync.Mutex
	entries map[string][]Entry
	errs    map[string]error
	block   chan struct{}
	calls   map[string]int
}

func (s *stubScraper) Scrape(ctx context.Context, source entity.Source) ([]Entry, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[source.ID]++
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}
	if err := s.errs[source.ID]; err != nil {
		return nil, err
	}
	return s.entries[source.ID], nil
}

type stubSelector struct {
	scraper SourceScraper
}

func (s *stubSelector) Select(entity.SourceKind) (SourceScraper, error) {
	return s.scraper, nil
}

func testSources(ids ...string) []entity.Source {
	out := make([]entity.Source, 0, len(ids))
	for _, id := range ids {
		out = append(out, entity.Source{
			ID:      id,
			Name:    id,
			BaseURL: "https://example.com/" + id,
			Kind:    entity.SourceKindHTML,
		})
	}
	return out
}

func newTestService(sources []entity.Source, scraper SourceScraper) *Service {
	return NewService(sources, &stubSelector{scraper: scraper}, NewState(), logging.NewTextLogger(), 4)
}

func TestRefresh_MergesAndSortsByTitle(t *testing.T) {
	scraper := &stubScraper{entries: map[string][]Entry{
		"one": {
			{Title: "Zeta trial results", URL: "https://example.com/z", Summary: "z"},
			{Title: "Midline study", URL: "https://example.com/m", Summary: "m"},
		},
		"two": {
			{Title: "Alpha cohort", URL: "https://example.com/a", Summary: "a"},
		},
	}}
	svc := newTestService(testSources("one", "two"), scraper)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Articles, 3)
	assert.Equal(t, "Alpha cohort", snap.Articles[0].Title)
	assert.Equal(t, "Midline study", snap.Articles[1].Title)
	assert.Equal(t, "Zeta trial results", snap.Articles[2].Title)
	assert.Empty(t, snap.Failures)
}

func TestRefresh_AssignsIdentityAndSource(t *testing.T) {
	scraper := &stubScraper{entries: map[string][]Entry{
		"one": {{Title: "A", URL: "https://example.com/a", Summary: "s"}},
	}}
	svc := newTestService(testSources("one"), scraper)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Articles, 1)
	art := snap.Articles[0]
	assert.NotEmpty(t, art.ID)
	assert.Equal(t, "one", art.SourceID)
	assert.False(t, art.FetchedAt.IsZero())
}

func TestRefresh_AbsorbsPartialFailures(t *testing.T) {
	scraper := &stubScraper{
		entries: map[string][]Entry{
			"ok": {{Title: "A", URL: "https://example.com/a", Summary: "s"}},
		},
		errs: map[string]error{
			"down": ErrFetchFailed,
		},
	}
	svc := newTestService(testSources("ok", "down"), scraper)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Articles, 1)
	require.Len(t, snap.Failures, 1)
	assert.Equal(t, "down", snap.Failures[0].SourceID)
	assert.Equal(t, "fetch", snap.Failures[0].Kind)
	assert.NotEmpty(t, snap.Failures[0].Message)
}

func TestRefresh_AllFailedPreservesPreviousSnapshot(t *testing.T) {
	scraper := &stubScraper{entries: map[string][]Entry{
		"one": {{Title: "Kept", URL: "https://example.com/k", Summary: "s"}},
	}}
	svc := newTestService(testSources("one"), scraper)

	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Articles, 1)

	scraper.mu.Lock()
	scraper.errs = map[string]error{"one": ErrBadStatus}
	scraper.mu.Unlock()

	snap, err := svc.Refresh(context.Background())
	assert.True(t, errors.Is(err, ErrAllSourcesFailed))

	// Previous articles stay current after a total failure, and the state
	// carries a readable failure message until the next successful cycle.
	require.Len(t, snap.Articles, 1)
	assert.Equal(t, "Kept", snap.Articles[0].Title)
	assert.Equal(t, snap.Articles, svc.State().Snapshot().Articles)
	assert.Contains(t, svc.State().LastError(), "all 1 sources failed")

	scraper.mu.Lock()
	scraper.errs = nil
	scraper.mu.Unlock()

	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, svc.State().LastError())
}

func TestRefresh_FailureKindClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "bad status", err: ErrBadStatus, want: "status"},
		{name: "decode failure", err: ErrDecodeFailure, want: "decode"},
		{name: "body too large", err: ErrBodyTooLarge, want: "decode"},
		{name: "fetch failure", err: ErrFetchFailed, want: "fetch"},
		{name: "unknown error", err: errors.New("boom"), want: "fetch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scraper := &stubScraper{errs: map[string]error{"one": tt.err}}
			svc := newTestService(testSources("one"), scraper)

			snap, err := svc.Refresh(context.Background())
			assert.True(t, errors.Is(err, ErrAllSourcesFailed))

			// The failure record still lands on the in-progress state even
			// though nothing was published; inspect via classify directly.
			assert.Equal(t, tt.want, classifyError(tt.err))
			assert.Empty(t, snap.Articles)
		})
	}
}

func TestRefresh_SecondConcurrentCallIsNoOp(t *testing.T) {
	block := make(chan struct{})
	scraper := &stubScraper{
		entries: map[string][]Entry{
			"one": {{Title: "A", URL: "https://example.com/a", Summary: "s"}},
		},
		block: block,
	}
	svc := newTestService(testSources("one"), scraper)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Refresh(context.Background())
		assert.NoError(t, err)
	}()

	// Wait until the first refresh is inside the scraper.
	require.Eventually(t, func() bool {
		scraper.mu.Lock()
		defer scraper.mu.Unlock()
		return scraper.calls["one"] == 1
	}, time.Second, time.Millisecond)

	_, err := svc.Refresh(context.Background())
	assert.True(t, errors.Is(err, ErrRefreshInProgress))

	close(block)
	<-done

	// The overlapping call must not have scraped a second time.
	scraper.mu.Lock()
	assert.Equal(t, 1, scraper.calls["one"])
	scraper.mu.Unlock()

	// A refresh after completion runs normally again.
	scraper.block = nil
	_, err = svc.Refresh(context.Background())
	assert.NoError(t, err)
}

func TestRefresh_PublishesToSubscribers(t *testing.T) {
	scraper := &stubScraper{entries: map[string][]Entry{
		"one": {{Title: "A", URL: "https://example.com/a", Summary: "s"}},
	}}
	svc := newTestService(testSources("one"), scraper)

	ch, cancel := svc.State().Subscribe()
	defer cancel()

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	select {
	case snap := <-ch:
		assert.Len(t, snap.Articles, 1)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered to subscriber")
	}
}
