package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medfeed/internal/domain/entity"
	"medfeed/internal/observability/logging"
	"medfeed/internal/usecase/refresh"
)

type stubPages struct {
	body string
	err  error
}

func (s *stubPages) FetchPage(context.Context, entity.Source) (string, error) {
	return s.body, s.err
}

func listingSource() entity.Source {
	return entity.Source{
		ID:      "lancet",
		Name:    "The Lancet",
		BaseURL: "https://www.thelancet.com/journals/lancet/newarticles",
		Kind:    entity.SourceKindHTML,
	}
}

func scrapeListing(t *testing.T, body string) []refresh.Entry {
	t.Helper()
	s := NewListingScraper(&stubPages{body: body}, logging.NewTextLogger())
	entries, err := s.Scrape(context.Background(), listingSource())
	require.NoError(t, err)
	return entries
}

func TestScrape_ExtractsTitleLinkAndSummary(t *testing.T) {
	body := `<html><body>
<div class="article-title"><a href="/article/PIIS123">Hypertension in pregnancy</a></div>
<p>A cohort study of 12,000 pregnancies found elevated risk of preeclampsia.</p>
</body></html>`

	entries := scrapeListing(t, body)

	want := []refresh.Entry{{
		Title:   "Hypertension in pregnancy",
		URL:     "https://www.thelancet.com/article/PIIS123",
		Summary: "A cohort study of 12,000 pregnancies found elevated risk of preeclampsia.",
	}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestScrape_CapsAtTenEntries(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, `<h3 class="title"><a href="/a/%d">Article %02d</a></h3>`, i, i)
	}

	entries := scrapeListing(t, b.String())

	assert.Len(t, entries, maxEntriesPerSource)
	// Document order is preserved within the source.
	assert.Equal(t, "Article 00", entries[0].Title)
	assert.Equal(t, "Article 09", entries[9].Title)
}

func TestScrape_MalformedFragmentsYieldNoEntry(t *testing.T) {
	body := `
<h3 class="title"><a href="/first">First study</a></h3><hr>
<h3 class="title">no anchor at all</h3><hr>
<h3 class="title"><a href="/last">Last study</a></h3>`

	entries := scrapeListing(t, body)

	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	assert.Contains(t, titles, "First study")
	assert.Contains(t, titles, "Last study")
	assert.Len(t, entries, 2)
}

func TestScrape_DropsEmptyTitle(t *testing.T) {
	body := `
<h3 class="title"><a href="/empty">   </a></h3>
<h3 class="title"><a href="/tags"><span></span></a></h3>
<h3 class="title"><a href="/kept">Kept entry</a></h3>`

	entries := scrapeListing(t, body)

	require.Len(t, entries, 1)
	assert.Equal(t, "Kept entry", entries[0].Title)
}

func TestScrape_DropsUnresolvableLink(t *testing.T) {
	body := `
<h3 class="title"><a href="javascript:void(0)">Scripted</a></h3>
<h3 class="title"><a href="/real">Real entry</a></h3>`

	entries := scrapeListing(t, body)

	require.Len(t, entries, 1)
	assert.Equal(t, "Real entry", entries[0].Title)
}

func TestScrape_LinkResolutionForms(t *testing.T) {
	body := `
<h3 class="title"><a href="https://other.example.org/abs">Absolute URL</a></h3>
<h3 class="title"><a href="/rooted/path">Rooted path</a></h3>
<h3 class="title"><a href="sibling">Relative path</a></h3>`

	entries := scrapeListing(t, body)
	require.Len(t, entries, 3)

	assert.Equal(t, "https://other.example.org/abs", entries[0].URL)
	assert.Equal(t, "https://www.thelancet.com/rooted/path", entries[1].URL)
	assert.Equal(t, "https://www.thelancet.com/journals/lancet/sibling", entries[2].URL)
}

func TestScrape_StripsNestedMarkupAndEntities(t *testing.T) {
	body := `
<h3 class="title"><a href="/x"><em>Statins</em>&nbsp;and <b>outcomes</b></a></h3>
<p>Plain&nbsp;summary with <a href="/y">inline link</a> text.</p>`

	entries := scrapeListing(t, body)
	require.Len(t, entries, 1)

	assert.Equal(t, "Statins and outcomes", entries[0].Title)
	assert.Equal(t, "Plain summary with inline link text.", entries[0].Summary)
}

func TestScrape_AttributeOrderTolerated(t *testing.T) {
	body := `
<div data-track="1" class="promo-title-block" id="t1">
  <a rel="bookmark" href="/ordered" target="_blank">Attribute order</a>
</div>`

	entries := scrapeListing(t, body)
	require.Len(t, entries, 1)
	assert.Equal(t, "Attribute order", entries[0].Title)
	assert.Equal(t, "https://www.thelancet.com/ordered", entries[0].URL)
}

func TestScrape_PlaceholderWhenNoParagraphInWindow(t *testing.T) {
	padding := strings.Repeat("x", summaryWindow+100)
	body := `<h3 class="title"><a href="/far">Distant paragraph</a></h3>` +
		padding + `<p>too far away to count</p>`

	entries := scrapeListing(t, body)
	require.Len(t, entries, 1)

	assert.Equal(t, placeholderSummary("Distant paragraph"), entries[0].Summary)
	assert.Contains(t, entries[0].Summary, "Distant paragraph")
}

func TestScrape_ParagraphBeforeTitleIsInWindow(t *testing.T) {
	body := `<p>Leading paragraph before the block.</p>
<h3 class="title"><a href="/lead">Leading summary</a></h3>`

	entries := scrapeListing(t, body)
	require.Len(t, entries, 1)
	assert.Equal(t, "Leading paragraph before the block.", entries[0].Summary)
}

func TestScrape_EmptyParagraphFallsBackToPlaceholder(t *testing.T) {
	body := `<h3 class="title"><a href="/e">Empty para</a></h3><p>   <br/>   </p>`

	entries := scrapeListing(t, body)
	require.Len(t, entries, 1)
	assert.Equal(t, placeholderSummary("Empty para"), entries[0].Summary)
}

func TestScrape_NoMatchesYieldsEmptyNotError(t *testing.T) {
	s := NewListingScraper(&stubPages{body: "<html><body>nothing to see</body></html>"}, logging.NewTextLogger())

	entries, err := s.Scrape(context.Background(), listingSource())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScrape_FetchErrorPropagates(t *testing.T) {
	s := NewListingScraper(&stubPages{err: refresh.ErrBadStatus}, logging.NewTextLogger())

	_, err := s.Scrape(context.Background(), listingSource())
	assert.True(t, errors.Is(err, refresh.ErrBadStatus))
}

func TestResolveSummary_WindowClampsAtDocumentBounds(t *testing.T) {
	body := `<p>short doc</p>`

	// Match span wider than the document must not panic.
	summary := resolveSummary(body, 0, len(body), "t", "src")
	assert.Equal(t, "short doc", summary)
}

func TestPlaceholderSummary_Deterministic(t *testing.T) {
	a := placeholderSummary("COVID Update")
	b := placeholderSummary("COVID Update")

	assert.Equal(t, a, b)
	assert.Contains(t, a, "COVID Update")
}
