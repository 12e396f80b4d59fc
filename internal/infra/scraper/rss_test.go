package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medfeed/internal/domain/entity"
	"medfeed/internal/observability/logging"
	"medfeed/internal/usecase/refresh"
)

func rssSource() entity.Source {
	return entity.Source{
		ID:      "jama",
		Name:    "JAMA",
		BaseURL: "https://jamanetwork.com/rss/site_3/67.xml",
		Kind:    entity.SourceKindRSS,
	}
}

func feedWithItems(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>JAMA Current Issue</title>` + items + `</channel></rss>`
}

func TestRSSScrape_ExtractsItems(t *testing.T) {
	body := feedWithItems(`
<item>
  <title>Sepsis bundle adherence</title>
  <link>https://jamanetwork.com/article/101</link>
  <description>&lt;p&gt;Adherence improved mortality in a multicenter study.&lt;/p&gt;</description>
</item>`)

	s := NewRSSScraper(&stubPages{body: body}, logging.NewTextLogger())
	entries, err := s.Scrape(context.Background(), rssSource())

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Sepsis bundle adherence", entries[0].Title)
	assert.Equal(t, "https://jamanetwork.com/article/101", entries[0].URL)
	assert.Equal(t, "Adherence improved mortality in a multicenter study.", entries[0].Summary)
}

func TestRSSScrape_CapsAtTenItems(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, `<item><title>Item %02d</title><link>https://jamanetwork.com/a/%d</link></item>`, i, i)
	}

	s := NewRSSScraper(&stubPages{body: feedWithItems(b.String())}, logging.NewTextLogger())
	entries, err := s.Scrape(context.Background(), rssSource())

	require.NoError(t, err)
	assert.Len(t, entries, maxEntriesPerSource)
	assert.Equal(t, "Item 00", entries[0].Title)
}

func TestRSSScrape_MissingDescriptionGetsPlaceholder(t *testing.T) {
	body := feedWithItems(`<item><title>Bare item</title><link>https://jamanetwork.com/bare</link></item>`)

	s := NewRSSScraper(&stubPages{body: body}, logging.NewTextLogger())
	entries, err := s.Scrape(context.Background(), rssSource())

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, placeholderSummary("Bare item"), entries[0].Summary)
}

func TestRSSScrape_DropsItemWithoutResolvableLink(t *testing.T) {
	body := feedWithItems(`
<item><title>No link</title></item>
<item><title>Good</title><link>https://jamanetwork.com/good</link></item>`)

	s := NewRSSScraper(&stubPages{body: body}, logging.NewTextLogger())
	entries, err := s.Scrape(context.Background(), rssSource())

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Good", entries[0].Title)
}

func TestRSSScrape_MalformedFeedIsDecodeFailure(t *testing.T) {
	s := NewRSSScraper(&stubPages{body: "<html>not a feed</html>"}, logging.NewTextLogger())

	_, err := s.Scrape(context.Background(), rssSource())
	assert.True(t, errors.Is(err, refresh.ErrDecodeFailure))
}

func TestRSSScrape_FetchErrorPropagates(t *testing.T) {
	s := NewRSSScraper(&stubPages{err: refresh.ErrFetchFailed}, logging.NewTextLogger())

	_, err := s.Scrape(context.Background(), rssSource())
	assert.True(t, errors.Is(err, refresh.ErrFetchFailed))
}
