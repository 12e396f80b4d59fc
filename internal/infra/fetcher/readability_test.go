package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medfeed/internal/usecase/refresh"
)

func testContentConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Enabled:        true,
		Timeout:        5 * time.Second,
		MaxBodySize:    1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: false, // httptest listens on loopback
	}
}

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Statin therapy outcomes</title></head>
<body>
<article>
<h1>Statin therapy outcomes</h1>
<p>A randomized controlled trial of statin therapy in elderly patients showed a significant reduction in cardiovascular events over five years of follow-up.</p>
<p>Secondary endpoints included all-cause mortality and incidence of myopathy, neither of which differed between arms.</p>
<p>The authors conclude that treatment benefit persists beyond age 75 and recommend revisiting current guideline age cutoffs.</p>
</article>
</body>
</html>`

func TestFetchContent_ExtractsArticleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	f := NewReadabilityFetcher(testContentConfig())
	content, err := f.FetchContent(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, content, "randomized controlled trial")
	assert.NotContains(t, content, "<p>")
}

func TestFetchContent_ParagraphFallback(t *testing.T) {
	// Minimal page with no article structure Readability can score.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>only paragraph here</p></body></html>`))
	}))
	defer server.Close()

	f := NewReadabilityFetcher(testContentConfig())
	content, err := f.FetchContent(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, content, "only paragraph here")
}

func TestFetchContent_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div>no paragraphs</div></body></html>`))
	}))
	defer server.Close()

	f := NewReadabilityFetcher(testContentConfig())
	_, err := f.FetchContent(context.Background(), server.URL)

	assert.Error(t, err)
}

func TestFetchContent_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewReadabilityFetcher(testContentConfig())
	_, err := f.FetchContent(context.Background(), server.URL)

	assert.True(t, errors.Is(err, refresh.ErrBadStatus))
}

func TestFetchContent_RedirectLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	cfg := testContentConfig()
	cfg.MaxRedirects = 2
	f := NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), server.URL)
	assert.True(t, errors.Is(err, refresh.ErrTooManyRedirects))
}

func TestFetchContent_OversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>"))
		for i := 0; i < 5000; i++ {
			_, _ = w.Write([]byte("padding "))
		}
		_, _ = w.Write([]byte("</p></body></html>"))
	}))
	defer server.Close()

	cfg := testContentConfig()
	cfg.MaxBodySize = 2048
	f := NewReadabilityFetcher(cfg)

	_, err := f.FetchContent(context.Background(), server.URL)
	assert.True(t, errors.Is(err, refresh.ErrBodyTooLarge))
}

func TestFetchContent_InvalidScheme(t *testing.T) {
	f := NewReadabilityFetcher(testContentConfig())
	_, err := f.FetchContent(context.Background(), "file:///etc/passwd")

	assert.True(t, errors.Is(err, refresh.ErrInvalidURL))
}
