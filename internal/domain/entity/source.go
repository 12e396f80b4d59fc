package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// SourceKind selects how a source's listing is retrieved and parsed.
type SourceKind string

const (
	// SourceKindHTML sources serve an HTML listing page scanned with the
	// pattern-based listing scraper.
	SourceKindHTML SourceKind = "html"

	// SourceKindRSS sources expose an RSS/Atom feed parsed with gofeed.
	SourceKindRSS SourceKind = "rss"
)

// Source represents one fixed content origin the pipeline fetches from.
// Sources are declared at compile time and never mutated; the BaseURL is
// used both to fetch the listing and to resolve relative article links.
type Source struct {
	ID      string
	Name    string
	BaseURL string
	Kind    SourceKind
}

// Validate validates the Source entity fields.
func (s *Source) Validate() error {
	if s.ID == "" {
		return &ValidationError{Field: "id", Message: "is required"}
	}
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if err := ValidateURL(s.BaseURL); err != nil {
		return fmt.Errorf("validate base URL: %w", err)
	}

	// Kindが空の場合はHTMLとみなす（後方互換性）
	if s.Kind == "" {
		s.Kind = SourceKindHTML
	}
	switch s.Kind {
	case SourceKindHTML, SourceKindRSS:
		return nil
	default:
		return &ValidationError{
			Field:   "kind",
			Message: fmt.Sprintf("must be %q or %q", SourceKindHTML, SourceKindRSS),
		}
	}
}

// ResolveLink resolves an article href against the source's base URL.
// Relative paths, absolute paths, and already-absolute hrefs all resolve
// to an absolute http(s) address. Anything else is an error so the caller
// can drop the entry.
func (s *Source) ResolveLink(href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", &ValidationError{Field: "href", Message: "is required"}
	}

	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", &ValidationError{Field: "href", Message: "must resolve to http or https"}
	}
	if resolved.Host == "" {
		return "", &ValidationError{Field: "href", Message: "must resolve to a host"}
	}
	return resolved.String(), nil
}
