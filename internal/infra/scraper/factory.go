package scraper

import (
	"fmt"
	"log/slog"

	"medfeed/internal/domain/entity"
	"medfeed/internal/usecase/refresh"
)

// Factory selects the scraper for a source kind.
type Factory struct {
	scrapers map[entity.SourceKind]refresh.SourceScraper
}

// NewFactory wires the listing and RSS scrapers over one shared page source.
func NewFactory(pages PageSource, logger *slog.Logger) *Factory {
	return &Factory{
		scrapers: map[entity.SourceKind]refresh.SourceScraper{
			entity.SourceKindHTML: NewListingScraper(pages, logger),
			entity.SourceKindRSS:  NewRSSScraper(pages, logger),
		},
	}
}

// Select implements refresh.ScraperSelector.
func (f *Factory) Select(kind entity.SourceKind) (refresh.SourceScraper, error) {
	if kind == "" {
		kind = entity.SourceKindHTML
	}
	scraper, ok := f.scrapers[kind]
	if !ok {
		return nil, fmt.Errorf("no scraper registered for source kind %q", kind)
	}
	return scraper, nil
}
