// Package registry holds the fixed set of content sources the pipeline
// fetches from. The set is declared at compile time; adding a source means
// adding an entry here and rebuilding.
package registry

import "medfeed/internal/domain/entity"

// sources is the canonical source list. Order here is irrelevant to
// consumers because the aggregator sorts merged articles by title.
var sources = []entity.Source{
	{
		ID:      "lancet",
		Name:    "The Lancet",
		BaseURL: "https://www.thelancet.com/journals/lancet/newarticles",
		Kind:    entity.SourceKindHTML,
	},
	{
		ID:      "bmj",
		Name:    "BMJ",
		BaseURL: "https://www.bmj.com/latest",
		Kind:    entity.SourceKindHTML,
	},
	{
		ID:      "nejm",
		Name:    "New England Journal of Medicine",
		BaseURL: "https://www.nejm.org/recent-articles",
		Kind:    entity.SourceKindHTML,
	},
	{
		ID:      "jama",
		Name:    "JAMA",
		BaseURL: "https://jamanetwork.com/rss/site_3/67.xml",
		Kind:    entity.SourceKindRSS,
	},
}

// All returns a copy of the registered sources so callers cannot mutate
// the registry.
func All() []entity.Source {
	out := make([]entity.Source, len(sources))
	copy(out, sources)
	return out
}

// ByID returns the source with the given ID.
func ByID(id string) (entity.Source, error) {
	for _, s := range sources {
		if s.ID == id {
			return s, nil
		}
	}
	return entity.Source{}, entity.ErrNotFound
}
