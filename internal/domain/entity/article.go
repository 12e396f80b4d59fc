// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article and Source, along with
// their validation rules and domain-specific errors.
package entity

import "time"

// Article represents one extracted listing entry.
// It is created once per successful extraction and never mutated afterwards;
// the whole set is replaced wholesale on the next refresh cycle.
type Article struct {
	ID        string // generated at creation, used for identity only
	SourceID  string
	Title     string
	URL       string
	Summary   string
	FetchedAt time.Time
}
