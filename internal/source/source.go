package source

import "context"

// CandidateItem is one retrieved news unit, unscored. Adapters create it; the
// relevance scorer consumes it.
type CandidateItem struct {
	Material     string
	QueryVariant string
	Title        string
	URL          string
	PublishedRaw string
	Source       string
	Summary      string
}

// Adapter retrieves candidate items for one material from one external source.
// Queries arrive pre-expanded (canonical name first, then synonyms); how an
// adapter combines them with source-specific context terms is its own concern.
// Adapters must not propagate retrieval failures: a failed query yields no
// items and a log line, and the returned error is reserved for context
// cancellation.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, material string, queries []string) ([]CandidateItem, error)
}
