package watchlist

import (
	"fmt"
	"os"
	"strings"

	watchlistschema "horse.fit/matwatch/schema"
)

// MultiGlobalMaterial labels records that are not tied to a single tracked
// material, such as pinned signals.
const MultiGlobalMaterial = "MULTI / GLOBAL"

// Watchlist is the immutable per-run configuration: the ordered material
// catalog, the synonym map, and the keyword tables the scorer consumes. It is
// built once at startup and passed explicitly to the components that need it.
type Watchlist struct {
	Materials   []string
	Synonyms    map[string][]string
	BrandTerms  []string
	RegionTerms []string
	SupplyTerms []string
	Ports       []string
	Pinned      []string
}

// Load reads a watchlist file and validates it against the embedded v1 schema.
func Load(path string) (*Watchlist, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist file %q: %w", path, err)
	}

	validated, err := watchlistschema.ValidateWatchlistPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("validate watchlist file %q: %w", path, err)
	}

	return FromSchema(validated), nil
}

// FromSchema converts a validated schema payload into a Watchlist value.
func FromSchema(validated *watchlistschema.Watchlist) *Watchlist {
	if validated == nil {
		return &Watchlist{}
	}

	synonyms := make(map[string][]string, len(validated.Synonyms))
	for material, terms := range validated.Synonyms {
		synonyms[strings.TrimSpace(material)] = append([]string(nil), terms...)
	}

	return &Watchlist{
		Materials:   append([]string(nil), validated.Materials...),
		Synonyms:    synonyms,
		BrandTerms:  append([]string(nil), validated.BrandTerms...),
		RegionTerms: append([]string(nil), validated.RegionTerms...),
		SupplyTerms: append([]string(nil), validated.SupplyTerms...),
		Ports:       append([]string(nil), validated.Ports...),
		Pinned:      append([]string(nil), validated.Pinned...),
	}
}

// ExpandQueries returns the ordered query variants for a material: the
// canonical name first, then configured synonyms, with exact-string duplicates
// removed while preserving first occurrence.
func (w *Watchlist) ExpandQueries(material string) []string {
	queries := make([]string, 0, 1+len(w.Synonyms[material]))
	seen := make(map[string]struct{}, 1+len(w.Synonyms[material]))

	for _, q := range append([]string{material}, w.Synonyms[material]...) {
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}
	return queries
}

// GlobalHints combines upstream supply keywords with tracked port names; the
// scorer treats the union as one boost category.
func (w *Watchlist) GlobalHints() []string {
	hints := make([]string, 0, len(w.SupplyTerms)+len(w.Ports))
	hints = append(hints, w.SupplyTerms...)
	hints = append(hints, w.Ports...)
	return hints
}
