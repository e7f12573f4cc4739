package relevance

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"horse.fit/matwatch/internal/source"
	"horse.fit/matwatch/internal/watchlist"
)

const (
	brandBoostWeight  = 0.6
	regionBoostWeight = 0.35
	globalBoostWeight = 0.35

	DefaultGenericPenalty = 12
)

// genericTopics are off-topic words that attract the fixed penalty.
var genericTopics = []string{"celebrity", "football", "movie", "lottery", "gossip"}

// Scorer computes a deterministic 0-100 relevance score for a candidate item.
// It holds only read-only watchlist tables and is safe for concurrent use.
type Scorer struct {
	watch   *watchlist.Watchlist
	penalty int
}

func NewScorer(watch *watchlist.Watchlist, penalty int) *Scorer {
	if penalty < 0 {
		penalty = DefaultGenericPenalty
	}
	return &Scorer{watch: watch, penalty: penalty}
}

// Score blends four signals over the lowercased title+summary blob:
// the best token-set match against the material's name and synonyms, weighted
// partial matches against the brand, region, and supply/port keyword tables,
// and a flat penalty for generic off-topic words. The result is truncated to
// an integer and clamped to [0,100].
func (s *Scorer) Score(item source.CandidateItem) int {
	blob := strings.ToLower(strings.TrimSpace(item.Title + " " + item.Summary))

	base := 0
	for _, term := range s.watch.ExpandQueries(item.Material) {
		if r := fuzzy.TokenSetRatio(strings.ToLower(term), blob); r > base {
			base = r
		}
	}

	brandBoost := brandBoostWeight * maxPartial(s.watch.BrandTerms, blob)
	regionBoost := regionBoostWeight * maxPartial(s.watch.RegionTerms, blob)
	globalBoost := globalBoostWeight * maxPartial(s.watch.GlobalHints(), blob)

	penalty := 0
	if containsAny(blob, genericTopics) {
		penalty = s.penalty
	}

	raw := float64(base) + brandBoost + regionBoost + globalBoost - float64(penalty)
	switch {
	case raw < 0:
		return 0
	case raw > 100:
		return 100
	default:
		return int(raw)
	}
}

func maxPartial(terms []string, blob string) float64 {
	best := 0
	for _, term := range terms {
		if r := fuzzy.PartialRatio(strings.ToLower(term), blob); r > best {
			best = r
		}
	}
	return float64(best)
}

func containsAny(blob string, words []string) bool {
	for _, w := range words {
		if strings.Contains(blob, w) {
			return true
		}
	}
	return false
}
