package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"horse.fit/matwatch/internal/source"
)

// DefaultNearDupThreshold is the token-set similarity at or above which two
// titles are treated as the same story.
const DefaultNearDupThreshold = 92

// Deduplicator drops repeated stories across the whole candidate set in a
// single first-seen-wins pass. A candidate is a duplicate when its
// URL+title fingerprint was already seen, or when its title is
// near-identical to any previously kept title.
type Deduplicator struct {
	threshold int
}

func NewDeduplicator(threshold int) *Deduplicator {
	if threshold < 1 || threshold > 100 {
		threshold = DefaultNearDupThreshold
	}
	return &Deduplicator{threshold: threshold}
}

func (d *Deduplicator) Deduplicate(items []source.CandidateItem) []source.CandidateItem {
	seen := make(map[string]struct{}, len(items))
	kept := make([]source.CandidateItem, 0, len(items))
	titles := make([]string, 0, len(items))

	for _, item := range items {
		fp := fingerprint(item.URL, item.Title)
		if _, dup := seen[fp]; dup {
			continue
		}

		title := strings.ToLower(item.Title)
		if d.nearDuplicate(title, titles) {
			seen[fp] = struct{}{}
			continue
		}

		seen[fp] = struct{}{}
		titles = append(titles, title)
		kept = append(kept, item)
	}
	return kept
}

func (d *Deduplicator) nearDuplicate(title string, kept []string) bool {
	for _, prev := range kept {
		if fuzzy.TokenSetRatio(title, prev) >= d.threshold {
			return true
		}
	}
	return false
}

func fingerprint(url, title string) string {
	sum := sha256.Sum256([]byte(url + title))
	return hex.EncodeToString(sum[:])
}
