package relevance

import (
	"testing"

	"horse.fit/matwatch/internal/source"
	"horse.fit/matwatch/internal/watchlist"
)

func fullWatchlist() *watchlist.Watchlist {
	return &watchlist.Watchlist{
		Materials: []string{"LPG GAS"},
		Synonyms: map[string][]string{
			"LPG GAS": {"liquefied petroleum gas", "propane", "butane"},
		},
		BrandTerms:  []string{"cosmetics", "personal care"},
		RegionTerms: []string{"Uganda", "Kenya", "East Africa"},
		SupplyTerms: []string{"Suez Canal", "port congestion", "freight rates"},
		Ports:       []string{"Mombasa", "Rotterdam"},
	}
}

// Catalog-only watchlist: with every keyword table empty the score reduces to
// the base term match minus any penalty, which makes deltas exact.
func bareWatchlist(material string) *watchlist.Watchlist {
	return &watchlist.Watchlist{Materials: []string{material}}
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	s := NewScorer(fullWatchlist(), DefaultGenericPenalty)
	item := source.CandidateItem{
		Material: "LPG GAS",
		Title:    "Propane cargo delayed at Mombasa",
		Summary:  "Freight rates climb across East Africa.",
	}

	first := s.Score(item)
	second := s.Score(item)
	if first != second {
		t.Fatalf("expected identical scores, got %d then %d", first, second)
	}
	if first < 0 || first > 100 {
		t.Fatalf("score out of range: %d", first)
	}
}

func TestScoreSynonymMatchWithBoostsClampsTo100(t *testing.T) {
	t.Parallel()

	s := NewScorer(fullWatchlist(), DefaultGenericPenalty)
	item := source.CandidateItem{
		Material: "LPG GAS",
		Title:    "Propane prices jump 15% as Suez Canal congestion disrupts LPG shipments to East Africa",
	}

	if got := s.Score(item); got != 100 {
		t.Fatalf("expected clamped score 100, got %d", got)
	}
}

func TestScoreGenericTopicPenaltyIsExactly12(t *testing.T) {
	t.Parallel()

	s := NewScorer(bareWatchlist("COPPER"), DefaultGenericPenalty)

	clean := s.Score(source.CandidateItem{Material: "COPPER", Title: "Copper prices climb"})
	tainted := s.Score(source.CandidateItem{Material: "COPPER", Title: "Copper prices climb lottery"})

	if clean != 100 {
		t.Fatalf("expected full token-set match to score 100, got %d", clean)
	}
	if clean-tainted != 12 {
		t.Fatalf("expected penalty of exactly 12, got %d -> %d", clean, tainted)
	}
}

func TestScoreClampsToZero(t *testing.T) {
	t.Parallel()

	// "zinc" and "lottery" share no characters, so the base token-set ratio is
	// exactly 0 and the penalty drives the raw score negative.
	s := NewScorer(bareWatchlist("ZINC"), DefaultGenericPenalty)
	item := source.CandidateItem{Material: "ZINC", Title: "lottery"}

	if got := s.Score(item); got != 0 {
		t.Fatalf("expected score clamped to 0, got %d", got)
	}
}

func TestScoreMissingFieldsTreatedAsEmpty(t *testing.T) {
	t.Parallel()

	s := NewScorer(fullWatchlist(), DefaultGenericPenalty)
	got := s.Score(source.CandidateItem{Material: "LPG GAS"})
	if got < 0 || got > 100 {
		t.Fatalf("score out of range for empty item: %d", got)
	}
}

func TestScoreConfigurablePenalty(t *testing.T) {
	t.Parallel()

	s := NewScorer(bareWatchlist("COPPER"), 30)

	clean := s.Score(source.CandidateItem{Material: "COPPER", Title: "Copper exports steady"})
	tainted := s.Score(source.CandidateItem{Material: "COPPER", Title: "Copper exports steady gossip"})
	if clean-tainted != 30 {
		t.Fatalf("expected configured penalty of 30, got %d -> %d", clean, tainted)
	}
}
