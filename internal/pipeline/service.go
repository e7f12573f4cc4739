package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/matwatch/internal/globaltime"
	"horse.fit/matwatch/internal/source"
	"horse.fit/matwatch/internal/watchlist"
)

const pinnedLabel = "Pinned"

// PinnedFallbackTitle is used when a pinned page cannot be retrieved or
// yields no usable title.
const PinnedFallbackTitle = "Pinned: External insight"

// Scorer rates a candidate item from 0 to 100.
type Scorer interface {
	Score(item source.CandidateItem) int
}

// PinnedFetcher resolves a pinned URL to a display title and summary.
type PinnedFetcher interface {
	Fetch(ctx context.Context, url string) (title, summary string, err error)
}

// Record is one row of a finished run: a scored, deduplicated story with its
// timestamp already normalized to naive local time.
type Record struct {
	Material     string
	QueryVariant string
	Source       string
	Title        string
	Summary      string
	URL          string
	Published    time.Time
	Relevance    int
}

// RunStats counts what happened to candidates between retrieval and the final
// record set.
type RunStats struct {
	Fetched    int
	Duplicates int
	BelowFloor int
	Kept       int
	Pinned     int
}

// RunResult is the outcome of one scan: the ordered records plus counters and
// the run's reference timestamp.
type RunResult struct {
	Records  []Record
	Stats    RunStats
	RunStart time.Time
}

// Deps carries the collaborators a Service needs; all fields are required
// except Pinned, which may be nil when no pinned URLs are configured.
type Deps struct {
	Adapters     []source.Adapter
	Scorer       Scorer
	Pinned       PinnedFetcher
	Dedup        *Deduplicator
	Location     *time.Location
	MinRelevance int
}

// Service orchestrates one scan: expand queries per material, fetch from every
// adapter, score and apply the relevance floor, deduplicate the surviving
// stories globally, normalize timestamps, append pinned signals, and order the
// result. The floor runs before dedup so a weak early copy of a story can
// never suppress a strong later one.
type Service struct {
	deps   Deps
	logger zerolog.Logger
}

func NewService(deps Deps, logger zerolog.Logger) *Service {
	if deps.Dedup == nil {
		deps.Dedup = NewDeduplicator(DefaultNearDupThreshold)
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Service{deps: deps, logger: logger}
}

// Run executes one full scan over the watchlist. The only error it returns is
// context cancellation; per-source retrieval failures are logged and absorbed
// by the adapters so one broken source never sinks a run.
func (s *Service) Run(ctx context.Context, watch *watchlist.Watchlist) (*RunResult, error) {
	runStart := stripZone(globaltime.In(s.deps.Location))

	var candidates []source.CandidateItem
	for _, material := range watch.Materials {
		queries := watch.ExpandQueries(material)
		for _, adapter := range s.deps.Adapters {
			items, err := adapter.Fetch(ctx, material, queries)
			if err != nil {
				// Adapters absorb their own retrieval failures; an error
				// reaching here is either cancellation or a broken adapter,
				// and only the former may abort the run.
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.logger.Warn().
					Err(err).
					Str("source", adapter.Name()).
					Str("material", material).
					Msg("source failed; continuing with remaining sources")
				continue
			}
			candidates = append(candidates, items...)
		}
	}

	stats := RunStats{Fetched: len(candidates)}

	// Score and floor first; dedup sees only surviving stories, so a weak
	// early copy cannot shadow a strong near-duplicate.
	scores := make(map[string]int, len(candidates))
	survivors := make([]source.CandidateItem, 0, len(candidates))
	for _, item := range candidates {
		score := s.deps.Scorer.Score(item)
		if score < s.deps.MinRelevance {
			stats.BelowFloor++
			continue
		}
		scores[fingerprint(item.URL, item.Title)] = score
		survivors = append(survivors, item)
	}

	deduped := s.deps.Dedup.Deduplicate(survivors)
	stats.Duplicates = len(survivors) - len(deduped)

	records := make([]Record, 0, len(deduped)+len(watch.Pinned))
	for _, item := range deduped {
		published, ok := NormalizeDate(item.PublishedRaw, s.deps.Location)
		if !ok {
			published = runStart
		}

		records = append(records, Record{
			Material:     item.Material,
			QueryVariant: item.QueryVariant,
			Source:       item.Source,
			Title:        item.Title,
			Summary:      item.Summary,
			URL:          item.URL,
			Published:    published,
			Relevance:    scores[fingerprint(item.URL, item.Title)],
		})
	}
	stats.Kept = len(records)

	pinned := s.pinnedRecords(ctx, watch.Pinned, runStart)
	stats.Pinned = len(pinned)
	records = append(records, pinned...)

	sortRecords(records)

	s.logger.Info().
		Int("fetched", stats.Fetched).
		Int("duplicates", stats.Duplicates).
		Int("below_floor", stats.BelowFloor).
		Int("kept", stats.Kept).
		Int("pinned", stats.Pinned).
		Msg("scan finished")

	return &RunResult{Records: records, Stats: stats, RunStart: runStart}, nil
}

// pinnedRecords resolves each configured pinned URL into a full-score record.
// Pinned signals bypass the relevance floor and carry the run timestamp.
func (s *Service) pinnedRecords(ctx context.Context, urls []string, runStart time.Time) []Record {
	if len(urls) == 0 {
		return nil
	}

	records := make([]Record, 0, len(urls))
	for _, url := range urls {
		title, summary := PinnedFallbackTitle, ""
		if s.deps.Pinned != nil {
			fetchedTitle, fetchedSummary, err := s.deps.Pinned.Fetch(ctx, url)
			if err != nil {
				s.logger.Warn().Err(err).Str("url", url).Msg("pinned page retrieval failed; using fallback title")
			} else {
				if fetchedTitle != "" {
					title = fetchedTitle
				}
				summary = fetchedSummary
			}
		}

		records = append(records, Record{
			Material:     watchlist.MultiGlobalMaterial,
			QueryVariant: pinnedLabel,
			Source:       pinnedLabel,
			Title:        title,
			Summary:      summary,
			URL:          url,
			Published:    runStart,
			Relevance:    100,
		})
	}
	return records
}

// sortRecords orders records by material ascending, relevance descending, then
// published descending, keeping arrival order for full ties.
func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Material != b.Material {
			return a.Material < b.Material
		}
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		return a.Published.After(b.Published)
	})
}
