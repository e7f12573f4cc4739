package source

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/matwatch/internal/fetch"
	"horse.fit/matwatch/internal/globaltime"
	"horse.fit/matwatch/internal/textutil"
)

const (
	gdeltSourceTag  = "GDELT"
	gdeltEndpoint   = "https://api.gdeltproject.org/api/v2/doc/doc"
	gdeltMaxRecords = 60
	gdeltTimeLayout = "20060102150405"
)

type gdeltResponse struct {
	Articles []gdeltArticle `json:"articles"`
}

type gdeltArticle struct {
	Title            string `json:"title"`
	URL              string `json:"url"`
	SeenDate         string `json:"seendate"`
	PublishedDate    string `json:"publishedDate"`
	SeenDescription  string `json:"seendescription"`
	SourceCommonName string `json:"sourceCommonName"`
}

// GDELTAdapter issues full-text searches against the GDELT DOC 2.0 API,
// restricted to a rolling window of windowDays back from now in the configured
// local timezone. Beyond the expanded query variants it adds two fixed OR
// combinations of supply and regulatory keywords built from the canonical term.
type GDELTAdapter struct {
	client     *fetch.Client
	endpoint   string
	maxItems   int
	windowDays int
	loc        *time.Location
	logger     zerolog.Logger
}

func NewGDELTAdapter(client *fetch.Client, maxItems, windowDays int, loc *time.Location, logger zerolog.Logger) *GDELTAdapter {
	if maxItems < 1 {
		maxItems = 12
	}
	if windowDays < 1 {
		windowDays = 10
	}
	if loc == nil {
		loc = time.UTC
	}
	return &GDELTAdapter{
		client:     client,
		endpoint:   gdeltEndpoint,
		maxItems:   maxItems,
		windowDays: windowDays,
		loc:        loc,
		logger:     logger,
	}
}

func (a *GDELTAdapter) Name() string {
	return gdeltSourceTag
}

func (a *GDELTAdapter) Fetch(ctx context.Context, material string, queries []string) ([]CandidateItem, error) {
	now := globaltime.In(a.loc)
	start := now.AddDate(0, 0, -a.windowDays).Format(gdeltTimeLayout)
	end := now.Format(gdeltTimeLayout)

	items := make([]CandidateItem, 0, a.maxItems*len(queries))

	for _, query := range withContextQueries(queries) {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		params := url.Values{}
		params.Set("query", query)
		params.Set("mode", "ArtList")
		params.Set("maxrecords", strconv.Itoa(gdeltMaxRecords))
		params.Set("format", "json")
		params.Set("startdatetime", start)
		params.Set("enddatetime", end)

		body, err := a.client.Get(ctx, a.endpoint, params)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Str("source", gdeltSourceTag).
				Str("material", material).
				Str("query", query).
				Msg("search retrieval failed; skipping query")
			continue
		}

		var resp gdeltResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			a.logger.Warn().
				Err(err).
				Str("source", gdeltSourceTag).
				Str("query", query).
				Msg("search response parse failed; skipping query")
			continue
		}

		articles := resp.Articles
		if len(articles) > a.maxItems {
			articles = articles[:a.maxItems]
		}
		for _, article := range articles {
			published := article.SeenDate
			if published == "" {
				published = article.PublishedDate
			}
			summary := article.SeenDescription
			if summary == "" {
				summary = article.SourceCommonName
			}
			items = append(items, CandidateItem{
				Material:     material,
				QueryVariant: query,
				Title:        textutil.CleanText(article.Title),
				URL:          article.URL,
				PublishedRaw: published,
				Source:       gdeltSourceTag,
				Summary:      textutil.CleanText(summary),
			})
		}
	}

	return items, nil
}

// withContextQueries appends the two fixed keyword combinations for the
// canonical term and drops exact duplicates, preserving first occurrence.
func withContextQueries(queries []string) []string {
	if len(queries) == 0 {
		return nil
	}

	canonical := queries[0]
	expanded := append(append([]string(nil), queries...),
		canonical+" supply OR shortage OR export OR import",
		canonical+" price OR tariff OR regulation OR logistics",
	)

	seen := make(map[string]struct{}, len(expanded))
	out := make([]string, 0, len(expanded))
	for _, q := range expanded {
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
