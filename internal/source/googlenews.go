package source

import (
	"context"
	"encoding/xml"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/matwatch/internal/fetch"
	"horse.fit/matwatch/internal/textutil"
)

const (
	googleNewsSourceTag = "GoogleNewsRSS"
	googleNewsEndpoint  = "https://news.google.com/rss/search"
	summaryMaxChars     = 280
)

// contextTerms widens recall: each material term is searched conjunctively
// with this disjunction of generic supply-chain words.
var contextTerms = []string{
	"supply", "shortage", "price", "export", "imports", "logistics", "shipment",
	"factory", "plant", "shutdown", "strike", "regulation", "tariff", "recall",
}

var googleRedirectExpr = regexp.MustCompile(`^https?://news\.google\.com/.*url=([^&]+)`)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Updated     string `xml:"updated"`
	Description string `xml:"description"`
}

// GoogleNewsAdapter issues one feed search per query variant against the
// Google News RSS endpoint.
type GoogleNewsAdapter struct {
	client   *fetch.Client
	endpoint string
	maxItems int
	logger   zerolog.Logger
}

func NewGoogleNewsAdapter(client *fetch.Client, maxItems int, logger zerolog.Logger) *GoogleNewsAdapter {
	if maxItems < 1 {
		maxItems = 12
	}
	return &GoogleNewsAdapter{
		client:   client,
		endpoint: googleNewsEndpoint,
		maxItems: maxItems,
		logger:   logger,
	}
}

func (a *GoogleNewsAdapter) Name() string {
	return googleNewsSourceTag
}

func (a *GoogleNewsAdapter) Fetch(ctx context.Context, material string, queries []string) ([]CandidateItem, error) {
	items := make([]CandidateItem, 0, a.maxItems*len(queries))

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		params := url.Values{}
		params.Set("q", buildContextQuery(query))
		params.Set("hl", "en-GB")
		params.Set("gl", "GB")
		params.Set("ceid", "GB:en")

		body, err := a.client.Get(ctx, a.endpoint, params)
		if err != nil {
			a.logger.Warn().
				Err(err).
				Str("source", googleNewsSourceTag).
				Str("material", material).
				Str("query", query).
				Msg("feed retrieval failed; skipping query")
			continue
		}

		var feed rssFeed
		if err := xml.Unmarshal(body, &feed); err != nil {
			a.logger.Warn().
				Err(err).
				Str("source", googleNewsSourceTag).
				Str("query", query).
				Msg("feed parse failed; skipping query")
			continue
		}

		entries := feed.Channel.Items
		if len(entries) > a.maxItems {
			entries = entries[:a.maxItems]
		}
		for _, entry := range entries {
			published := entry.PubDate
			if published == "" {
				published = entry.Updated
			}
			items = append(items, CandidateItem{
				Material:     material,
				QueryVariant: query,
				Title:        textutil.CleanText(entry.Title),
				URL:          unwrapRedirectURL(entry.Link),
				PublishedRaw: published,
				Source:       googleNewsSourceTag,
				Summary:      textutil.Summarize(entry.Description, summaryMaxChars),
			})
		}
	}

	return items, nil
}

// buildContextQuery quotes the term and conjoins the generic context words as
// one OR group: `"propane" ("supply" OR "price" OR …)`.
func buildContextQuery(term string) string {
	quoted := make([]string, 0, len(contextTerms))
	for _, w := range contextTerms {
		quoted = append(quoted, `"`+w+`"`)
	}
	return `"` + term + `" (` + strings.Join(quoted, " OR ") + `)`
}

// unwrapRedirectURL resolves Google News redirect links to the target article URL.
func unwrapRedirectURL(link string) string {
	match := googleRedirectExpr.FindStringSubmatch(link)
	if len(match) != 2 {
		return link
	}
	unescaped, err := url.QueryUnescape(match[1])
	if err != nil {
		return link
	}
	return unescaped
}
