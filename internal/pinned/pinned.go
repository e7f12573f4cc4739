package pinned

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"horse.fit/matwatch/internal/fetch"
	"horse.fit/matwatch/internal/textutil"
)

// Fetcher resolves pinned URLs to a page title and a short description by
// scraping the document head.
type Fetcher struct {
	client *fetch.Client
}

func NewFetcher(client *fetch.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves the page and extracts its title and description. The title
// falls back from <title> to og:title; the description tries the standard meta
// description, then og:description, then twitter:description.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, string, error) {
	body, err := f.client.Get(ctx, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("fetch pinned page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parse pinned page: %w", err)
	}

	title := textutil.CleanText(doc.Find("title").First().Text())
	if title == "" {
		title = metaContent(doc, `meta[property="og:title"]`)
	}

	summary := metaContent(doc, `meta[name="description"]`)
	if summary == "" {
		summary = metaContent(doc, `meta[property="og:description"]`)
	}
	if summary == "" {
		summary = metaContent(doc, `meta[name="twitter:description"]`)
	}

	return title, textutil.Summarize(summary, 280), nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return textutil.CleanText(strings.TrimSpace(content))
}
