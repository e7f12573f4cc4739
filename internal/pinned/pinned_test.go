package pinned

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"horse.fit/matwatch/internal/fetch"
)

const pinnedPage = `<!doctype html>
<html>
<head>
  <title>  Freight outlook
  Q3 </title>
  <meta name="description" content="Tanker rates expected to soften through the quarter.">
  <meta property="og:description" content="ignored while description exists">
</head>
<body><p>body text</p></body>
</html>`

const pinnedPageMetaOnly = `<!doctype html>
<html>
<head>
  <meta property="og:title" content="Social-only title">
  <meta name="twitter:description" content="Only the twitter card describes this page.">
</head>
<body></body>
</html>`

func newFetcher(srv *httptest.Server) *Fetcher {
	return NewFetcher(fetch.NewClient(srv.Client(), 0, fetch.RetryPolicy{Attempts: 1}))
}

func TestFetchExtractsTitleAndDescription(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pinnedPage))
	}))
	defer srv.Close()

	title, summary, err := newFetcher(srv).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Freight outlook Q3" {
		t.Fatalf("unexpected title: %q", title)
	}
	if summary != "Tanker rates expected to soften through the quarter." {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestFetchFallsBackToSocialMeta(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pinnedPageMetaOnly))
	}))
	defer srv.Close()

	title, summary, err := newFetcher(srv).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Social-only title" {
		t.Fatalf("unexpected title: %q", title)
	}
	if summary != "Only the twitter card describes this page." {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestFetchSurfacesRetrievalError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, _, err := newFetcher(srv).Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected retrieval error")
	}
}
