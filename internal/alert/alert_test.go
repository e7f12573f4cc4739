package alert

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/matwatch/internal/pipeline"
)

func digestRecords() []pipeline.Record {
	return []pipeline.Record{
		{Material: "ACETONE", Title: "Weaker story", URL: "https://a.example/1", Relevance: 61, Published: time.Date(2023, 5, 3, 0, 0, 0, 0, time.UTC)},
		{Material: "LPG GAS", Title: "Strong story", URL: "https://a.example/2", Relevance: 95, Published: time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC)},
		{Material: "LPG GAS", Title: "Strong and newer", URL: "https://a.example/3", Relevance: 95, Published: time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC)},
	}
}

func TestFormatDigestRanksAndCaps(t *testing.T) {
	t.Parallel()

	got := FormatDigest(digestRecords(), 2)
	lines := strings.Split(got, "\n")

	if lines[0] != "Material watch: 3 new signals" {
		t.Fatalf("unexpected headline: %q", lines[0])
	}
	// 2 records, 2 lines each, plus the headline.
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), got)
	}
	if lines[1] != "• *LPG GAS* — Strong and newer (2023-05-04)" {
		t.Fatalf("unexpected first entry: %q", lines[1])
	}
	if lines[2] != "  https://a.example/3" {
		t.Fatalf("unexpected first URL line: %q", lines[2])
	}
	if !strings.Contains(lines[3], "Strong story") {
		t.Fatalf("expected same-score tie broken by recency: %q", lines[3])
	}
}

func TestFormatDigestEmptyInput(t *testing.T) {
	t.Parallel()

	if got := FormatDigest(nil, 5); got != "" {
		t.Fatalf("expected empty digest, got %q", got)
	}
}

func TestNotifierPostSendsTextPayload(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	n := NewNotifier(srv.Client(), zerolog.Nop())
	if err := n.Post(context.Background(), srv.URL, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %q", gotContentType)
	}
	var payload map[string]string
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["text"] != "hello" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestNotifierPostRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier(srv.Client(), zerolog.Nop())
	if err := n.Post(context.Background(), srv.URL, "hello"); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestBroadcastContinuesPastFailures(t *testing.T) {
	t.Parallel()

	var delivered int
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered++
	}))
	defer ok.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	n := NewNotifier(http.DefaultClient, zerolog.Nop())
	n.Broadcast(context.Background(), []string{bad.URL, "", ok.URL}, "digest")

	if delivered != 1 {
		t.Fatalf("expected the healthy webhook to receive the message, got %d deliveries", delivered)
	}
}
