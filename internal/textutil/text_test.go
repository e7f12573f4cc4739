package textutil

import (
	"strings"
	"testing"
)

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := CleanText("  Brent \t crude \n\n jumps  ")
	if got != "Brent crude jumps" {
		t.Fatalf("unexpected cleaned text: %q", got)
	}
}

func TestStripHTMLExtractsVisibleText(t *testing.T) {
	t.Parallel()

	got := StripHTML(`<p>Freight rates <b>surge</b> on Red&nbsp;Sea rerouting.</p>`)
	if !strings.Contains(got, "Freight rates surge") {
		t.Fatalf("expected tags removed, got %q", got)
	}
	if strings.Contains(got, "<b>") {
		t.Fatalf("expected no residual markup, got %q", got)
	}
}

func TestSummarizeKeepsWholeShortText(t *testing.T) {
	t.Parallel()

	got := Summarize("Short note.", 280)
	if got != "Short note." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizeCutsAtSentenceBoundary(t *testing.T) {
	t.Parallel()

	text := "First sentence here. Second sentence follows. " + strings.Repeat("x", 300)
	got := Summarize(text, 50)
	if got != "First sentence here. Second sentence follows." {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummarizeFallsBackToHardTruncation(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", 400)
	got := Summarize(text, 20)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if len([]rune(got)) > 21 {
		t.Fatalf("expected clipped summary, got %d runes", len([]rune(got)))
	}
}

func TestTruncateText(t *testing.T) {
	t.Parallel()

	got, truncated := TruncateText("abcdefghijklmnopqrstuvwxyz", 10)
	if !truncated {
		t.Fatalf("expected truncated=true")
	}
	if got != "abcdefghi…" {
		t.Fatalf("unexpected truncated text: %q", got)
	}

	full, wasTruncated := TruncateText("short", 10)
	if wasTruncated {
		t.Fatalf("expected truncated=false for short text")
	}
	if full != "short" {
		t.Fatalf("unexpected short text: %q", full)
	}
}
