package textutil

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var sentenceExpr = regexp.MustCompile(`[^.!?]*[.!?]`)

// CleanText collapses all runs of whitespace to single spaces and trims the ends.
func CleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// StripHTML extracts the visible text of an HTML fragment. Plain text passes
// through unchanged apart from whitespace collapsing.
func StripHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return CleanText(trimmed)
	}
	return CleanText(doc.Text())
}

// Summarize strips HTML and clips the text to maxChars, preferring to cut at
// sentence boundaries. When no full sentence fits, it falls back to a hard
// rune-level truncation with an ellipsis.
func Summarize(htmlOrText string, maxChars int) string {
	text := StripHTML(htmlOrText)
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	var out strings.Builder
	for _, sentence := range sentenceExpr.FindAllString(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if out.Len()+len(sentence)+1 > maxChars {
			break
		}
		out.WriteString(sentence)
		out.WriteString(" ")
	}

	if summary := strings.TrimSpace(out.String()); summary != "" {
		return summary
	}

	clipped, _ := TruncateText(text, maxChars+1)
	return clipped
}

// TruncateText clips text to maxChars runes and appends a single ellipsis rune when truncated.
func TruncateText(raw string, maxChars int) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	if maxChars <= 0 {
		return trimmed, false
	}

	runes := []rune(trimmed)
	if len(runes) <= maxChars {
		return trimmed, false
	}
	if maxChars == 1 {
		return "…", true
	}

	clipped := strings.TrimSpace(string(runes[:maxChars-1]))
	if clipped == "" {
		return "…", true
	}

	return clipped + "…", true
}
