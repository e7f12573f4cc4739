package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"horse.fit/matwatch/internal/pipeline"
)

// DefaultDigestLimit caps how many records a digest message carries.
const DefaultDigestLimit = 10

// FormatDigest renders the strongest records as a compact text digest for
// chat webhooks. Records are ranked by relevance, newest first on ties, and
// capped at limit.
func FormatDigest(records []pipeline.Record, limit int) string {
	if len(records) == 0 {
		return ""
	}
	if limit < 1 {
		limit = DefaultDigestLimit
	}

	ranked := append([]pipeline.Record(nil), records...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Relevance != ranked[j].Relevance {
			return ranked[i].Relevance > ranked[j].Relevance
		}
		return ranked[i].Published.After(ranked[j].Published)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Material watch: %d new signals\n", len(records))
	for _, rec := range ranked {
		fmt.Fprintf(&b, "• *%s* — %s (%s)\n  %s\n",
			rec.Material, rec.Title, rec.Published.Format("2006-01-02"), rec.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Notifier posts digest messages to chat webhooks. Slack and Teams both
// accept the plain {"text": ...} payload.
type Notifier struct {
	http   *http.Client
	logger zerolog.Logger
}

func NewNotifier(httpClient *http.Client, logger zerolog.Logger) *Notifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Notifier{http: httpClient, logger: logger}
}

// Post sends one message to a single webhook.
func (n *Notifier) Post(ctx context.Context, webhookURL, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Broadcast posts the message to every configured webhook, logging failures
// without aborting the run. Empty URLs are skipped.
func (n *Notifier) Broadcast(ctx context.Context, webhookURLs []string, text string) {
	if text == "" {
		return
	}
	for _, url := range webhookURLs {
		if url == "" {
			continue
		}
		if err := n.Post(ctx, url, text); err != nil {
			n.logger.Warn().Err(err).Msg("webhook delivery failed")
		}
	}
}
