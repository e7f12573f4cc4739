package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultUserAgent     = "matwatch/1.0 (+https://horse.fit/matwatch)"
	defaultBodyByteLimit = 4 * 1024 * 1024
)

// Sleeper waits for the given duration; tests substitute a recording fake.
type Sleeper func(time.Duration)

// RetryPolicy bounds retries for one GET: up to Attempts tries, each non-first
// try preceded by a jittered backoff that scales with the attempt number.
type RetryPolicy struct {
	Attempts   int
	BackoffMin float64
	BackoffMax float64
}

// Backoff returns the wait before the next try after the given 1-based
// attempt: (min + (max-min)*jitter) * attempt seconds, jitter in [0,1).
func (p RetryPolicy) Backoff(attempt int, jitter float64) time.Duration {
	seconds := (p.BackoffMin + (p.BackoffMax-p.BackoffMin)*jitter) * float64(attempt)
	return time.Duration(seconds * float64(time.Second))
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.BackoffMin <= 0 {
		p.BackoffMin = 1.2
	}
	if p.BackoffMax < p.BackoffMin {
		p.BackoffMax = p.BackoffMin
	}
	return p
}

// Client is a GET-only HTTP client with a fixed timeout and bounded,
// jitter-backed retries. Transport errors and non-200 responses both count as
// failed tries; after the final try the last failure is returned.
type Client struct {
	http      *http.Client
	policy    RetryPolicy
	sleep     Sleeper
	jitter    func() float64
	userAgent string
}

// NewClient wires an HTTP client; nil selects a default with the given timeout.
func NewClient(httpClient *http.Client, timeout time.Duration, policy RetryPolicy) *Client {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		http:      httpClient,
		policy:    policy.normalized(),
		sleep:     time.Sleep,
		jitter:    rand.Float64,
		userAgent: defaultUserAgent,
	}
}

// WithSleeper replaces the backoff sleeper; intended for tests with fake clocks.
func (c *Client) WithSleeper(sleep Sleeper, jitter func() float64) *Client {
	if sleep != nil {
		c.sleep = sleep
	}
	if jitter != nil {
		c.jitter = jitter
	}
	return c
}

// Get fetches rawURL with optional query parameters and returns the response
// body on HTTP 200. Context cancellation aborts the retry loop immediately.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	target := rawURL
	if len(params) > 0 {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
		}
		q := parsed.Query()
		for key, values := range params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		parsed.RawQuery = q.Encode()
		target = parsed.String()
	}

	var lastErr error
	for attempt := 1; attempt <= c.policy.Attempts; attempt++ {
		if attempt > 1 {
			c.sleep(c.policy.Backoff(attempt-1, c.jitter()))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := c.getOnce(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("get %s after %d attempts: %w", target, c.policy.Attempts, lastErr)
}

func (c *Client) getOnce(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, defaultBodyByteLimit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
