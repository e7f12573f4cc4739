package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	WatchlistPath string `envconfig:"WATCHLIST_PATH" default:"watchlist.json"`
	OutputDir     string `envconfig:"OUTPUT_DIR" default:"out"`
	LocalTimezone string `envconfig:"LOCAL_TZ" default:"Africa/Kampala"`

	MaxItemsPerCall    int     `envconfig:"MW_MAX_ITEMS_PER_CALL" default:"12"`
	MinRelevance       int     `envconfig:"MW_MIN_RELEVANCE" default:"60"`
	WindowDays         int     `envconfig:"MW_WINDOW_DAYS" default:"10"`
	HTTPTimeoutSeconds int     `envconfig:"MW_HTTP_TIMEOUT_SECONDS" default:"20"`
	RetryAttempts      int     `envconfig:"MW_RETRY_ATTEMPTS" default:"3"`
	RetryBackoffMin    float64 `envconfig:"MW_RETRY_BACKOFF_MIN" default:"1.2"`
	RetryBackoffMax    float64 `envconfig:"MW_RETRY_BACKOFF_MAX" default:"2.0"`
	NearDupThreshold   int     `envconfig:"MW_NEAR_DUP_THRESHOLD" default:"92"`
	GenericPenalty     int     `envconfig:"MW_GENERIC_PENALTY" default:"12"`
	DigestLimit        int     `envconfig:"MW_DIGEST_LIMIT" default:"10"`

	SlackWebhook string `envconfig:"SLACK_WEBHOOK" default:""`
	TeamsWebhook string `envconfig:"TEAMS_WEBHOOK" default:""`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.WatchlistPath) == "" {
		return fmt.Errorf("WATCHLIST_PATH is required")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if strings.TrimSpace(c.LocalTimezone) == "" {
		return fmt.Errorf("LOCAL_TZ is required")
	}
	if _, err := time.LoadLocation(strings.TrimSpace(c.LocalTimezone)); err != nil {
		return fmt.Errorf("LOCAL_TZ %q is not a valid IANA zone: %w", c.LocalTimezone, err)
	}
	if c.MaxItemsPerCall < 1 {
		return fmt.Errorf("MW_MAX_ITEMS_PER_CALL must be >= 1")
	}
	if c.MinRelevance < 0 || c.MinRelevance > 100 {
		return fmt.Errorf("MW_MIN_RELEVANCE must be within [0,100]")
	}
	if c.WindowDays < 1 {
		return fmt.Errorf("MW_WINDOW_DAYS must be >= 1")
	}
	if c.HTTPTimeoutSeconds < 1 {
		return fmt.Errorf("MW_HTTP_TIMEOUT_SECONDS must be >= 1")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("MW_RETRY_ATTEMPTS must be >= 1")
	}
	if c.RetryBackoffMin <= 0 {
		return fmt.Errorf("MW_RETRY_BACKOFF_MIN must be > 0")
	}
	if c.RetryBackoffMax < c.RetryBackoffMin {
		return fmt.Errorf("MW_RETRY_BACKOFF_MAX (%v) cannot be below MW_RETRY_BACKOFF_MIN (%v)", c.RetryBackoffMax, c.RetryBackoffMin)
	}
	if c.NearDupThreshold < 1 || c.NearDupThreshold > 100 {
		return fmt.Errorf("MW_NEAR_DUP_THRESHOLD must be within [1,100]")
	}
	if c.GenericPenalty < 0 {
		return fmt.Errorf("MW_GENERIC_PENALTY must be >= 0")
	}
	if c.DigestLimit < 1 {
		return fmt.Errorf("MW_DIGEST_LIMIT must be >= 1")
	}
	return nil
}

// Location resolves the configured local timezone. Validate guarantees the zone
// name parses, so failures here are limited to altered runtime tzdata.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(c.LocalTimezone))
	if err != nil {
		return nil, fmt.Errorf("load LOCAL_TZ %q: %w", c.LocalTimezone, err)
	}
	return loc, nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
