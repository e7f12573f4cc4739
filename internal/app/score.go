package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/matwatch/internal/cli"
	"horse.fit/matwatch/internal/config"
	"horse.fit/matwatch/internal/relevance"
	"horse.fit/matwatch/internal/source"
	"horse.fit/matwatch/internal/watchlist"
)

func runScore(args []string) int {
	fs := flag.NewFlagSet("score", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	watchlistPath := fs.String("watchlist", "", "Watchlist file (overrides WATCHLIST_PATH)")
	material := fs.String("material", "", "Tracked material to score against")
	title := fs.String("title", "", "Headline to score")
	summary := fs.String("summary", "", "Optional summary text")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if strings.TrimSpace(*material) == "" || strings.TrimSpace(*title) == "" {
		fmt.Fprintln(os.Stderr, "--material and --title are required")
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	path := cfg.WatchlistPath
	if strings.TrimSpace(*watchlistPath) != "" {
		path = strings.TrimSpace(*watchlistPath)
	}

	watch, err := watchlist.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load watchlist: %v\n", err)
		return 1
	}

	scorer := relevance.NewScorer(watch, cfg.GenericPenalty)
	score := scorer.Score(source.CandidateItem{
		Material: strings.TrimSpace(*material),
		Title:    *title,
		Summary:  *summary,
	})

	fmt.Printf("material=%s relevance=%d floor=%d kept=%t\n",
		strings.TrimSpace(*material), score, cfg.MinRelevance, score >= cfg.MinRelevance)
	return 0
}
