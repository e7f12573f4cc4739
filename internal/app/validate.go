package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"horse.fit/matwatch/internal/cli"
	"horse.fit/matwatch/internal/config"
	"horse.fit/matwatch/internal/watchlist"
)

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	watchlistPath := fs.String("watchlist", "", "Watchlist file (overrides WATCHLIST_PATH)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
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
		fmt.Fprintf(os.Stderr, "Invalid watchlist: %v\n", err)
		return 1
	}

	fmt.Printf("watchlist=%s materials=%d pinned=%d\n", path, len(watch.Materials), len(watch.Pinned))
	return 0
}
