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

func runExpand(args []string) int {
	fs := flag.NewFlagSet("expand", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	watchlistPath := fs.String("watchlist", "", "Watchlist file (overrides WATCHLIST_PATH)")
	material := fs.String("material", "", "Only expand this material")

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
		fmt.Fprintf(os.Stderr, "Failed to load watchlist: %v\n", err)
		return 1
	}

	materials := watch.Materials
	if wanted := strings.TrimSpace(*material); wanted != "" {
		materials = nil
		for _, m := range watch.Materials {
			if strings.EqualFold(m, wanted) {
				materials = []string{m}
				break
			}
		}
		if len(materials) == 0 {
			fmt.Fprintf(os.Stderr, "material %q is not in the watchlist\n", wanted)
			return 2
		}
	}

	for _, m := range materials {
		fmt.Printf("%s: %s\n", m, strings.Join(watch.ExpandQueries(m), " | "))
	}
	return 0
}
