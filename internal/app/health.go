package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/matwatch/internal/cli"
	"horse.fit/matwatch/internal/config"
	"horse.fit/matwatch/internal/logging"
	"horse.fit/matwatch/internal/store"
	"horse.fit/matwatch/internal/watchlist"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Second, "Command timeout")

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

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	watch, err := watchlist.Load(cfg.WatchlistPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Watchlist check failed: %v\n", err)
		return 1
	}
	fmt.Printf("watchlist=ok materials=%d\n", len(watch.Materials))

	if cfg.DatabaseURL == "" {
		fmt.Println("database=skipped (DATABASE_URL not set)")
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("database health check failed")
		fmt.Fprintf(os.Stderr, "Database check failed: %v\n", err)
		return 1
	}
	defer st.Close()

	if err := st.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Database ping failed: %v\n", err)
		return 1
	}
	fmt.Println("database=ok")
	return 0
}
