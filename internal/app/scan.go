package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"horse.fit/matwatch/internal/alert"
	"horse.fit/matwatch/internal/cli"
	"horse.fit/matwatch/internal/config"
	"horse.fit/matwatch/internal/export"
	"horse.fit/matwatch/internal/fetch"
	"horse.fit/matwatch/internal/logging"
	"horse.fit/matwatch/internal/pinned"
	"horse.fit/matwatch/internal/pipeline"
	"horse.fit/matwatch/internal/relevance"
	"horse.fit/matwatch/internal/source"
	"horse.fit/matwatch/internal/store"
	"horse.fit/matwatch/internal/watchlist"
)

func runScan(args []string) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Command timeout")
	watchlistPath := fs.String("watchlist", "", "Watchlist file (overrides WATCHLIST_PATH)")
	outDir := fs.String("out", "", "Output directory (overrides OUTPUT_DIR)")
	skipAlerts := fs.Bool("skip-alerts", false, "Do not post the digest to webhooks")
	skipExport := fs.Bool("skip-export", false, "Do not write CSV/XLSX files")

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

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve timezone: %v\n", err)
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

	dir := cfg.OutputDir
	if strings.TrimSpace(*outDir) != "" {
		dir = strings.TrimSpace(*outDir)
	}

	client := fetch.NewClient(nil, cfg.HTTPTimeout(), fetch.RetryPolicy{
		Attempts:   cfg.RetryAttempts,
		BackoffMin: cfg.RetryBackoffMin,
		BackoffMax: cfg.RetryBackoffMax,
	})

	svc := pipeline.NewService(pipeline.Deps{
		Adapters: []source.Adapter{
			source.NewGoogleNewsAdapter(client, cfg.MaxItemsPerCall, logger),
			source.NewGDELTAdapter(client, cfg.MaxItemsPerCall, cfg.WindowDays, loc, logger),
		},
		Scorer:       relevance.NewScorer(watch, cfg.GenericPenalty),
		Pinned:       pinned.NewFetcher(client),
		Dedup:        pipeline.NewDeduplicator(cfg.NearDupThreshold),
		Location:     loc,
		MinRelevance: cfg.MinRelevance,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := svc.Run(ctx, watch)
	if err != nil {
		logger.Error().Err(err).Msg("scan failed")
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		return 1
	}

	if len(result.Records) == 0 {
		logger.Info().Msg("nothing to report")
		fmt.Println("nothing to report")
		return 0
	}

	if !*skipExport {
		writer := export.NewWriter(dir)
		csvPath, err := writer.WriteCSV(result.Records, result.RunStart)
		if err != nil {
			logger.Error().Err(err).Msg("csv export failed")
			fmt.Fprintf(os.Stderr, "CSV export failed: %v\n", err)
			return 1
		}
		xlsxPath, err := writer.WriteXLSX(result.Records, result.RunStart)
		if err != nil {
			logger.Error().Err(err).Msg("xlsx export failed")
			fmt.Fprintf(os.Stderr, "XLSX export failed: %v\n", err)
			return 1
		}
		fmt.Printf("csv=%s\nxlsx=%s\n", csvPath, xlsxPath)
	}

	if !*skipAlerts {
		digest := alert.FormatDigest(result.Records, cfg.DigestLimit)
		notifier := alert.NewNotifier(&http.Client{Timeout: cfg.HTTPTimeout()}, logger)
		notifier.Broadcast(ctx, []string{cfg.SlackWebhook, cfg.TeamsWebhook}, digest)
	}

	if cfg.DatabaseURL != "" {
		st, err := store.Open(ctx, cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("database unavailable; run not persisted")
		} else {
			defer st.Close()
			if err := st.SaveRun(ctx, result); err != nil {
				logger.Warn().Err(err).Msg("persisting run failed")
			}
		}
	}

	fmt.Printf("fetched=%d duplicates=%d below_floor=%d kept=%d pinned=%d\n",
		result.Stats.Fetched, result.Stats.Duplicates, result.Stats.BelowFloor,
		result.Stats.Kept, result.Stats.Pinned)

	return 0
}
