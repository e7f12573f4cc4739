package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"horse.fit/matwatch/internal/config"
	"horse.fit/matwatch/internal/pipeline"
)

const runDateLayout = "2006-01-02"

// Run is the persisted summary of one scan.
type Run struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RunDate    string    `gorm:"size:10;index" json:"run_date"`
	StartedAt  time.Time `json:"started_at"`
	Fetched    int       `json:"fetched"`
	Duplicates int       `json:"duplicates"`
	BelowFloor int       `json:"below_floor"`
	Kept       int       `json:"kept"`
	Pinned     int       `json:"pinned"`
	CreatedAt  time.Time `json:"created_at"`
}

// Record is one persisted row of a scan.
type Record struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RunID        uint      `gorm:"index" json:"run_id"`
	RunDate      string    `gorm:"size:10;index" json:"run_date"`
	Material     string    `gorm:"size:128" json:"material"`
	QueryVariant string    `gorm:"size:256" json:"query_variant"`
	Source       string    `gorm:"size:64" json:"source"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	URL          string    `json:"url"`
	Published    time.Time `json:"published"`
	Relevance    int       `json:"relevance"`
}

// Store persists finished runs to Postgres. It is optional: the pipeline works
// without it and the app only opens one when a database URL is configured.
type Store struct {
	gdb   *gorm.DB
	sqlDB *sql.DB
}

func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil || cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is not configured")
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(resolveGormLogLevel(cfg.LogLevel, cfg.Environment)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get gorm sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := gdb.WithContext(ctx).AutoMigrate(&Run{}, &Record{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate schema: %w", err)
	}

	return &Store{gdb: gdb, sqlDB: sqlDB}, nil
}

// SaveRun writes the run summary and all its records in one transaction.
func (s *Store) SaveRun(ctx context.Context, result *pipeline.RunResult) error {
	if s == nil || s.gdb == nil {
		return fmt.Errorf("store is not initialized")
	}

	runDate := result.RunStart.Format(runDateLayout)
	return s.gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := Run{
			RunDate:    runDate,
			StartedAt:  result.RunStart,
			Fetched:    result.Stats.Fetched,
			Duplicates: result.Stats.Duplicates,
			BelowFloor: result.Stats.BelowFloor,
			Kept:       result.Stats.Kept,
			Pinned:     result.Stats.Pinned,
		}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if len(result.Records) == 0 {
			return nil
		}
		rows := make([]Record, 0, len(result.Records))
		for _, rec := range result.Records {
			rows = append(rows, Record{
				RunID:        run.ID,
				RunDate:      runDate,
				Material:     rec.Material,
				QueryVariant: rec.QueryVariant,
				Source:       rec.Source,
				Title:        rec.Title,
				Summary:      rec.Summary,
				URL:          rec.URL,
				Published:    rec.Published,
				Relevance:    rec.Relevance,
			})
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("insert run records: %w", err)
		}
		return nil
	})
}

// ListRuns returns the most recent run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.gdb == nil {
		return nil, fmt.Errorf("store is not initialized")
	}
	if limit <= 0 {
		limit = 30
	}

	var runs []Run
	err := s.gdb.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return runs, nil
}

// ListRecords returns the stored records for one run date, in the run's
// material / relevance / recency order.
func (s *Store) ListRecords(ctx context.Context, runDate string, limit int) ([]Record, error) {
	if s == nil || s.gdb == nil {
		return nil, fmt.Errorf("store is not initialized")
	}
	if _, err := time.Parse(runDateLayout, runDate); err != nil {
		return nil, fmt.Errorf("invalid run date %q: %w", runDate, err)
	}
	if limit <= 0 {
		limit = 500
	}

	var records []Record
	err := s.gdb.WithContext(ctx).
		Where("run_date = ?", runDate).
		Order("material ASC, relevance DESC, published DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return records, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("store is not initialized")
	}
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func resolveGormLogLevel(appLogLevel, environment string) logger.LogLevel {
	level := strings.ToLower(strings.TrimSpace(appLogLevel))
	switch level {
	case "trace", "debug":
		return logger.Info
	case "warn", "warning", "info", "":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		if strings.EqualFold(strings.TrimSpace(environment), "local") {
			return logger.Warn
		}
		return logger.Error
	}
}
