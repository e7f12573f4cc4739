package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/matwatch/internal/alert"
	"horse.fit/matwatch/internal/globaltime"
	"horse.fit/matwatch/internal/pipeline"
	"horse.fit/matwatch/internal/store"
)

const (
	defaultRecordLimit = 200
	maxRecordLimit     = 1000
)

// RunStore is the slice of the persistence layer the read API needs.
type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	ListRecords(ctx context.Context, runDate string, limit int) ([]store.Record, error)
	Ping(ctx context.Context) error
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server exposes stored runs over a small read-only JSON API.
type Server struct {
	runs   RunStore
	logger zerolog.Logger
	opts   Options
}

func NewServer(runs RunStore, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		runs:   runs,
		logger: logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.newEcho()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("matwatch web server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("matwatch web server stopped")
	return nil
}

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/runs", s.handleRuns)
	api.GET("/records", s.handleRecords)
	api.GET("/digest", s.handleDigest)

	return e
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	database := false
	if s.runs != nil {
		database = s.runs.Ping(c.Request().Context()) == nil
	}
	return success(c, map[string]any{
		"service":  "matwatch",
		"time":     globaltime.UTC(),
		"database": database,
	})
}

func (s *Server) handleRuns(c echo.Context) error {
	if s.runs == nil {
		return failUnavailable(c, "Persistence is not configured")
	}

	limit, err := parsePositiveInt(c.QueryParam("limit"), 30, 1, 180)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	runs, err := s.runs.ListRuns(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("query runs failed")
		return internalError(c, "Failed to load runs")
	}
	return success(c, map[string]any{
		"items": runs,
		"limit": limit,
	})
}

func (s *Server) handleRecords(c echo.Context) error {
	if s.runs == nil {
		return failUnavailable(c, "Persistence is not configured")
	}

	runDate, err := parseRunDate(c.QueryParam("date"))
	if err != nil {
		return failValidation(c, map[string]string{"date": err.Error()})
	}
	limit, err := parsePositiveInt(c.QueryParam("limit"), defaultRecordLimit, 1, maxRecordLimit)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	records, err := s.runs.ListRecords(c.Request().Context(), runDate, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("run_date", runDate).Msg("query records failed")
		return internalError(c, "Failed to load records")
	}
	return success(c, map[string]any{
		"items": records,
		"date":  runDate,
		"limit": limit,
	})
}

func (s *Server) handleDigest(c echo.Context) error {
	if s.runs == nil {
		return failUnavailable(c, "Persistence is not configured")
	}

	runDate, err := parseRunDate(c.QueryParam("date"))
	if err != nil {
		return failValidation(c, map[string]string{"date": err.Error()})
	}
	limit, err := parsePositiveInt(c.QueryParam("limit"), alert.DefaultDigestLimit, 1, 50)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	records, err := s.runs.ListRecords(c.Request().Context(), runDate, maxRecordLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("run_date", runDate).Msg("query records failed")
		return internalError(c, "Failed to load records")
	}

	return success(c, map[string]any{
		"date":   runDate,
		"digest": alert.FormatDigest(toPipelineRecords(records), limit),
	})
}

func toPipelineRecords(records []store.Record) []pipeline.Record {
	out := make([]pipeline.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, pipeline.Record{
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
	return out
}

func parseRunDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("is required")
	}
	if _, err := time.Parse("2006-01-02", trimmed); err != nil {
		return "", fmt.Errorf("must be YYYY-MM-DD")
	}
	return trimmed, nil
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
