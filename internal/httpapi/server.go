// Package httpapi is the read-only query surface over the published
// incident table.
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

	"strikewatch/internal/globaltime"
	"strikewatch/internal/store"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// IncidentStore is the persistence surface the server reads from.
type IncidentStore interface {
	List(ctx context.Context, filter store.ListFilter) ([]store.IncidentRecord, int64, error)
	Stats(ctx context.Context) (*store.DatasetStats, error)
	Ping(ctx context.Context) error
}

type Options struct {
	Addr            string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	db     IncidentStore
	logger zerolog.Logger
	opts   Options
}

func NewServer(db IncidentStore, logger zerolog.Logger, opts Options) *Server {
	if strings.TrimSpace(opts.Addr) == "" {
		opts.Addr = ":8080"
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	return &Server{db: db, logger: logger, opts: opts}
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.buildEcho()

	httpServer := &http.Server{
		Addr:         s.opts.Addr,
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

	s.logger.Info().Str("addr", s.opts.Addr).Msg("api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("api server stopped")
	return nil
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowedOrigins,
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

	e.GET("/healthz", s.handleHealth)
	api := e.Group("/api")
	api.GET("/incidents", s.handleIncidents)
	api.GET("/stats", s.handleStats)

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
		if text, ok := he.Message.(string); ok && strings.TrimSpace(text) != "" {
			message = text
		} else if text := http.StatusText(status); text != "" {
			message = text
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message)
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.db.Ping(c.Request().Context()); err != nil {
		return internalError(c, "database unreachable")
	}
	return success(c, map[string]any{
		"service": "strikewatch",
		"time":    globaltime.UTC(),
	})
}

type incidentListResponse struct {
	Incidents []store.IncidentRecord `json:"incidents"`
	Total     int64                  `json:"total"`
	Page      int                    `json:"page"`
	PerPage   int                    `json:"per_page"`
}

func (s *Server) handleIncidents(c echo.Context) error {
	filter, err := parseListFilter(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	records, total, err := s.db.List(c.Request().Context(), filter)
	if err != nil {
		return fmt.Errorf("list incidents: %w", err)
	}
	if records == nil {
		records = []store.IncidentRecord{}
	}

	return success(c, incidentListResponse{
		Incidents: records,
		Total:     total,
		Page:      filter.Page,
		PerPage:   filter.PerPage,
	})
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := s.db.Stats(c.Request().Context())
	if err != nil {
		return fmt.Errorf("dataset stats: %w", err)
	}
	return success(c, stats)
}

func parseListFilter(c echo.Context) (store.ListFilter, error) {
	filter := store.ListFilter{
		Region:  c.QueryParam("region"),
		Page:    1,
		PerPage: defaultPageSize,
	}

	var err error
	if filter.From, err = parseDateParam(c.QueryParam("from")); err != nil {
		return filter, fmt.Errorf("invalid from: %w", err)
	}
	if filter.To, err = parseDateParam(c.QueryParam("to")); err != nil {
		return filter, fmt.Errorf("invalid to: %w", err)
	}

	if raw := strings.TrimSpace(c.QueryParam("maritime")); raw != "" {
		maritime, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid maritime: %w", err)
		}
		filter.Maritime = &maritime
	}

	if filter.Page, err = parsePositiveInt(c.QueryParam("page"), 1); err != nil {
		return filter, fmt.Errorf("invalid page: %w", err)
	}
	if filter.PerPage, err = parsePositiveInt(c.QueryParam("per_page"), defaultPageSize); err != nil {
		return filter, fmt.Errorf("invalid per_page: %w", err)
	}
	if filter.PerPage > maxPageSize {
		filter.PerPage = maxPageSize
	}

	return filter, nil
}

func parseDateParam(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return "", fmt.Errorf("expected YYYY-MM-DD, got %q", raw)
	}
	return raw, nil
}

func parsePositiveInt(raw string, defaultValue int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("expected a positive integer, got %q", raw)
	}
	return value, nil
}
