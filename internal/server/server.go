// Package server exposes the HTTP API: health, file ingestion, and
// evidence-grounded incident analysis.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/embedder"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/ingest"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/llm"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/storage"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/vectorstore"
)

// Deps are the collaborators the HTTP handlers delegate to.
type Deps struct {
	Ingester *ingest.Service
	Embedder embedder.Embedder
	Store    vectorstore.Store
	Chat     llm.ChatService
	Audit    *llm.AuditLogger
	Uploads  *storage.Uploads
}

// Server holds the Echo app and its dependencies.
type Server struct {
	echo   *echo.Echo
	cfg    config.ServerConfig
	deps   Deps
	logger zerolog.Logger
}

// New builds the Echo server and registers routes.
func New(cfg config.ServerConfig, deps Deps, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logger = logger.With().Str("component", "server").Logger()

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))

	s := &Server{echo: e, cfg: cfg, deps: deps, logger: logger}

	e.GET("/health", s.handleHealth)
	e.POST("/ingest", s.handleIngest)
	e.POST("/analyze", s.handleAnalyze)

	return s
}

// Handler returns the HTTP handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves HTTP until the context is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	return s.echo.Start(fmt.Sprintf(":%d", s.cfg.Port))
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
