// Package server wires the HTTP surface of the ingestion service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/alexf37/ingest-demo/internal/autofill"
	"github.com/alexf37/ingest-demo/internal/pipeline"
	"github.com/alexf37/ingest-demo/internal/profile"
	apiv1 "github.com/alexf37/ingest-demo/server/router/api/v1"
	"github.com/alexf37/ingest-demo/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	logger     *slog.Logger
	stopReaper chan struct{}
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, pipeline *pipeline.Pipeline, generator *autofill.Generator, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestLogger(logger))

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
		logger:     logger,
		stopReaper: make(chan struct{}),
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": profile.Version})
	})

	apiService := apiv1.NewAPIV1Service(profile, store, pipeline, generator)
	apiService.Register(e)
	apiService.StartLimiterReaper(5*time.Minute, s.stopReaper)

	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	s.logger.Info("server started", "address", address, "mode", s.Profile.Mode)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	close(s.stopReaper)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shut down server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		s.logger.Error("failed to close store", "error", err)
	}
	s.logger.Info("server shut down")
}

// requestLogger logs one line per completed request.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("request completed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}
