package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"organism/pkg/config"
	"organism/pkg/log"
	"organism/pkg/sitemap"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	cfg       config.Config
	version   string
	assembler StatusAssembler
	sitemap   []byte
	echo      *echo.Echo
	startedAt time.Time
}

// NewServer wires the routes; the sitemap is rendered once since it has no inputs.
func NewServer(cfg config.Config, version string, assembler StatusAssembler) (*Server, error) {
	siteMap, err := sitemap.Render(cfg.SiteURL)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:       cfg,
		version:   version,
		assembler: assembler,
		sitemap:   siteMap,
		echo:      echo.New(),
		startedAt: time.Now(),
	}
	srv.setupRoutes()
	return srv, nil
}

// Handler exposes the router, mainly for tests.
func (srv *Server) Handler() http.Handler {
	return srv.echo
}

func (srv *Server) Start(addr string) error {
	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", srv.version).
			Str("hub", srv.cfg.HubBaseURL).
			Str("debates", srv.cfg.ServiceBaseURL).
			Msg("Starting organism server")

		if err := srv.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return srv.Shutdown()
}

func (srv *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (srv *Server) setupRoutes() {
	srv.echo.HideBanner = true
	srv.echo.HidePort = true

	srv.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	srv.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${id} ${status} ${method} ${uri} (${latency_human})\n",
	}))
	srv.echo.Use(middleware.Recover())
	srv.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead},
	}))

	srv.echo.GET("/api/organism-status", srv.organismStatus)
	srv.echo.GET("/sitemap.xml", srv.serveSitemap)
	srv.echo.GET("/healthz", srv.health)
	srv.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
