package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/currency"
	"github.com/raolivei/canopy-go/internal/errors"
	"github.com/raolivei/canopy-go/internal/logging"
	"github.com/raolivei/canopy-go/internal/observability"
)

const defaultShutdownTimeout = 10 * time.Second

// Server wraps the Echo instance serving the dashboard API.
type Server struct {
	Echo       *echo.Echo
	Settings   *conf.Settings
	Controller *Controller
	logger     *slog.Logger
}

// NewServer builds the HTTP server: Echo instance, server-level middleware,
// the Prometheus endpoint and the /api/v2 controller.
func NewServer(settings *conf.Settings, currencyService *currency.Service, m *observability.Metrics) *Server {
	configureDefaultSettings(settings)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logger := logging.ForService("web")
	if logger == nil {
		logger = slog.Default().With("service", "web")
	}

	s := &Server{
		Echo:     e,
		Settings: settings,
		logger:   logger,
	}

	// The SSE stream and the Prometheus endpoint opt out of gzip: the
	// stream needs unbuffered writes and promhttp negotiates its own
	// encoding.
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: func(ctx echo.Context) bool {
			return ctx.Path() == sseEndpoint || ctx.Path() == "/metrics"
		},
	}))

	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	s.Controller = New(e, settings, currencyService, m)
	return s
}

func configureDefaultSettings(settings *conf.Settings) {
	if settings == nil {
		return
	}
	if settings.WebServer.Port == "" {
		settings.WebServer.Port = "8080"
	}
}

// Start runs the server until it fails or a shutdown signal arrives. On
// SIGINT or SIGTERM the server drains connections before returning.
func (s *Server) Start() error {
	errChan := make(chan error, 1)
	go func() {
		addr := ":" + s.Settings.WebServer.Port
		s.logger.Info("starting web server", "address", addr)
		if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errChan:
		if err != nil {
			s.logger.Error("web server failed", "error", err.Error())
		}
		return err
	case sig := <-quit:
		s.logger.Info("shutdown signal received", "signal", sig.String())
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests within the configured timeout and
// releases controller resources.
func (s *Server) Shutdown() error {
	timeout := defaultShutdownTimeout
	if s.Settings != nil && s.Settings.WebServer.ShutdownTimeout > 0 {
		timeout = s.Settings.WebServer.ShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.Echo.Shutdown(ctx)
	if err != nil {
		s.logger.Error("web server shutdown incomplete", "error", err.Error())
	} else {
		s.logger.Info("web server stopped")
	}

	if s.Controller != nil {
		s.Controller.Close()
	}
	return err
}
