// Package api provides the JSON API and SSE stream for the Canopy dashboard.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/currency"
	"github.com/raolivei/canopy-go/internal/logging"
	"github.com/raolivei/canopy-go/internal/observability"
)

// Controller manages the /api/v2 endpoints.
type Controller struct {
	Echo            *echo.Echo
	Group           *echo.Group
	Settings        *conf.Settings
	currencyService *currency.Service
	metrics         *observability.Metrics
	apiLogger       *slog.Logger
	apiLevelVar     *slog.LevelVar
	apiLoggerClose  func() error
	startTime       time.Time
}

// New creates a new API controller and registers all routes on the given
// Echo instance under /api/v2.
func New(e *echo.Echo, settings *conf.Settings, currencyService *currency.Service, m *observability.Metrics) *Controller {
	c := &Controller{
		Echo:            e,
		Settings:        settings,
		currencyService: currencyService,
		metrics:         m,
		apiLevelVar:     new(slog.LevelVar),
		startTime:       time.Now(),
	}

	if settings != nil && settings.WebServer.Debug {
		c.apiLevelVar.Set(slog.LevelDebug)
	}

	logger, closeLogger, err := logging.NewFileLogger("logs/web.log", "api", c.apiLevelVar)
	if err != nil {
		// Fall back to a no-op logger and report the failure once on stderr.
		fmt.Printf("warning: failed to initialize API log file: %v\n", err)
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil)).With("service", "api")
		closeLogger = func() error { return nil }
	}
	c.apiLogger = logger
	c.apiLoggerClose = closeLogger

	c.Group = e.Group("/api/v2")
	c.Group.Use(middleware.Recover())
	c.Group.Use(middleware.CORSWithConfig(c.corsConfig()))
	c.Group.Use(middleware.BodyLimit(c.bodyLimit()))
	c.Group.Use(c.LoggingMiddleware())

	c.initRoutes()
	c.logInfo("API controller initialized", "base_path", "/api/v2")
	return c
}

func (c *Controller) corsConfig() middleware.CORSConfig {
	cfg := middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderCacheControl},
	}
	if c.Settings != nil && len(c.Settings.WebServer.AllowedOrigins) > 0 {
		cfg.AllowOrigins = c.Settings.WebServer.AllowedOrigins
	}
	return cfg
}

func (c *Controller) bodyLimit() string {
	if c.Settings != nil && c.Settings.WebServer.BodyLimit != "" {
		return c.Settings.WebServer.BodyLimit
	}
	return "1M"
}

// initRoutes wires up every route group. Each initializer is isolated so a
// panic during registration is reported with the group name instead of
// killing the process silently.
func (c *Controller) initRoutes() {
	routeInitializers := []struct {
		name string
		fn   func()
	}{
		{"health", c.initHealthRoutes},
		{"notifications", c.initNotificationRoutes},
		{"toasts", c.initToastRoutes},
		{"currency", c.initCurrencyRoutes},
	}

	for _, init := range routeInitializers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logError("route registration panicked", "group", init.name, "panic", fmt.Sprintf("%v", r))
				}
			}()
			init.fn()
		}()
	}
}

// LoggingMiddleware logs each API request and feeds the HTTP metrics.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()

			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}

			req := ctx.Request()
			res := ctx.Response()
			elapsed := time.Since(start)

			if c.metrics != nil && c.metrics.HTTP != nil {
				c.metrics.HTTP.RecordHTTPRequest(req.Method, ctx.Path(), res.Status, elapsed.Seconds())
			}

			if c.apiLogger != nil {
				level := slog.LevelInfo
				if res.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				} else if res.Status >= http.StatusBadRequest {
					level = slog.LevelWarn
				}
				attrs := []slog.Attr{
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
					slog.String("query", req.URL.RawQuery),
					slog.Int("status", res.Status),
					slog.String("ip", ctx.RealIP()),
					slog.String("user_agent", req.UserAgent()),
					slog.Float64("latency_ms", float64(elapsed.Microseconds())/1000.0),
				}
				if err != nil {
					attrs = append(attrs, slog.String("error", err.Error()))
				}
				c.apiLogger.LogAttrs(req.Context(), level, "API request", attrs...)
			}

			return err
		}
	}
}

func (c *Controller) initHealthRoutes() {
	c.Group.GET("/health", c.HealthCheck)
}

// HealthCheck reports service status, version and uptime.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.startTime)

	version := "unknown"
	buildDate := "unknown"
	environment := "production"
	if c.Settings != nil {
		if c.Settings.Version != "" {
			version = c.Settings.Version
		}
		if c.Settings.BuildDate != "" {
			buildDate = c.Settings.BuildDate
		}
		if c.Settings.WebServer.Debug {
			environment = "development"
		}
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"version":        version,
		"build_date":     buildDate,
		"environment":    environment,
		"timestamp":      time.Now().Format(time.RFC3339),
		"uptime":         uptime.String(),
		"uptime_seconds": uptime.Seconds(),
	})
}

// Close releases resources held by the controller.
func (c *Controller) Close() {
	if c.apiLoggerClose != nil {
		if err := c.apiLoggerClose(); err != nil {
			fmt.Printf("warning: failed to close API log file: %v\n", err)
		}
	}
}

// ErrorResponse is the JSON body returned for failed API requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// jsonError writes a uniform error response with the given status code.
func (c *Controller) jsonError(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, &ErrorResponse{Error: message, Code: code})
}

// logInfo logs at info level when the API logger is available.
func (c *Controller) logInfo(msg string, args ...any) {
	if c.apiLogger != nil {
		c.apiLogger.Info(msg, args...)
	}
}

// logDebug logs at debug level when web server debug mode is enabled.
func (c *Controller) logDebug(msg string, args ...any) {
	if c.apiLogger != nil && c.Settings != nil && c.Settings.WebServer.Debug {
		c.apiLogger.Debug(msg, args...)
	}
}

func (c *Controller) logWarn(msg string, args ...any) {
	if c.apiLogger != nil {
		c.apiLogger.Warn(msg, args...)
	}
}

func (c *Controller) logError(msg string, args ...any) {
	if c.apiLogger != nil {
		c.apiLogger.Error(msg, args...)
	}
}

// contextString extracts a stable reason label from a finished context.
func contextString(ctx context.Context) string {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return "timeout"
	case context.Canceled:
		return "canceled"
	default:
		return "closed"
	}
}
