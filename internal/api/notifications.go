package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/raolivei/canopy-go/internal/errors"
	"github.com/raolivei/canopy-go/internal/notification"
)

// SSE streaming constants
const (
	maxSSEConnectionDuration = 30 * time.Minute // Maximum duration for a single SSE connection
	heartbeatInterval        = 30 * time.Second // How often to send heartbeat messages
	sseWriteTimeout          = 10 * time.Second // Timeout for writing a single SSE frame
	sseEndpoint              = "/api/v2/notifications/stream"

	// Rate limiting for new stream connections
	rateLimitWindow            = 1 * time.Minute
	rateLimitRequestsPerWindow = 10
	rateLimitBurst             = 15

	defaultListLimit = 50
)

// severityStyles maps each notification severity to the style token the
// dashboard uses to pick colors and icons. The set is closed: anything
// outside it renders with the info style.
var severityStyles = map[notification.Severity]string{
	notification.SeveritySuccess: "success",
	notification.SeverityDanger:  "error",
	notification.SeverityWarning: "warning",
	notification.SeverityInfo:    "info",
}

// styleFor resolves the display style for a severity, defaulting to info.
func styleFor(severity notification.Severity) string {
	if style, ok := severityStyles[severity]; ok {
		return style
	}
	return severityStyles[notification.SeverityInfo]
}

// notificationResponse is the wire representation of a notification.
// The dismissal delay travels as integer milliseconds.
type notificationResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Severity    string         `json:"severity"`
	Style       string         `json:"style"`
	Component   string         `json:"component,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	DurationMs  int64          `json:"durationMs"`
	Sticky      bool           `json:"sticky"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func toNotificationResponse(n *notification.Notification) notificationResponse {
	severity := n.Severity
	if !severity.Valid() {
		severity = notification.DefaultSeverity
	}
	durationMs := n.Duration.Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}
	return notificationResponse{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Message,
		Severity:    string(severity),
		Style:       styleFor(n.Severity),
		Component:   n.Component,
		Timestamp:   n.Timestamp,
		DurationMs:  durationMs,
		Sticky:      n.Sticky(),
		Metadata:    n.Metadata,
	}
}

// createNotificationRequest is the POST /notifications payload. DurationMs is
// a pointer so an absent field falls back to the service default while an
// explicit zero requests a sticky notification.
type createNotificationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Component   string `json:"component"`
	DurationMs  *int64 `json:"durationMs"`
}

// streamEventPayload is the SSE body for notification lifecycle events.
type streamEventPayload struct {
	Action       string               `json:"action"`
	Notification notificationResponse `json:"notification"`
	Active       int                  `json:"active"`
}

// initNotificationRoutes registers notification REST routes and the SSE stream.
func (c *Controller) initNotificationRoutes() {
	// Rate limiter for new stream connections
	rateLimiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rateLimitRequestsPerWindow,
				Burst:     rateLimitBurst,
				ExpiresIn: rateLimitWindow,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Too many notification stream connection attempts, please wait before trying again",
			})
		},
	}

	c.Group.GET("/notifications/stream", c.StreamNotifications, middleware.RateLimiterWithConfig(rateLimiterConfig))

	c.Group.GET("/notifications", c.GetNotifications)
	c.Group.GET("/notifications/:id", c.GetNotification)
	c.Group.POST("/notifications", c.CreateNotification)
	c.Group.DELETE("/notifications/:id", c.DeleteNotification)
}

// GetNotifications returns active notifications, newest filters applied via
// query parameters: limit (default 50), offset, severity.
func (c *Controller) GetNotifications(ctx echo.Context) error {
	if !notification.IsInitialized() {
		return c.serviceUnavailable(ctx)
	}

	limit := defaultListLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.jsonError(ctx, http.StatusBadRequest, "limit must be a non-negative integer")
		}
		if parsed > 0 {
			limit = parsed
		}
	}

	offset := 0
	if raw := ctx.QueryParam("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.jsonError(ctx, http.StatusBadRequest, "offset must be a non-negative integer")
		}
		offset = parsed
	}

	var severityFilter notification.Severity
	filterBySeverity := false
	if raw := ctx.QueryParam("severity"); raw != "" {
		parsed, ok := notification.ParseSeverity(raw)
		if !ok {
			return c.jsonError(ctx, http.StatusBadRequest, "unknown severity: "+raw)
		}
		severityFilter = parsed
		filterBySeverity = true
	}

	service := notification.GetService()
	all, err := service.List()
	if err != nil {
		c.logError("failed to list notifications", "error", err.Error())
		return c.jsonError(ctx, http.StatusInternalServerError, "failed to list notifications")
	}

	matched := all
	if filterBySeverity {
		matched = make([]*notification.Notification, 0, len(all))
		for _, n := range all {
			if n.Severity == severityFilter {
				matched = append(matched, n)
			}
		}
	}

	if offset >= len(matched) {
		matched = nil
	} else {
		matched = matched[offset:]
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	items := make([]notificationResponse, 0, len(matched))
	for _, n := range matched {
		items = append(items, toNotificationResponse(n))
	}

	return ctx.JSON(http.StatusOK, items)
}

// GetNotification returns a single notification by ID.
func (c *Controller) GetNotification(ctx echo.Context) error {
	if !notification.IsInitialized() {
		return c.serviceUnavailable(ctx)
	}

	id := ctx.Param("id")
	if id == "" {
		return c.jsonError(ctx, http.StatusBadRequest, "notification ID is required")
	}

	n, err := notification.GetService().Get(id)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return c.jsonError(ctx, http.StatusNotFound, "notification not found")
		}
		c.logError("failed to get notification", "id", id, "error", err.Error())
		return c.jsonError(ctx, http.StatusInternalServerError, "failed to get notification")
	}

	return ctx.JSON(http.StatusOK, toNotificationResponse(n))
}

// CreateNotification registers a new notification and returns its wire form.
func (c *Controller) CreateNotification(ctx echo.Context) error {
	if !notification.IsInitialized() {
		return c.serviceUnavailable(ctx)
	}

	var req createNotificationRequest
	if err := ctx.Bind(&req); err != nil {
		return c.jsonError(ctx, http.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Title) == "" {
		return c.jsonError(ctx, http.StatusBadRequest, "title is required")
	}
	if req.DurationMs != nil && *req.DurationMs < 0 {
		return c.jsonError(ctx, http.StatusBadRequest, "durationMs must not be negative")
	}

	var opts []notification.NotifyOption
	if req.Severity != "" {
		severity, ok := notification.ParseSeverity(req.Severity)
		if !ok {
			return c.jsonError(ctx, http.StatusBadRequest, "unknown severity: "+req.Severity)
		}
		opts = append(opts, notification.WithSeverity(severity))
	}
	if req.Component != "" {
		opts = append(opts, notification.WithComponent(req.Component))
	}
	if req.DurationMs != nil {
		opts = append(opts, notification.WithDuration(time.Duration(*req.DurationMs)*time.Millisecond))
	}

	n, err := notification.GetService().Notify(req.Title, req.Description, opts...)
	if err != nil {
		return c.notificationError(ctx, err)
	}

	c.logDebug("notification created via API", "id", n.ID, "severity", string(n.Severity))
	return ctx.JSON(http.StatusCreated, toNotificationResponse(n))
}

// DeleteNotification dismisses a notification. Dismissal is idempotent, so
// unknown IDs still return 204.
func (c *Controller) DeleteNotification(ctx echo.Context) error {
	if !notification.IsInitialized() {
		return c.serviceUnavailable(ctx)
	}

	id := ctx.Param("id")
	if id == "" {
		return c.jsonError(ctx, http.StatusBadRequest, "notification ID is required")
	}

	notification.GetService().Dismiss(id)
	return ctx.NoContent(http.StatusNoContent)
}

// notificationError maps a notification service error to an HTTP response.
func (c *Controller) notificationError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, notification.ErrServiceNotInitialized):
		return c.serviceUnavailable(ctx)
	case errors.IsCategory(err, errors.CategoryLimit):
		return c.jsonError(ctx, http.StatusTooManyRequests, "notification rate limit exceeded")
	case errors.IsCategory(err, errors.CategoryValidation):
		return c.jsonError(ctx, http.StatusBadRequest, err.Error())
	default:
		c.logError("notification request failed", "error", err.Error())
		return c.jsonError(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func (c *Controller) serviceUnavailable(ctx echo.Context) error {
	return c.jsonError(ctx, http.StatusServiceUnavailable, "notification service not available")
}

// StreamNotifications handles the SSE endpoint streaming notification and
// toast events to the dashboard. Connections are capped at
// maxSSEConnectionDuration and kept alive with heartbeats.
func (c *Controller) StreamNotifications(ctx echo.Context) error {
	if !notification.IsInitialized() {
		return c.serviceUnavailable(ctx)
	}

	connectionStart := time.Now()
	if c.metrics != nil && c.metrics.HTTP != nil {
		c.metrics.HTTP.SSEConnectionStarted(sseEndpoint)
		defer func() {
			reason := contextString(ctx.Request().Context())
			c.metrics.HTTP.SSEConnectionClosed(sseEndpoint, time.Since(connectionStart).Seconds(), reason)
		}()
	}

	// Cap the connection lifetime so abandoned streams cannot pile up.
	timeoutCtx, cancel := context.WithTimeout(ctx.Request().Context(), maxSSEConnectionDuration)
	defer cancel()
	ctx.SetRequest(ctx.Request().WithContext(timeoutCtx))

	sub, clientID, err := c.setupNotificationStream(ctx)
	if err != nil {
		return err
	}
	service := notification.GetService()
	defer service.Unsubscribe(sub)

	c.logDebug("SSE client connected", "client_id", clientID, "ip", ctx.RealIP())
	defer c.logDebug("SSE client disconnected", "client_id", clientID,
		"duration", time.Since(connectionStart).String())

	return c.runNotificationEventLoop(ctx, sub)
}

// setupNotificationStream prepares SSE headers, subscribes to the
// notification service and confirms the connection to the client.
func (c *Controller) setupNotificationStream(ctx echo.Context) (*notification.Subscriber, string, error) {
	clientID := uuid.New().String()

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.Header().Set("Access-Control-Allow-Origin", "*")
	resp.Header().Set("Access-Control-Allow-Headers", "Cache-Control")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	sub := notification.GetService().Subscribe()

	connected := map[string]string{
		"clientId": clientID,
		"message":  "Connected to notification stream",
	}
	if err := c.sendSSEMessage(ctx, "connected", connected); err != nil {
		notification.GetService().Unsubscribe(sub)
		return nil, "", err
	}

	return sub, clientID, nil
}

// runNotificationEventLoop pumps events and heartbeats until the client
// disconnects, the connection cap fires or the service shuts down.
func (c *Controller) runNotificationEventLoop(ctx echo.Context, sub *notification.Subscriber) error {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				// Service stopped and closed the subscriber channel.
				return nil
			}
			if err := c.sendStreamEvent(ctx, event); err != nil {
				c.recordSSEError("write_failed")
				return nil
			}

		case <-heartbeat.C:
			payload := map[string]string{"timestamp": time.Now().Format(time.RFC3339)}
			if err := c.sendSSEMessage(ctx, "heartbeat", payload); err != nil {
				c.recordSSEError("heartbeat_failed")
				return nil
			}
			c.recordSSEMessage("heartbeat")

		case <-ctx.Request().Context().Done():
			// Client disconnected or the connection cap was reached.
			return nil

		case <-sub.Context().Done():
			return nil
		}
	}
}

// sendStreamEvent forwards a notification lifecycle event to the client.
// Toast notifications go out under their own event name so the dashboard can
// route them to the transient toast rail.
func (c *Controller) sendStreamEvent(ctx echo.Context, event notification.Event) error {
	if event.Notification == nil {
		return nil
	}

	eventName := "notification"
	if notification.IsToast(event.Notification) {
		eventName = "toast"
	}

	payload := streamEventPayload{
		Action:       string(event.Action),
		Notification: toNotificationResponse(event.Notification),
		Active:       event.Active,
	}

	if err := c.sendSSEMessage(ctx, eventName, payload); err != nil {
		return err
	}
	c.recordSSEMessage(eventName)
	return nil
}

func (c *Controller) recordSSEMessage(messageType string) {
	if c.metrics != nil && c.metrics.HTTP != nil {
		c.metrics.HTTP.RecordSSEMessageSent(sseEndpoint, messageType)
	}
}

func (c *Controller) recordSSEError(errorType string) {
	if c.metrics != nil && c.metrics.HTTP != nil {
		c.metrics.HTTP.RecordSSEError(sseEndpoint, errorType)
	}
}
