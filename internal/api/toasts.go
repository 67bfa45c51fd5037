package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/raolivei/canopy-go/internal/notification"
)

// createToastRequest is the POST /toasts payload. Type is lenient: unknown
// values fall back to an info toast. DurationMs is a pointer so an absent
// field picks up the toast default.
type createToastRequest struct {
	Message    string `json:"message"`
	Type       string `json:"type"`
	Component  string `json:"component"`
	DurationMs *int64 `json:"durationMs"`
}

func (c *Controller) initToastRoutes() {
	c.Group.POST("/toasts", c.CreateToast)
}

// CreateToast publishes a transient toast message to all stream subscribers.
func (c *Controller) CreateToast(ctx echo.Context) error {
	if !notification.IsInitialized() {
		return c.serviceUnavailable(ctx)
	}

	var req createToastRequest
	if err := ctx.Bind(&req); err != nil {
		return c.jsonError(ctx, http.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.jsonError(ctx, http.StatusBadRequest, "message is required")
	}
	if req.DurationMs != nil && *req.DurationMs < 0 {
		return c.jsonError(ctx, http.StatusBadRequest, "durationMs must not be negative")
	}

	component := req.Component
	if component == "" {
		component = "api"
	}

	toast := notification.NewToast(req.Message, notification.ParseToastType(req.Type)).
		WithComponent(component)
	if req.DurationMs != nil {
		toast = toast.WithDuration(int(*req.DurationMs))
	}

	n, err := notification.GetService().PublishToast(toast)
	if err != nil {
		return c.notificationError(ctx, err)
	}

	c.logDebug("toast published via API", "id", n.ID, "type", req.Type)
	return ctx.JSON(http.StatusCreated, toNotificationResponse(n))
}
