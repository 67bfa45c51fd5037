package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/raolivei/canopy-go/internal/errors"
)

// sendSSEMessage writes a single SSE frame and flushes it to the client. A
// write deadline keeps one stalled client from parking the handler forever.
func (c *Controller) sendSSEMessage(ctx echo.Context, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return errors.New(err).
			Component("api").
			Category(errors.CategoryBroadcast).
			Context("operation", "marshal_sse_payload").
			Context("event", event).
			Build()
	}

	message := fmt.Sprintf("event: %s\ndata: %s\n\n", event, jsonData)

	if deadliner, ok := ctx.Response().Writer.(interface{ SetWriteDeadline(time.Time) error }); ok {
		if err := deadliner.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
			c.logWarn("failed to set SSE write deadline", "event", event, "error", err.Error())
		}
	}

	if _, err := ctx.Response().Write([]byte(message)); err != nil {
		return errors.New(err).
			Component("api").
			Category(errors.CategoryBroadcast).
			Context("operation", "write_sse_frame").
			Context("event", event).
			Build()
	}

	ctx.Response().Flush()
	return nil
}
