package notification

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ToastType classifies a toast message for the front end.
type ToastType string

const (
	ToastTypeInfo    ToastType = "info"
	ToastTypeSuccess ToastType = "success"
	ToastTypeWarning ToastType = "warning"
	ToastTypeError   ToastType = "error"
)

// Metadata keys used to carry toast fields on a notification.
const (
	// MetadataKeyIsToast identifies toast notifications in metadata
	MetadataKeyIsToast = "isToast"
	// MetadataKeyToastType carries the original toast type
	MetadataKeyToastType = "toastType"
	// MetadataKeyToastID carries the toast's own id
	MetadataKeyToastID = "toastId"
	// MetadataKeyToastDuration carries the display duration in milliseconds
	MetadataKeyToastDuration = "duration"
	// MetadataKeyToastAction carries the optional action button
	MetadataKeyToastAction = "action"
)

// toastNotificationTitle is the fixed title toasts carry through the
// registry; toasts render from their message alone.
const toastNotificationTitle = "Toast Message"

// Severity maps the toast type onto a notification severity.
func (tt ToastType) Severity() Severity {
	switch tt {
	case ToastTypeError:
		return SeverityDanger
	case ToastTypeSuccess:
		return SeveritySuccess
	case ToastTypeWarning:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// ParseToastType converts a raw wire string into a ToastType. Unknown values
// fall back to info, mirroring the display-side policy for severities.
func ParseToastType(raw string) ToastType {
	switch ToastType(strings.ToLower(strings.TrimSpace(raw))) {
	case ToastTypeSuccess:
		return ToastTypeSuccess
	case ToastTypeError:
		return ToastTypeError
	case ToastTypeWarning:
		return ToastTypeWarning
	default:
		return ToastTypeInfo
	}
}

// ToastAction describes an optional action attached to a toast.
type ToastAction struct {
	Label   string `json:"label"`
	URL     string `json:"url,omitempty"`
	Handler string `json:"handler,omitempty"`
}

// Toast is the ephemeral message surfaced by the dashboard. It rides the
// notification system as a regular notification tagged with toast metadata,
// so the registry, scheduler, and feed treat it like any other entry.
type Toast struct {
	ID        string       `json:"id"`
	Message   string       `json:"message"`
	Type      ToastType    `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Component string       `json:"component,omitempty"`
	Duration  int          `json:"duration,omitempty"` // display duration in milliseconds, 0 means service default
	Action    *ToastAction `json:"action,omitempty"`
}

// NewToast creates a toast with a fresh unique ID and timestamp.
func NewToast(message string, toastType ToastType) *Toast {
	return &Toast{
		ID:        uuid.New().String(),
		Message:   message,
		Type:      toastType,
		Timestamp: time.Now(),
	}
}

// WithDuration sets the display duration in milliseconds and returns the
// toast for chaining.
func (t *Toast) WithDuration(durationMs int) *Toast {
	t.Duration = durationMs
	return t
}

// WithComponent sets the originating component and returns the toast for chaining
func (t *Toast) WithComponent(component string) *Toast {
	t.Component = component
	return t
}

// WithAction attaches an action button and returns the toast for chaining
func (t *Toast) WithAction(label, url, handler string) *Toast {
	t.Action = &ToastAction{
		Label:   label,
		URL:     url,
		Handler: handler,
	}
	return t
}

// ToNotification converts the toast into the notification that enters the
// registry. The toast's own id is preserved in metadata; the notification
// gets a fresh one. A positive duration becomes the auto-dismiss delay,
// otherwise the duration is left unset for the publisher to default.
func (t *Toast) ToNotification() *Notification {
	n := NewNotification(t.Type.Severity(), toastNotificationTitle, t.Message)

	if t.Component != "" {
		n.WithComponent(t.Component)
	}

	n.WithMetadata(MetadataKeyIsToast, true)
	n.WithMetadata(MetadataKeyToastType, string(t.Type))
	n.WithMetadata(MetadataKeyToastID, t.ID)

	if t.Duration > 0 {
		n.WithMetadata(MetadataKeyToastDuration, t.Duration)
		n.WithDuration(time.Duration(t.Duration) * time.Millisecond)
	}
	if t.Action != nil {
		n.WithMetadata(MetadataKeyToastAction, t.Action)
	}

	return n
}

// IsToast reports whether a notification carries the toast metadata flag.
func IsToast(n *Notification) bool {
	if n == nil || n.Metadata == nil {
		return false
	}
	isToast, ok := n.Metadata[MetadataKeyIsToast].(bool)
	return ok && isToast
}

// SendToast publishes a toast through the global service with the default
// duration. Returns ErrServiceNotInitialized outside an initialized scope.
func SendToast(message string, toastType ToastType, component string) (*Notification, error) {
	return SendToastWithDuration(message, toastType, component, 0)
}

// SendToastWithDuration publishes a toast with an explicit display duration
// in milliseconds. Zero or negative durations use the service default.
func SendToastWithDuration(message string, toastType ToastType, component string, durationMs int) (*Notification, error) {
	service := GetService()
	if service == nil {
		return nil, ErrServiceNotInitialized
	}

	toast := NewToast(message, toastType)
	if component != "" {
		toast.WithComponent(component)
	}
	if durationMs > 0 {
		toast.WithDuration(durationMs)
	}
	return service.PublishToast(toast)
}
