// Package notification implements the transient notification ("toast")
// subsystem of the Canopy dashboard: an ordered in-memory registry of active
// notifications, per-notification auto-dismiss timers, and a read-only
// subscription feed consumed by render surfaces.
package notification

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raolivei/canopy-go/internal/errors"
)

// Severity classifies a notification for display purposes.
type Severity string

const (
	// SeveritySuccess indicates a completed action (e.g. "Saved")
	SeveritySuccess Severity = "success"
	// SeverityDanger indicates a failure the user should see
	SeverityDanger Severity = "danger"
	// SeverityWarning indicates a condition that needs attention
	SeverityWarning Severity = "warning"
	// SeverityInfo is the default, neutral severity
	SeverityInfo Severity = "info"
)

// DefaultSeverity is applied when no severity is given.
const DefaultSeverity = SeverityInfo

// Valid reports whether s is one of the four known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityDanger, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// ParseSeverity converts a raw string (case-insensitive, surrounding
// whitespace ignored) into a Severity. The second return value is false
// when the input names no known severity.
func ParseSeverity(raw string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// Sentinel errors for notification operations
var (
	ErrNotificationNotFound = errors.Newf("notification not found").Component("notification").Category(errors.CategoryNotFound).Build()
)

// Notification represents a single active notification entry.
type Notification struct {
	// ID is the unique identifier, assigned at creation and never reused
	ID string `json:"id"`
	// Severity classifies the notification; unknown values render as info
	Severity Severity `json:"severity"`
	// Title is the short headline text
	Title string `json:"title"`
	// Message provides optional supplementary detail
	Message string `json:"message,omitempty"`
	// Component identifies the originating subsystem (e.g. "currency", "api")
	Component string `json:"component,omitempty"`
	// Timestamp indicates when the notification was created
	Timestamp time.Time `json:"timestamp"`
	// Duration is the auto-dismiss delay; zero or negative means the
	// notification is sticky and stays until explicitly dismissed.
	// Exposed on the wire as durationMs by the API layer.
	Duration time.Duration `json:"-"`
	// Metadata contains additional context-specific data
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewNotification creates a notification with a fresh unique ID and timestamp.
func NewNotification(severity Severity, title, message string) *Notification {
	return &Notification{
		ID:        uuid.New().String(),
		Severity:  severity,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// WithComponent sets the component field and returns the notification for chaining
func (n *Notification) WithComponent(component string) *Notification {
	n.Component = component
	return n
}

// WithMetadata adds metadata and returns the notification for chaining
func (n *Notification) WithMetadata(key string, value any) *Notification {
	if n.Metadata == nil {
		n.Metadata = make(map[string]any)
	}
	n.Metadata[key] = value
	return n
}

// WithDuration sets the auto-dismiss delay and returns the notification for
// chaining. Zero or negative durations make the notification sticky.
func (n *Notification) WithDuration(d time.Duration) *Notification {
	n.Duration = d
	return n
}

// Sticky reports whether the notification stays until explicitly dismissed.
func (n *Notification) Sticky() bool {
	return n.Duration <= 0
}

// Clone creates a deep copy of the notification, including the Metadata map.
// The registry stores clones and the feed broadcasts clones so that no caller
// ever holds a pointer into registry state.
func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}

	clone := &Notification{
		ID:        n.ID,
		Severity:  n.Severity,
		Title:     n.Title,
		Message:   n.Message,
		Component: n.Component,
		Timestamp: n.Timestamp,
		Duration:  n.Duration,
	}

	// Deep copy Metadata map to handle nested structures safely
	if n.Metadata != nil {
		clone.Metadata = deepCopyMetadata(n.Metadata)
	}

	return clone
}

// deepCopyMetadata creates a deep copy of the metadata map that preserves Go types.
// This ensures nested maps/slices are fully copied, preventing concurrent access issues
// when the original metadata is modified while being serialized.
func deepCopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	return deepCopyValue(src).(map[string]any)
}

// deepCopyValue recursively deep copies a value using reflection to handle any
// map or slice type generically. Pointer types and custom structs are copied
// by reference (not dereferenced).
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}

	original := reflect.ValueOf(v)

	// Only maps and slices need copying; they are the reference types that
	// can cause concurrent access issues. Primitives are copied by value.
	switch original.Kind() {
	case reflect.Map:
		newMap := reflect.MakeMap(original.Type())
		iter := original.MapRange()
		for iter.Next() {
			copiedValue := deepCopyValue(iter.Value().Interface())

			// If copiedValue is nil, we need a zero value of the correct type
			if copiedValue == nil {
				newMap.SetMapIndex(iter.Key(), reflect.Zero(iter.Value().Type()))
			} else {
				newMap.SetMapIndex(iter.Key(), reflect.ValueOf(copiedValue))
			}
		}
		return newMap.Interface()

	case reflect.Slice:
		newSlice := reflect.MakeSlice(original.Type(), original.Len(), original.Cap())
		for i := range original.Len() {
			elem := original.Index(i)
			copiedElem := deepCopyValue(elem.Interface())

			if copiedElem == nil {
				newSlice.Index(i).Set(reflect.Zero(elem.Type()))
			} else {
				newSlice.Index(i).Set(reflect.ValueOf(copiedElem))
			}
		}
		return newSlice.Interface()

	default:
		return v
	}
}
