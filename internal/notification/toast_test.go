package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raolivei/canopy-go/internal/errors"
)

func TestParseToastType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want ToastType
	}{
		{"info", ToastTypeInfo},
		{"success", ToastTypeSuccess},
		{"warning", ToastTypeWarning},
		{"error", ToastTypeError},
		{"ERROR", ToastTypeError},
		{"  Success ", ToastTypeSuccess},
		{"fatal", ToastTypeInfo},
		{"", ToastTypeInfo},
	}

	for _, tt := range tests {
		t.Run("raw_"+tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseToastType(tt.raw))
		})
	}
}

func TestToastTypeSeverity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SeverityDanger, ToastTypeError.Severity())
	assert.Equal(t, SeveritySuccess, ToastTypeSuccess.Severity())
	assert.Equal(t, SeverityWarning, ToastTypeWarning.Severity())
	assert.Equal(t, SeverityInfo, ToastTypeInfo.Severity())
	assert.Equal(t, SeverityInfo, ToastType("bogus").Severity())
}

func TestNewToast(t *testing.T) {
	t.Parallel()

	toast := NewToast("saved", ToastTypeSuccess)

	_, err := uuid.Parse(toast.ID)
	assert.NoError(t, err)
	assert.Equal(t, "saved", toast.Message)
	assert.Equal(t, ToastTypeSuccess, toast.Type)
	assert.WithinDuration(t, time.Now(), toast.Timestamp, time.Second)
	assert.Zero(t, toast.Duration)
	assert.Nil(t, toast.Action)
}

func TestToastBuilders(t *testing.T) {
	t.Parallel()

	toast := NewToast("rates refreshed", ToastTypeInfo).
		WithDuration(2500).
		WithComponent("currency").
		WithAction("View rates", "/rates", "showRates")

	assert.Equal(t, 2500, toast.Duration)
	assert.Equal(t, "currency", toast.Component)
	require.NotNil(t, toast.Action)
	assert.Equal(t, "View rates", toast.Action.Label)
	assert.Equal(t, "/rates", toast.Action.URL)
	assert.Equal(t, "showRates", toast.Action.Handler)
}

func TestToastToNotification(t *testing.T) {
	t.Parallel()

	toast := NewToast("export complete", ToastTypeSuccess).
		WithComponent("export").
		WithDuration(3000)
	n := toast.ToNotification()

	assert.NotEqual(t, toast.ID, n.ID, "the notification gets its own id")
	assert.Equal(t, "Toast Message", n.Title)
	assert.Equal(t, "export complete", n.Message)
	assert.Equal(t, SeveritySuccess, n.Severity)
	assert.Equal(t, "export", n.Component)
	assert.Equal(t, 3*time.Second, n.Duration)

	assert.Equal(t, true, n.Metadata[MetadataKeyIsToast])
	assert.Equal(t, "success", n.Metadata[MetadataKeyToastType])
	assert.Equal(t, toast.ID, n.Metadata[MetadataKeyToastID])
	assert.Equal(t, 3000, n.Metadata[MetadataKeyToastDuration])
}

func TestToastToNotificationNoDuration(t *testing.T) {
	t.Parallel()

	n := NewToast("short lived", ToastTypeWarning).ToNotification()

	assert.Zero(t, n.Duration, "duration left for the publisher to default")
	assert.NotContains(t, n.Metadata, MetadataKeyToastDuration)
	assert.NotContains(t, n.Metadata, MetadataKeyToastAction)
}

func TestToastToNotificationAction(t *testing.T) {
	t.Parallel()

	toast := NewToast("link ready", ToastTypeInfo).WithAction("Open", "https://example.org", "")
	n := toast.ToNotification()

	action, ok := n.Metadata[MetadataKeyToastAction].(*ToastAction)
	require.True(t, ok)
	assert.Equal(t, "Open", action.Label)
}

func TestIsToast(t *testing.T) {
	t.Parallel()

	assert.False(t, IsToast(nil))
	assert.False(t, IsToast(NewNotification(SeverityInfo, "plain", "")))

	tagged := NewToast("tagged", ToastTypeInfo).ToNotification()
	assert.True(t, IsToast(tagged))

	corrupted := NewNotification(SeverityInfo, "odd", "").WithMetadata(MetadataKeyIsToast, "yes")
	assert.False(t, IsToast(corrupted), "non-boolean flag does not count")
}

func TestPublishToast(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	sub := svc.Subscribe()

	n, err := svc.PublishToast(NewToast("imported 4 transactions", ToastTypeSuccess))
	require.NoError(t, err)

	assert.True(t, IsToast(n))
	assert.Equal(t, time.Minute, n.Duration,
		"toasts without an explicit duration use the default instead of sticking")
	assert.False(t, n.Sticky())
	assert.Equal(t, 1, svc.scheduler.Pending())

	events := drainEvents(t, sub, 1, time.Second)
	require.Len(t, events, 1)
	assert.True(t, IsToast(events[0].Notification))
}

func TestPublishToastValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.PublishToast(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	_, err = svc.PublishToast(NewToast("", ToastTypeInfo))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	assert.Equal(t, 0, svc.Active())
}

func TestPublishToastExplicitDuration(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	n, err := svc.PublishToast(NewToast("quick", ToastTypeInfo).WithDuration(1200))
	require.NoError(t, err)
	assert.Equal(t, 1200*time.Millisecond, n.Duration)
}

func TestSendToastHelpers(t *testing.T) {
	svc := newTestService(t)
	withGlobalService(t, svc)

	n, err := SendToast("hello", ToastTypeWarning, "budget")
	require.NoError(t, err)
	assert.True(t, IsToast(n))
	assert.Equal(t, SeverityWarning, n.Severity)
	assert.Equal(t, "budget", n.Component)
	assert.Equal(t, time.Minute, n.Duration)

	n, err = SendToastWithDuration("timed", ToastTypeInfo, "", 500)
	require.NoError(t, err)
	assert.Empty(t, n.Component)
	assert.Equal(t, 500*time.Millisecond, n.Duration)
	assert.Equal(t, 500, n.Metadata[MetadataKeyToastDuration])
}

func TestSendToastUninitialized(t *testing.T) {
	withGlobalService(t, nil)

	_, err := SendToast("nobody home", ToastTypeInfo, "")
	assert.ErrorIs(t, err, ErrServiceNotInitialized)

	_, err = SendToastWithDuration("nobody home", ToastTypeInfo, "", 100)
	assert.ErrorIs(t, err, ErrServiceNotInitialized)
}
