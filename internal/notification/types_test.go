package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity Severity
		want     bool
	}{
		{SeveritySuccess, true},
		{SeverityDanger, true},
		{SeverityWarning, true},
		{SeverityInfo, true},
		{Severity("critical"), false},
		{Severity("INFO"), false},
		{Severity(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.severity.Valid())
		})
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		want  Severity
		valid bool
	}{
		{"plain", "info", SeverityInfo, true},
		{"uppercase", "DANGER", SeverityDanger, true},
		{"mixed case with spaces", "  Warning ", SeverityWarning, true},
		{"success", "success", SeveritySuccess, true},
		{"unknown", "critical", Severity("critical"), false},
		{"empty", "", Severity(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseSeverity(tt.raw)
			assert.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNewNotification(t *testing.T) {
	t.Parallel()

	before := time.Now()
	n := NewNotification(SeverityWarning, "Budget exceeded", "Groceries over by $42")

	_, err := uuid.Parse(n.ID)
	require.NoError(t, err, "ID must be a valid UUID")

	assert.Equal(t, SeverityWarning, n.Severity)
	assert.Equal(t, "Budget exceeded", n.Title)
	assert.Equal(t, "Groceries over by $42", n.Message)
	assert.False(t, n.Timestamp.Before(before))
	assert.NotNil(t, n.Metadata)
	assert.Empty(t, n.Metadata)
	assert.True(t, n.Sticky(), "duration defaults to zero, which is sticky")
}

func TestNewNotificationUniqueIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 100 {
		n := NewNotification(SeverityInfo, "x", "")
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestNotificationBuilders(t *testing.T) {
	t.Parallel()

	n := NewNotification(SeverityInfo, "t", "m").
		WithComponent("currency").
		WithMetadata("base", "USD").
		WithDuration(3 * time.Second)

	assert.Equal(t, "currency", n.Component)
	assert.Equal(t, "USD", n.Metadata["base"])
	assert.Equal(t, 3*time.Second, n.Duration)
	assert.False(t, n.Sticky())
}

func TestNotificationSticky(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		want     bool
	}{
		{"zero", 0, true},
		{"negative", -time.Second, true},
		{"positive", time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n := NewNotification(SeverityInfo, "t", "").WithDuration(tt.duration)
			assert.Equal(t, tt.want, n.Sticky())
		})
	}
}

func TestNotificationClone(t *testing.T) {
	t.Parallel()

	n := NewNotification(SeverityDanger, "original", "message").
		WithComponent("api").
		WithDuration(5 * time.Second).
		WithMetadata("tags", []string{"a", "b"}).
		WithMetadata("nested", map[string]any{"key": "value"})

	clone := n.Clone()
	require.NotNil(t, clone)
	require.NotSame(t, n, clone)

	assert.Equal(t, n.ID, clone.ID)
	assert.Equal(t, n.Severity, clone.Severity)
	assert.Equal(t, n.Title, clone.Title)
	assert.Equal(t, n.Message, clone.Message)
	assert.Equal(t, n.Component, clone.Component)
	assert.Equal(t, n.Duration, clone.Duration)
	assert.True(t, n.Timestamp.Equal(clone.Timestamp))

	// Nested metadata must be deep-copied in both directions.
	clone.Metadata["new"] = true
	cloneTags := clone.Metadata["tags"].([]string)
	cloneTags[0] = "mutated"
	cloneNested := clone.Metadata["nested"].(map[string]any)
	cloneNested["key"] = "mutated"

	assert.NotContains(t, n.Metadata, "new")
	assert.Equal(t, "a", n.Metadata["tags"].([]string)[0])
	assert.Equal(t, "value", n.Metadata["nested"].(map[string]any)["key"])
}

func TestNotificationCloneNil(t *testing.T) {
	t.Parallel()

	var n *Notification
	assert.Nil(t, n.Clone())
}

func TestNotificationCloneNilMetadata(t *testing.T) {
	t.Parallel()

	n := &Notification{ID: "x", Title: "bare"}
	clone := n.Clone()
	require.NotNil(t, clone)
	assert.Nil(t, clone.Metadata)
}

func TestDeepCopyMetadata(t *testing.T) {
	t.Parallel()

	src := map[string]any{
		"string": "value",
		"number": 42.5,
		"bool":   true,
		"slice":  []any{"one", map[string]any{"two": 2}},
		"map":    map[string]any{"inner": []int{1, 2, 3}},
		"nil":    nil,
	}

	dst := deepCopyMetadata(src)
	require.Equal(t, src, dst)

	// Mutations through the copy must not reach the source.
	dst["slice"].([]any)[0] = "changed"
	dst["map"].(map[string]any)["inner"].([]int)[0] = 99

	assert.Equal(t, "one", src["slice"].([]any)[0])
	assert.Equal(t, 1, src["map"].(map[string]any)["inner"].([]int)[0])
}

func TestDeepCopyMetadataNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, deepCopyMetadata(nil))
}
