package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateToast(t *testing.T) {
	svc := withNotificationService(t)
	c := newTestController(t, nil)

	rec := performRequest(c, http.MethodPost, "/api/v2/toasts",
		`{"message":"Imported 12 transactions","type":"success","component":"import"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp notificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Toast Message", resp.Title)
	assert.Equal(t, "Imported 12 transactions", resp.Description)
	assert.Equal(t, "success", resp.Severity)
	assert.Equal(t, "success", resp.Style)
	assert.Equal(t, "import", resp.Component)
	assert.Equal(t, true, resp.Metadata["isToast"])
	assert.Equal(t, "success", resp.Metadata["toastType"])
	assert.False(t, resp.Sticky, "toasts always expire")
	assert.Equal(t, int64(30000), resp.DurationMs, "default duration applies when omitted")

	assert.Equal(t, 1, svc.Active())
}

func TestCreateToastErrorType(t *testing.T) {
	withNotificationService(t)
	c := newTestController(t, nil)

	rec := performRequest(c, http.MethodPost, "/api/v2/toasts",
		`{"message":"Sync failed","type":"error"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp notificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "danger", resp.Severity, "error toasts map to danger severity")
	assert.Equal(t, "error", resp.Style)
	assert.Equal(t, "api", resp.Component, "component defaults when omitted")
}

func TestCreateToastUnknownTypeFallsBackToInfo(t *testing.T) {
	withNotificationService(t)
	c := newTestController(t, nil)

	rec := performRequest(c, http.MethodPost, "/api/v2/toasts",
		`{"message":"odd one","type":"sparkle"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp notificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "info", resp.Severity)
	assert.Equal(t, "info", resp.Metadata["toastType"])
}

func TestCreateToastExplicitDuration(t *testing.T) {
	withNotificationService(t)
	c := newTestController(t, nil)

	rec := performRequest(c, http.MethodPost, "/api/v2/toasts",
		`{"message":"quick","durationMs":1500}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp notificationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1500), resp.DurationMs)
}

func TestCreateToastValidation(t *testing.T) {
	withNotificationService(t)
	c := newTestController(t, nil)

	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"missing message", `{"type":"info"}`, "message is required"},
		{"blank message", `{"message":"  "}`, "message is required"},
		{"negative duration", `{"message":"x","durationMs":-1}`, "durationMs must not be negative"},
		{"malformed body", `{"message":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performRequest(c, http.MethodPost, "/api/v2/toasts", tt.payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body.Error)
		})
	}
}

func TestCreateToastUninitialized(t *testing.T) {
	withoutNotificationService(t)
	c := newTestController(t, nil)

	rec := performRequest(c, http.MethodPost, "/api/v2/toasts", `{"message":"hello"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
