package notification

import (
	"github.com/raolivei/canopy-go/internal/errors"
)

// errorNotificationHook surfaces operationally relevant errors on the
// dashboard. Only categories that indicate a broken deployment produce a
// notification; transient request-level failures stay in the logs.
func errorNotificationHook(ee *errors.EnhancedError) {
	if !IsInitialized() {
		return
	}

	severity, relevant := severityForErrorCategory(ee.Category)
	if !relevant {
		return
	}

	service := GetService()
	if service == nil {
		return
	}

	component := ee.GetComponent()
	_, _ = service.Notify("Service error", ee.Error(),
		WithSeverity(severity),
		WithComponent(component),
		WithMetadata("error_category", string(ee.Category)),
	)
}

// severityForErrorCategory maps an error category to a notification
// severity. The second return reports whether the category warrants a
// notification at all. Limit errors are excluded so a rate-limited Notify
// call inside the hook can never re-enter it.
func severityForErrorCategory(category errors.ErrorCategory) (Severity, bool) {
	switch category {
	case errors.CategoryConfiguration:
		return SeverityDanger, true
	case errors.CategorySystem:
		return SeverityDanger, true
	case errors.CategoryFileIO:
		return SeverityWarning, true
	default:
		return SeverityInfo, false
	}
}

// SetupErrorIntegration registers the notification hook with the errors
// package. Call once after Initialize.
func SetupErrorIntegration() {
	errors.AddErrorHook(errorNotificationHook)
}
