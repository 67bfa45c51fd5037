package notification

// Package-level helpers mirror the Service methods for callers outside the
// explicit wiring path, such as CLI subcommands. Unlike the methods they can
// be reached before Initialize; that is a wiring bug, and every helper
// reports it as ErrServiceNotInitialized rather than dropping the operation
// silently.

// Notify creates a notification through the global service.
func Notify(title, message string) (*Notification, error) {
	return NotifyWithOptions(title, message)
}

// NotifyWithOptions creates a notification through the global service with
// explicit options.
func NotifyWithOptions(title, message string, opts ...NotifyOption) (*Notification, error) {
	service := GetService()
	if service == nil {
		return nil, ErrServiceNotInitialized
	}
	return service.Notify(title, message, opts...)
}

// Dismiss removes a notification through the global service. Unknown ids
// are no-ops; the only possible error is an uninitialized service.
func Dismiss(id string) error {
	service := GetService()
	if service == nil {
		return ErrServiceNotInitialized
	}
	service.Dismiss(id)
	return nil
}

// ListActive returns the active notifications, oldest first.
func ListActive() ([]*Notification, error) {
	service := GetService()
	if service == nil {
		return nil, ErrServiceNotInitialized
	}
	return service.List()
}

// NotifySuccess creates a success notification.
func NotifySuccess(title, message string) (*Notification, error) {
	return NotifyWithOptions(title, message, WithSeverity(SeveritySuccess))
}

// NotifyInfo creates an informational notification.
func NotifyInfo(title, message string) (*Notification, error) {
	return NotifyWithOptions(title, message, WithSeverity(SeverityInfo))
}

// NotifyWarning creates a warning notification.
func NotifyWarning(title, message string) (*Notification, error) {
	return NotifyWithOptions(title, message, WithSeverity(SeverityWarning))
}

// NotifyDanger creates a danger notification.
func NotifyDanger(title, message string) (*Notification, error) {
	return NotifyWithOptions(title, message, WithSeverity(SeverityDanger))
}
