package notification

import (
	"io"
	"log/slog"
	"sync"

	"github.com/raolivei/canopy-go/internal/logging"
)

// Package-level file logger for the notification service, created lazily so
// importing the package never touches the filesystem.
var (
	notificationLogger     *slog.Logger
	notificationLogCloser  func() error
	notificationLevelVar   = new(slog.LevelVar)
	notificationLoggerOnce sync.Once
)

// getFileLogger returns the shared notification logger. The debug parameter
// picks the initial level; SetDebugLevel adjusts it later without reopening
// the log file.
func getFileLogger(debug bool) *slog.Logger {
	notificationLoggerOnce.Do(func() {
		if debug {
			notificationLevelVar.Set(slog.LevelDebug)
		} else {
			notificationLevelVar.Set(slog.LevelInfo)
		}

		var err error
		notificationLogger, notificationLogCloser, err = logging.NewFileLogger(
			"logs/notifications.log", "notifications", notificationLevelVar)
		if err != nil {
			// Service start must not fail on logging setup; fall back to a
			// disabled logger.
			notificationLogger = slog.New(slog.NewJSONHandler(io.Discard, nil)).
				With("service", "notifications")
			notificationLogCloser = func() error { return nil }
			logging.Error("failed to initialize notifications file logger", "error", err)
		}
	})

	return notificationLogger
}

// CloseLogger closes the notification log file, if one was opened.
func CloseLogger() error {
	if notificationLogCloser != nil {
		return notificationLogCloser()
	}
	return nil
}

// SetLogLevel dynamically changes the logging level for the notification logger.
func SetLogLevel(level slog.Level) {
	notificationLevelVar.Set(level)
}

// SetDebugLevel sets the logging level based on debug mode.
func SetDebugLevel(debug bool) {
	if debug {
		notificationLevelVar.Set(slog.LevelDebug)
	} else {
		notificationLevelVar.Set(slog.LevelInfo)
	}
}

// discardLogger returns a logger that drops everything. Tests swap it in to
// keep output quiet.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
