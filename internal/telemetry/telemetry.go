// Package telemetry wires optional Sentry error reporting into the service.
// Reporting is opt-in: without an explicit enable flag and DSN nothing is
// ever sent.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/errors"
	"github.com/raolivei/canopy-go/internal/logging"
)

const flushTimeout = 2 * time.Second

// InitSentry initializes the Sentry SDK and registers the error reporter.
// It is a no-op when telemetry is disabled in the settings.
func InitSentry(settings *conf.Settings) error {
	if settings == nil || !settings.Sentry.Enabled {
		logging.Info("telemetry disabled (opt-in required)")
		return nil
	}
	if settings.Sentry.DSN == "" {
		return errors.Newf("telemetry enabled but no DSN configured").
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	environment := settings.Sentry.Environment
	if environment == "" {
		environment = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:        settings.Sentry.DSN,
		SampleRate: 1.0,
		Debug:      settings.Sentry.Debug,

		// Keep reports anonymous: no stack traces, no hostname.
		AttachStacktrace: false,
		ServerName:       "",
		Environment:      environment,

		Release: fmt.Sprintf("canopy-go@%s", settings.Version),
	})
	if err != nil {
		return errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("operation", "sentry_init").
			Build()
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", "canopy-go")
	})

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	logging.Info("telemetry initialized", "environment", environment)
	return nil
}

// Flush drains buffered events. Call during shutdown when telemetry was
// initialized.
func Flush() {
	sentry.Flush(flushTimeout)
}
