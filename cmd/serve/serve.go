// Package serve starts the Canopy web server.
package serve

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/raolivei/canopy-go/internal/api"
	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/currency"
	"github.com/raolivei/canopy-go/internal/logging"
	"github.com/raolivei/canopy-go/internal/notification"
	"github.com/raolivei/canopy-go/internal/observability"
	"github.com/raolivei/canopy-go/internal/telemetry"
)

// Command creates the serve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		Long:  "Serve the Canopy dashboard API: notification streaming, currency conversion and health endpoints.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(settings)
		},
	}

	setupFlags(cmd, settings)
	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVar(&settings.Currency.BaseCurrency, "base-currency", viper.GetString("currency.basecurrency"), "Default base currency for conversions")
	cmd.Flags().BoolVar(&settings.WebServer.Debug, "webdebug", viper.GetBool("webserver.debug"), "Enable web server debug logging")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
}

// Run assembles the service stack and blocks until the server stops.
func Run(settings *conf.Settings) error {
	if err := telemetry.InitSentry(settings); err != nil {
		logging.Warn("telemetry initialization failed", "error", err.Error())
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	service := notification.Initialize(notificationConfig(settings))
	service.SetMetrics(metrics.Notification)
	notification.SetupErrorIntegration()

	currencyService := currency.NewService(&settings.Currency, nil)
	currencyService.SetMetrics(metrics.Currency)

	server := api.NewServer(settings, currencyService, metrics)

	if _, err := notification.NotifySuccess("Service started",
		fmt.Sprintf("Canopy %s listening on port %s", settings.Version, settings.WebServer.Port)); err != nil {
		logging.Warn("failed to publish startup notification", "error", err.Error())
	}

	serveErr := server.Start()

	notification.Stop()
	telemetry.Flush()
	if err := currency.CloseLogger(); err != nil {
		logging.Warn("failed to close currency log", "error", err.Error())
	}
	if err := notification.CloseLogger(); err != nil {
		logging.Warn("failed to close notification log", "error", err.Error())
	}

	return serveErr
}

// notificationConfig maps the notification settings onto a service config.
func notificationConfig(settings *conf.Settings) *notification.ServiceConfig {
	cfg := notification.DefaultServiceConfig()
	if settings == nil {
		return cfg
	}

	cfg.Debug = settings.Notification.Debug || settings.Debug
	if settings.Notification.DefaultDuration > 0 {
		cfg.DefaultDuration = settings.Notification.DefaultDuration
	}
	if settings.Notification.SubscriberBuffer > 0 {
		cfg.SubscriberBuffer = settings.Notification.SubscriberBuffer
	}
	if settings.Notification.RateLimitWindow > 0 {
		cfg.RateLimitWindow = settings.Notification.RateLimitWindow
	}
	if settings.Notification.RateLimitMaxEvents > 0 {
		cfg.RateLimitMaxEvents = settings.Notification.RateLimitMaxEvents
	}
	return cfg
}
