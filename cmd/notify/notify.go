// Package notify sends a test notification through the notification service.
package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/notification"
)

// Command returns a cobra command that publishes a test notification.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		severity   string
		title      string
		message    string
		component  string
		durationMs int64
		wait       time.Duration
		metadata   []string
	)

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send a test notification through the notification service",
		Long: `Send a test notification through the notification service.

Examples:
  # Basic notification
  canopy notify --severity=info --title="Test" --message="Hello"

  # Sticky warning that never auto-dismisses
  canopy notify --severity=warning --title="Budget" --message="Over limit" --duration-ms=0

  # Notification with metadata
  canopy notify --metadata="account=checking" --metadata="amount=120.50"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedSeverity, ok := notification.ParseSeverity(severity)
			if !ok {
				return fmt.Errorf("invalid severity: %s", severity)
			}

			metadataMap, err := parseMetadata(metadata)
			if err != nil {
				return err
			}

			cfg := notification.DefaultServiceConfig()
			cfg.Debug = settings != nil && settings.Debug
			notification.Initialize(cfg)

			opts := []notification.NotifyOption{
				notification.WithSeverity(parsedSeverity),
				notification.WithComponent(component),
			}
			if cmd.Flags().Changed("duration-ms") {
				opts = append(opts, notification.WithDuration(time.Duration(durationMs)*time.Millisecond))
			}
			for key, value := range metadataMap {
				opts = append(opts, notification.WithMetadata(key, value))
			}

			n, err := notification.NotifyWithOptions(title, message, opts...)
			if err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Notification sent: id=%s severity=%s sticky=%t\n", n.ID, n.Severity, n.Sticky())

			if wait > 0 {
				time.Sleep(wait)
				active, err := notification.ListActive()
				if err != nil {
					return fmt.Errorf("failed to list notifications: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Active notifications after %s: %d\n", wait, len(active))
			}

			notification.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&severity, "severity", "info", "Notification severity: success|danger|warning|info")
	cmd.Flags().StringVar(&title, "title", "Test Notification", "Notification title")
	cmd.Flags().StringVar(&message, "message", "This is a test notification", "Notification message")
	cmd.Flags().StringVar(&component, "component", "cli", "Notification component tag")
	cmd.Flags().Int64Var(&durationMs, "duration-ms", 0, "Auto-dismiss delay in milliseconds (0 for sticky)")
	cmd.Flags().DurationVar(&wait, "wait", 0, "Time to wait before reporting active notifications (0 to disable)")
	cmd.Flags().StringSliceVar(&metadata, "metadata", nil, "Metadata key-value pairs in format key=value (supports numbers, booleans, and strings)")

	return cmd
}

// parseMetadata converts key=value pairs, preferring numeric and boolean
// values over plain strings.
func parseMetadata(pairs []string) (map[string]any, error) {
	metadataMap := make(map[string]any)
	for _, kv := range pairs {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid metadata format: %s (expected key=value)", kv)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			metadataMap[key] = floatVal
		} else if boolVal, err := strconv.ParseBool(value); err == nil {
			metadataMap[key] = boolVal
		} else {
			metadataMap[key] = value
		}
	}
	return metadataMap, nil
}
