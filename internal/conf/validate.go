// conf/validate.go

package conf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateLogConfig(&settings.Log, "log"); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateNotificationSettings(&settings.Notification); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateCurrencySettings(&settings.Currency); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}

	return nil
}

func validateLogConfig(logConfig *LogConfig, name string) error {
	if !logConfig.Enabled {
		return nil
	}

	if logConfig.Path == "" {
		return fmt.Errorf("%s path is required when enabled", name)
	}

	switch logConfig.Rotation {
	case RotationDaily, RotationWeekly, RotationSize:
		// valid
	default:
		return fmt.Errorf("%s rotation must be daily, weekly or size, got %q", name, logConfig.Rotation)
	}

	if logConfig.Rotation == RotationSize && logConfig.MaxSize <= 0 {
		return fmt.Errorf("%s maxsize must be positive for size rotation, got %d", name, logConfig.MaxSize)
	}

	return nil
}

func validateNotificationSettings(settings *NotificationSettings) error {
	if settings.SubscriberBuffer < 1 {
		return fmt.Errorf("notification subscriber buffer must be at least 1, got %d", settings.SubscriberBuffer)
	}

	if settings.RateLimitMaxEvents < 1 {
		return fmt.Errorf("notification rate limit max events must be at least 1, got %d", settings.RateLimitMaxEvents)
	}

	if settings.RateLimitWindow <= 0 {
		return fmt.Errorf("notification rate limit window must be positive, got %s", settings.RateLimitWindow)
	}

	return nil
}

func validateCurrencySettings(settings *CurrencySettings) error {
	code := strings.ToUpper(strings.TrimSpace(settings.BaseCurrency))
	if len(code) != 3 {
		return fmt.Errorf("currency base currency must be a 3-letter ISO 4217 code, got %q", settings.BaseCurrency)
	}
	settings.BaseCurrency = code

	if settings.APIURL == "" {
		return errors.New("currency API URL is required")
	}

	if settings.CacheTTL <= 0 {
		return fmt.Errorf("currency cache TTL must be positive, got %s", settings.CacheTTL)
	}

	if settings.RequestTimeout <= 0 {
		return fmt.Errorf("currency request timeout must be positive, got %s", settings.RequestTimeout)
	}

	return nil
}

func validateWebServerSettings(settings *WebServerSettings) error {
	if !settings.Enabled {
		return nil
	}

	// Check if port is provided when enabled
	if settings.Port == "" {
		return errors.New("WebServer port is required when enabled")
	}

	port, err := strconv.Atoi(settings.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("WebServer port must be a number between 1 and 65535, got %q", settings.Port)
	}

	if err := validateLogConfig(&settings.Log, "webserver log"); err != nil {
		return err
	}

	return nil
}
