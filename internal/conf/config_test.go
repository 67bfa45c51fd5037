package conf

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Log = LogConfig{Enabled: true, Path: "logs/canopy.log", Rotation: RotationDaily}
	s.Notification = NotificationSettings{
		DefaultDuration:    5 * time.Second,
		SubscriberBuffer:   10,
		RateLimitWindow:    time.Minute,
		RateLimitMaxEvents: 100,
	}
	s.Currency = CurrencySettings{
		BaseCurrency:   "USD",
		APIURL:         "https://api.frankfurter.dev/v1",
		CacheTTL:       4 * time.Hour,
		RequestTimeout: 10 * time.Second,
	}
	s.WebServer = WebServerSettings{
		Enabled:         true,
		Port:            "8080",
		ShutdownTimeout: 30 * time.Second,
		Log:             LogConfig{Enabled: true, Path: "logs/web.log", Rotation: RotationDaily},
	}
	return s
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Settings)
		wantErr  bool
		errValue string
	}{
		{
			name:    "valid settings",
			mutate:  func(s *Settings) {},
			wantErr: false,
		},
		{
			name:     "missing web server port",
			mutate:   func(s *Settings) { s.WebServer.Port = "" },
			wantErr:  true,
			errValue: "port is required",
		},
		{
			name:     "non-numeric port",
			mutate:   func(s *Settings) { s.WebServer.Port = "http" },
			wantErr:  true,
			errValue: "between 1 and 65535",
		},
		{
			name:     "port out of range",
			mutate:   func(s *Settings) { s.WebServer.Port = "70000" },
			wantErr:  true,
			errValue: "between 1 and 65535",
		},
		{
			name:     "unknown log rotation",
			mutate:   func(s *Settings) { s.Log.Rotation = "hourly" },
			wantErr:  true,
			errValue: "rotation must be",
		},
		{
			name:     "bad base currency",
			mutate:   func(s *Settings) { s.Currency.BaseCurrency = "DOLLARS" },
			wantErr:  true,
			errValue: "ISO 4217",
		},
		{
			name:     "zero cache TTL",
			mutate:   func(s *Settings) { s.Currency.CacheTTL = 0 },
			wantErr:  true,
			errValue: "cache TTL",
		},
		{
			name:     "zero subscriber buffer",
			mutate:   func(s *Settings) { s.Notification.SubscriberBuffer = 0 },
			wantErr:  true,
			errValue: "subscriber buffer",
		},
		{
			name:    "disabled web server skips port check",
			mutate:  func(s *Settings) { s.WebServer.Enabled = false; s.WebServer.Port = "" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := validSettings()
			tt.mutate(settings)

			err := ValidateSettings(settings)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errValue) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errValue)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidateSettingsNormalizesBaseCurrency(t *testing.T) {
	settings := validSettings()
	settings.Currency.BaseCurrency = " usd "

	if err := ValidateSettings(settings); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if settings.Currency.BaseCurrency != "USD" {
		t.Errorf("expected base currency normalized to USD, got %q", settings.Currency.BaseCurrency)
	}
}

func TestDefaultsUnmarshal(t *testing.T) {
	// Uses the global viper instance, so no t.Parallel here.
	viper.Reset()
	t.Cleanup(viper.Reset)

	setDefaultConfig()

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		t.Fatalf("unmarshal defaults: %v", err)
	}

	if settings.Main.Name != "Canopy" {
		t.Errorf("main.name = %q, want Canopy", settings.Main.Name)
	}
	if settings.Currency.BaseCurrency != "USD" {
		t.Errorf("currency.basecurrency = %q, want USD", settings.Currency.BaseCurrency)
	}
	if settings.Currency.CacheTTL != 4*time.Hour {
		t.Errorf("currency.cachettl = %s, want 4h", settings.Currency.CacheTTL)
	}
	if settings.Notification.DefaultDuration != 5*time.Second {
		t.Errorf("notification.defaultduration = %s, want 5s", settings.Notification.DefaultDuration)
	}
	if settings.Sentry.Enabled {
		t.Error("sentry.enabled should default to false")
	}

	// Defaults must always pass validation.
	if err := ValidateSettings(settings); err != nil {
		t.Errorf("default settings failed validation: %v", err)
	}
}
