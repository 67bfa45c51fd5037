// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "Canopy")
	viper.SetDefault("log.enabled", true)
	viper.SetDefault("log.path", "logs/canopy.log")
	viper.SetDefault("log.rotation", RotationDaily)
	viper.SetDefault("log.maxsize", 1048576)
	viper.SetDefault("log.rotationday", "Sunday")

	viper.SetDefault("notification.debug", false)
	viper.SetDefault("notification.defaultduration", 5*time.Second)
	viper.SetDefault("notification.subscriberbuffer", 10)
	viper.SetDefault("notification.ratelimitwindow", time.Minute)
	viper.SetDefault("notification.ratelimitmaxevents", 100)

	viper.SetDefault("currency.debug", false)
	viper.SetDefault("currency.basecurrency", "USD")
	viper.SetDefault("currency.apiurl", "https://api.frankfurter.dev/v1")
	viper.SetDefault("currency.cachettl", 4*time.Hour)
	viper.SetDefault("currency.requesttimeout", 10*time.Second)

	viper.SetDefault("webserver.debug", false)
	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.allowedorigins", []string{"*"})
	viper.SetDefault("webserver.bodylimit", "1M")
	viper.SetDefault("webserver.shutdowntimeout", 30*time.Second)
	viper.SetDefault("webserver.log.enabled", true)
	viper.SetDefault("webserver.log.path", "logs/web.log")
	viper.SetDefault("webserver.log.rotation", RotationDaily)
	viper.SetDefault("webserver.log.maxsize", 1048576)
	viper.SetDefault("webserver.log.rotationday", "Sunday")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
	viper.SetDefault("sentry.environment", "production")
	viper.SetDefault("sentry.debug", false)
}
