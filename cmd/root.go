// Package cmd assembles the canopy command line interface.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/raolivei/canopy-go/cmd/notify"
	"github.com/raolivei/canopy-go/cmd/serve"
	"github.com/raolivei/canopy-go/cmd/version"
	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/logging"
)

// RootCommand creates and returns the root command. Running it without a
// subcommand starts the web server.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "canopy",
		Short: "Canopy dashboard service",
		Long: `Canopy serves the JSON API behind the Canopy personal finance dashboard:
notifications with live SSE streaming, currency conversion and display
formatting helpers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve.Run(settings)
		},
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		serve.Command(settings),
		notify.Command(settings),
		version.Command(settings),
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if settings.Debug {
			logging.SetLevel(slog.LevelDebug)
		}
	}

	return rootCmd
}

// setupFlags configures global flags for the root command and binds them to
// viper so command-line arguments take precedence over the config file.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&settings.WebServer.Port, "port", "p", viper.GetString("webserver.port"), "Web server listen port")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
}
