// Package version prints build information.
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/raolivei/canopy-go/internal/conf"
)

// Command returns a cobra command that prints version and build details.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Canopy %s\n", settings.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build date: %s\n", settings.BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
