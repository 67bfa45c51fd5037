package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/raolivei/canopy-go/cmd"
	"github.com/raolivei/canopy-go/internal/conf"
	"github.com/raolivei/canopy-go/internal/logging"
)

// Populated by the linker at build time:
//
//	go build -ldflags "-X main.version=v1.2.3 -X main.buildDate=2026-08-25"
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// A local .env file is optional and never required in production.
	_ = godotenv.Load()

	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "command error: %v\n", err)
		os.Exit(1)
	}
}
