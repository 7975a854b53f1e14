package main

import (
	"fmt"
	"os"

	"github.com/skaiser/staffcast/cmd"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/logging"
)

// version and buildDate are set by the build process
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	logging.Init()

	settings := conf.Setting()
	if settings == nil {
		fmt.Fprintln(os.Stderr, "Error loading configuration")
		os.Exit(1)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
