package cmd

import (
	"fmt"

	"github.com/skaiser/staffcast/cmd/backfill"
	"github.com/skaiser/staffcast/cmd/forecast"
	"github.com/skaiser/staffcast/cmd/serve"
	"github.com/skaiser/staffcast/cmd/sync"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "staffcast",
		Short: "StaffCast demand forecasting and staffing CLI",
	}

	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		sync.Command(settings),
		backfill.Command(settings),
		forecast.Command(settings),
		serve.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines global flags shared by all subcommands.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
}
