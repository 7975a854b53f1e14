// Package serve implements the API server command.
package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skaiser/staffcast/internal/api"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/skaiser/staffcast/internal/observability/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the forecast and staffing API",
		Long:  "Start the HTTP API exposing forecasts, staffing plans and Prometheus metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(settings)
		},
	}

	setupFlags(cmd, settings)
	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
}

func runServe(settings *conf.Settings) error {
	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no datastore configured, enable sqlite or mysql under output")
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	m, err := metrics.NewMetrics()
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	server := api.NewServer(settings, store, m)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		fmt.Println("Shutting down")
		_ = server.Shutdown()
	}()

	fmt.Printf("Listening on :%s\n", settings.WebServer.Port)
	return server.Start()
}
