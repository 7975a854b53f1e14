// Package sync implements the data sync command: it pulls the weather
// forecast and the booking state and persists both as snapshots.
package sync

import (
	"fmt"
	"time"

	"github.com/skaiser/staffcast/internal/booking"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/skaiser/staffcast/internal/observability/metrics"
	"github.com/skaiser/staffcast/internal/weather"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// Command creates the sync command.
func Command(settings *conf.Settings) *cobra.Command {
	var weatherOnly, bookingsOnly bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync weather forecasts and booking snapshots",
		Long:  "Fetch the weather forecast and the current booking state and persist both as today's snapshots.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(settings, weatherOnly, bookingsOnly)
		},
	}

	cmd.Flags().BoolVar(&weatherOnly, "weather-only", false, "Sync only weather forecasts")
	cmd.Flags().BoolVar(&bookingsOnly, "bookings-only", false, "Sync only booking snapshots")
	setupFlags(cmd, settings)

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().IntVar(&settings.Booking.HorizonDays, "booking-horizon", viper.GetInt("booking.horizondays"), "How many days of bookings to snapshot")
	cmd.Flags().IntVar(&settings.Weather.OpenMeteo.ForecastDays, "forecast-days", viper.GetInt("weather.openmeteo.forecastdays"), "How many days of weather forecast to request")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
}

func runSync(settings *conf.Settings, weatherOnly, bookingsOnly bool) error {
	if weatherOnly && bookingsOnly {
		return fmt.Errorf("--weather-only and --bookings-only are mutually exclusive")
	}

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

	var g errgroup.Group

	if !bookingsOnly {
		g.Go(func() error {
			service, err := weather.NewService(settings, store, m.Weather)
			if err != nil {
				return fmt.Errorf("weather sync: %w", err)
			}
			if err := service.SyncForecast(); err != nil {
				return fmt.Errorf("weather sync: %w", err)
			}
			fmt.Println("Weather forecast synced")
			return nil
		})
	}

	if !weatherOnly {
		g.Go(func() error {
			service := booking.NewService(settings, store, m.Booking)
			rows, err := service.Snapshot(time.Now())
			if err != nil {
				return fmt.Errorf("booking sync: %w", err)
			}
			fmt.Printf("Booking snapshot saved for %d target dates\n", rows)
			return nil
		})
	}

	return g.Wait()
}
