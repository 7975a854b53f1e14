// Package backfill implements the historical weather backfill command.
package backfill

import (
	"fmt"
	"time"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/skaiser/staffcast/internal/observability/metrics"
	"github.com/skaiser/staffcast/internal/weather"
	"github.com/spf13/cobra"
)

// Command creates the backfill command.
func Command(settings *conf.Settings) *cobra.Command {
	var startDate, endDate string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Backfill historical weather observations",
		Long:  "Fetch archived daily weather for a date range and store it for model training.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(settings, startDate, endDate)
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "First date to backfill (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Last date to backfill (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func runBackfill(settings *conf.Settings, startDate, endDate string) error {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", endDate, startDate)
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

	service, err := weather.NewService(settings, store, m.Weather)
	if err != nil {
		return err
	}

	rows, err := service.BackfillArchive(start, end)
	if err != nil {
		return err
	}
	fmt.Printf("Backfilled %d days of weather history\n", rows)
	return nil
}
