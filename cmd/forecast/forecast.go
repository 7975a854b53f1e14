// Package forecast implements the forecast command: one pipeline run
// over the rolling horizon.
package forecast

import (
	"fmt"
	"time"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/skaiser/staffcast/internal/observability/metrics"
	"github.com/skaiser/staffcast/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Command creates the forecast command.
func Command(settings *conf.Settings) *cobra.Command {
	var startDate string

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Run the forecast and staffing pipeline",
		Long:  "Compute walk-in forecasts and staffing plans for every date of the rolling horizon.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(settings, startDate)
		},
	}

	cmd.Flags().StringVar(&startDate, "date", "", "First date of the horizon (YYYY-MM-DD, default today)")
	setupFlags(cmd, settings)

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.Flags().IntVar(&settings.Forecast.Horizon, "horizon", viper.GetInt("forecast.horizon"), "Number of days to forecast")
	cmd.Flags().StringVar(&settings.Forecast.ModelPath, "model", viper.GetString("forecast.modelpath"), "Path to the walk-in model artifact")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
}

func runForecast(settings *conf.Settings, startDate string) error {
	start := time.Now()
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", startDate, err)
		}
		start = parsed
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

	p, err := pipeline.New(settings, store, m.Pipeline)
	if err != nil {
		return err
	}

	summary, err := p.Run(start)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s finished: %d dates, %d failures\n",
		summary.RunID, len(summary.Results), summary.Failures)
	for i := range summary.Results {
		r := &summary.Results[i]
		switch {
		case r.Err != nil:
			fmt.Printf("  %s  FAILED: %v\n", r.Date, r.Err)
		case len(r.Flags) > 0:
			fmt.Printf("  %s  ok (%v)\n", r.Date, r.Flags)
		default:
			fmt.Printf("  %s  ok\n", r.Date)
		}
	}

	if summary.Failures > 0 {
		return fmt.Errorf("%d of %d dates failed", summary.Failures, len(summary.Results))
	}
	return nil
}
