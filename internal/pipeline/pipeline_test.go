package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	dir := t.TempDir()

	settings := &conf.Settings{
		Restaurant: conf.RestaurantSettings{
			Latitude:  54.323,
			Longitude: 10.139,
			Timezone:  "Europe/Berlin",
			Capacity:  350,
		},
		Weather: conf.WeatherSettings{
			Provider: "openmeteo",
			Score: conf.ScoreSettings{
				IdealTempMin:    18.0,
				IdealTempMax:    25.0,
				PerfectMaxRain:  2.0,
				PerfectMaxCloud: 50.0,
				PoorTempBelow:   5.0,
				PoorTempAbove:   35.0,
				PoorRainAbove:   15.0,
				StormWindSpeed:  60.0,
				TempFalloff:     0.15,
				RainFalloff:     0.12,
			},
		},
		Forecast: conf.ForecastSettings{
			Horizon:   3,
			ModelPath: filepath.Join(dir, "model.json"),
			Band:      conf.BandSettings{BaseWidth: 5.0, Growth: 0.35},
			Neutral: conf.NeutralWeather{
				Score:          3,
				MonthlyTempMax: []float64{3.5, 4.2, 7.5, 12.1, 16.5, 19.8, 21.9, 22.1, 18.4, 13.2, 7.9, 4.8},
				CloudCover:     50.0,
				WindSpeed:      15.0,
			},
		},
		Staffing: conf.StaffingSettings{
			Buckets: []conf.BucketSettings{
				{Name: "lunch", Start: "12:00", End: "15:00", LoadShare: 0.25},
				{Name: "afternoon", Start: "15:00", End: "18:00", LoadShare: 0.10},
				{Name: "dinner", Start: "18:00", End: "22:00", LoadShare: 0.55},
				{Name: "late", Start: "22:00", End: "23:00", LoadShare: 0.10},
			},
			Shifts: conf.ShiftSettings{FullStart: "12:00", FullEnd: "23:00", MinSplitHours: 3.0},
			Roles: map[string]conf.RoleSettings{
				"kitchen": {Min: 2, GuestsPerHead: 80},
				"pizza":   {Min: 1, StepThreshold: 120, StepSize: 100},
				"bar":     {Min: 1, Baseline: 2, LowGuestMax: 100, WeekendPressure: 200},
				"service": {Min: 1, CoversPerServer: 18, WeekdayOverrides: map[string]int{"monday": 22}},
				"runner":  {Min: 1, GuestsPerHead: 100},
			},
		},
		Output: conf.OutputSettings{
			SQLite: conf.SQLiteSettings{Enabled: true, Path: filepath.Join(dir, "test.db")},
		},
	}
	return settings
}

func writeModel(t *testing.T, path string) {
	t.Helper()
	payload := `{
		"version": "2026-07-01",
		"feature_cols": ["reservations_people", "is_weekend", "weather_score"],
		"coefficients": [0.3, 20.0, 2.0],
		"intercept": 10.0
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
}

func openStore(t *testing.T, settings *conf.Settings) *datastore.SQLiteStore {
	t.Helper()
	store := &datastore.SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	return store
}

func seedBookings(t *testing.T, store datastore.Interface, start time.Time, horizon int) {
	t.Helper()
	snapshotDate := start.Format("2006-01-02")
	var rows []datastore.BookingSnapshot
	for h := 0; h < horizon; h++ {
		rows = append(rows, datastore.BookingSnapshot{
			SnapshotDate:    snapshotDate,
			TargetDate:      start.AddDate(0, 0, h).Format("2006-01-02"),
			Reservations:    20 + h,
			ConfirmedCovers: 150,
		})
	}
	require.NoError(t, store.SaveBookingSnapshots(rows))
}

func seedWeather(t *testing.T, store datastore.Interface, start time.Time, horizon int) {
	t.Helper()
	var rows []datastore.WeatherForecast
	for h := 0; h < horizon; h++ {
		rows = append(rows, datastore.WeatherForecast{
			ForecastDate: start.AddDate(0, 0, h).Format("2006-01-02"),
			DaysAhead:    h,
			TempMax:      22.0,
			TempMin:      15.0,
			PrecipSum:    0.5,
			CloudCover:   30.0,
			CreatedAt:    time.Now(),
		})
	}
	require.NoError(t, store.SaveWeatherForecasts(rows))
}

func TestRunFullHorizon(t *testing.T) {
	settings := testSettings(t)
	writeModel(t, settings.Forecast.ModelPath)
	store := openStore(t, settings)

	start := time.Date(2026, time.August, 22, 0, 0, 0, 0, time.UTC) // Saturday
	seedBookings(t, store, start, 3)
	seedWeather(t, store, start, 3)

	p, err := New(settings, store, nil)
	require.NoError(t, err)

	summary, err := p.Run(start)
	require.NoError(t, err)
	assert.NotEmpty(t, summary.RunID)
	assert.Zero(t, summary.Failures)
	require.Len(t, summary.Results, 3)

	for h := 0; h < 3; h++ {
		date := start.AddDate(0, 0, h).Format("2006-01-02")

		forecasts, err := store.WalkinForecastsForDate(date)
		require.NoError(t, err)
		require.Len(t, forecasts, 1, "one forecast snapshot per date")
		f := forecasts[0]
		assert.Equal(t, summary.RunID, f.RunID)
		assert.Equal(t, h, f.HorizonDays)
		assert.Equal(t, "2026-07-01", f.ModelVersion)
		assert.False(t, f.LowConfidence)
		assert.GreaterOrEqual(t, f.Prediction, 0.0)
		assert.LessOrEqual(t, f.LowerBound, f.Prediction)
		assert.GreaterOrEqual(t, f.UpperBound, f.Prediction)

		plan, err := store.LatestStaffingPlan(date)
		require.NoError(t, err)
		assert.Equal(t, summary.RunID, plan.RunID)
		assert.Equal(t, 150, plan.ReservedCovers)
		assert.Equal(t, plan.GuestLoad, plan.ReservedCovers+plan.PredictedWalkins)
		assert.NotEmpty(t, plan.Assignments)
		assert.Positive(t, plan.TotalLaborHours)
		assert.Empty(t, plan.Flags)
	}
}

func TestRunBandWidensWithHorizon(t *testing.T) {
	settings := testSettings(t)
	writeModel(t, settings.Forecast.ModelPath)
	store := openStore(t, settings)

	start := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	seedBookings(t, store, start, 3)
	seedWeather(t, store, start, 3)

	p, err := New(settings, store, nil)
	require.NoError(t, err)
	_, err = p.Run(start)
	require.NoError(t, err)

	prevWidth := -1.0
	for h := 0; h < 3; h++ {
		date := start.AddDate(0, 0, h).Format("2006-01-02")
		forecasts, err := store.WalkinForecastsForDate(date)
		require.NoError(t, err)
		require.Len(t, forecasts, 1)

		width := forecasts[0].UpperBound - forecasts[0].Prediction
		assert.Greater(t, width, prevWidth, "band must widen with horizon")
		prevWidth = width
	}
}

func TestRunAppendsSnapshotsOnReRun(t *testing.T) {
	settings := testSettings(t)
	writeModel(t, settings.Forecast.ModelPath)
	store := openStore(t, settings)

	start := time.Date(2026, time.August, 22, 0, 0, 0, 0, time.UTC)
	seedBookings(t, store, start, 3)
	seedWeather(t, store, start, 3)

	p, err := New(settings, store, nil)
	require.NoError(t, err)

	first, err := p.Run(start)
	require.NoError(t, err)
	second, err := p.Run(start)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)

	date := start.Format("2006-01-02")
	forecasts, err := store.WalkinForecastsForDate(date)
	require.NoError(t, err)
	assert.Len(t, forecasts, 2, "re-run appends a new forecast snapshot")

	plans, err := store.StaffingPlansForDate(date)
	require.NoError(t, err)
	assert.Len(t, plans, 2, "re-run appends a new plan snapshot")

	latest, err := store.LatestStaffingPlan(date)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, latest.RunID)
}

func TestRunWithoutModelDegradesToReservations(t *testing.T) {
	settings := testSettings(t)
	// Model path points nowhere; the pipeline must still plan staffing.
	store := openStore(t, settings)

	start := time.Date(2026, time.August, 22, 0, 0, 0, 0, time.UTC)
	seedBookings(t, store, start, 3)
	seedWeather(t, store, start, 3)

	p, err := New(settings, store, nil)
	require.NoError(t, err)

	summary, err := p.Run(start)
	require.NoError(t, err)
	assert.Zero(t, summary.Failures)

	date := start.Format("2006-01-02")
	forecasts, err := store.WalkinForecastsForDate(date)
	require.NoError(t, err)
	assert.Empty(t, forecasts, "no forecast without a model")

	plan, err := store.LatestStaffingPlan(date)
	require.NoError(t, err)
	assert.Equal(t, 150, plan.GuestLoad, "guest load falls back to reservations")
	assert.Zero(t, plan.PredictedWalkins)
	assert.Contains(t, plan.Flags, FlagNoAIForecast)
}

func TestRunWithoutWeatherFlagsLowConfidence(t *testing.T) {
	settings := testSettings(t)
	writeModel(t, settings.Forecast.ModelPath)
	store := openStore(t, settings)

	start := time.Date(2026, time.August, 22, 0, 0, 0, 0, time.UTC)
	seedBookings(t, store, start, 3)
	// No weather rows seeded.

	p, err := New(settings, store, nil)
	require.NoError(t, err)

	summary, err := p.Run(start)
	require.NoError(t, err)
	assert.Zero(t, summary.Failures)

	date := start.Format("2006-01-02")
	forecasts, err := store.WalkinForecastsForDate(date)
	require.NoError(t, err)
	require.Len(t, forecasts, 1)
	assert.True(t, forecasts[0].LowConfidence)

	plan, err := store.LatestStaffingPlan(date)
	require.NoError(t, err)
	assert.Contains(t, plan.Flags, FlagLowConfidence)
}

func TestRunSchemaMismatchIsolatedPerDate(t *testing.T) {
	settings := testSettings(t)
	payload := `{
		"version": "v-drift",
		"feature_cols": ["a_feature_nobody_builds"],
		"coefficients": [1.0],
		"intercept": 0.0
	}`
	require.NoError(t, os.WriteFile(settings.Forecast.ModelPath, []byte(payload), 0o600))
	store := openStore(t, settings)

	start := time.Date(2026, time.August, 22, 0, 0, 0, 0, time.UTC)
	seedBookings(t, store, start, 3)
	seedWeather(t, store, start, 3)

	p, err := New(settings, store, nil)
	require.NoError(t, err)

	summary, err := p.Run(start)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Failures, "every date fails on schema drift")
	require.Len(t, summary.Results, 3, "but every date was still attempted")
	for _, r := range summary.Results {
		assert.Error(t, r.Err)
	}
}

func TestPlanFlagsRoundTrip(t *testing.T) {
	flags := []string{FlagLowConfidence, FlagUnderstaffedInfeasible}
	joined := strings.Join(flags, ",")
	assert.Equal(t, "low_confidence,understaffed_infeasible", joined)
}
