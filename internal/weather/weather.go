// Package weather fetches and scores daily weather for the restaurant's
// location. Forecast rows are appended to the datastore so every pipeline
// run sees the newest available forecast per target date.
package weather

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/skaiser/staffcast/internal/conf"
	"github.com/skaiser/staffcast/internal/datastore"
	"github.com/skaiser/staffcast/internal/errors"
	"github.com/skaiser/staffcast/internal/logging"
	"github.com/skaiser/staffcast/internal/observability/metrics"
)

// Package-level logger for weather service
var (
	weatherLogger   *slog.Logger
	weatherLevelVar = new(slog.LevelVar)
)

func init() {
	var err error
	weatherLevelVar.Set(slog.LevelInfo)

	weatherLogger, _, err = logging.NewFileLogger("logs/weather.log", "weather", weatherLevelVar)
	if err != nil {
		logging.Error("Failed to initialize weather file logger", "error", err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: weatherLevelVar})
		weatherLogger = slog.New(fbHandler).With("service", "weather")
	}
}

// Observation is one day of weather, either observed or forecast.
type Observation struct {
	Date          string // "YYYY-MM-DD"
	TempMax       float64
	TempMin       float64
	PrecipSum     float64
	PrecipHours   float64
	SunshineHours float64
	WindSpeedMax  float64
	CloudCover    float64
	WeatherCode   int
}

// DailyForecast is a forecast observation with its prediction distance.
type DailyForecast struct {
	Observation
	DaysAhead  int
	PrecipProb float64
}

// Provider represents a weather data provider interface
type Provider interface {
	FetchForecast(settings *conf.Settings) ([]DailyForecast, error)
	FetchArchive(settings *conf.Settings, start, end time.Time) ([]Observation, error)
}

// Service handles weather data operations
type Service struct {
	provider Provider
	db       datastore.Interface
	settings *conf.Settings
	metrics  *metrics.WeatherMetrics
	scorer   *Scorer
}

// NewService creates a new weather service with the configured provider.
func NewService(settings *conf.Settings, db datastore.Interface, weatherMetrics *metrics.WeatherMetrics) (*Service, error) {
	var provider Provider

	switch settings.Weather.Provider {
	case "openmeteo":
		provider = NewOpenMeteoProvider()
	default:
		return nil, errors.New(fmt.Errorf("invalid weather provider: %s", settings.Weather.Provider)).
			Component("weather").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Weather.Provider).
			Build()
	}

	return &Service{
		provider: provider,
		db:       db,
		settings: settings,
		metrics:  weatherMetrics,
		scorer:   NewScorer(settings.Weather.Score),
	}, nil
}

// Scorer returns the weather scorer configured for this service.
func (s *Service) Scorer() *Scorer {
	return s.scorer
}

// SyncForecast fetches the daily forecast and appends the rows to the
// datastore. Existing rows are never updated; readers take the newest
// row per target date.
func (s *Service) SyncForecast() error {
	start := time.Now()
	forecasts, err := s.provider.FetchForecast(s.settings)
	if s.metrics != nil {
		s.metrics.RecordFetchDuration(s.settings.Weather.Provider, time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordFetch(s.settings.Weather.Provider, "error")
			s.metrics.RecordFetchError(s.settings.Weather.Provider, "fetch")
		}
		return errors.New(err).
			Component("weather").
			Category(errors.CategoryNetwork).
			Context("operation", "sync-forecast").
			Build()
	}
	if s.metrics != nil {
		s.metrics.RecordFetch(s.settings.Weather.Provider, "success")
	}

	rows := make([]datastore.WeatherForecast, 0, len(forecasts))
	now := time.Now()
	for i := range forecasts {
		f := &forecasts[i]
		rows = append(rows, datastore.WeatherForecast{
			ForecastDate:  f.Date,
			DaysAhead:     f.DaysAhead,
			TempMax:       f.TempMax,
			TempMin:       f.TempMin,
			PrecipSum:     f.PrecipSum,
			PrecipProb:    f.PrecipProb,
			SunshineHours: f.SunshineHours,
			WindSpeedMax:  f.WindSpeedMax,
			CloudCover:    f.CloudCover,
			WeatherCode:   f.WeatherCode,
			CreatedAt:     now,
		})
	}

	if err := s.db.SaveWeatherForecasts(rows); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordForecastRows(len(rows))
	}

	weatherLogger.Info("Weather forecast synced",
		"provider", s.settings.Weather.Provider,
		"days", len(rows))

	// Today's forecast drives the dashboard gauges.
	today := now.Format("2006-01-02")
	for i := range forecasts {
		if forecasts[i].Date != today {
			continue
		}
		if score, err := s.scorer.Score(forecasts[i].Observation); err == nil && s.metrics != nil {
			s.metrics.UpdateToday(score.Value, forecasts[i].TempMax)
		}
		break
	}

	return nil
}

// BackfillArchive fetches observed weather for the given inclusive date
// range and stores any days not yet recorded. Returns the number of days
// fetched from the archive.
func (s *Service) BackfillArchive(start, end time.Time) (int, error) {
	observations, err := s.provider.FetchArchive(s.settings, start, end)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordFetch(s.settings.Weather.Provider, "error")
			s.metrics.RecordFetchError(s.settings.Weather.Provider, "archive")
		}
		return 0, errors.New(err).
			Component("weather").
			Category(errors.CategoryNetwork).
			Context("operation", "backfill-archive").
			Context("start", start.Format("2006-01-02")).
			Context("end", end.Format("2006-01-02")).
			Build()
	}
	if s.metrics != nil {
		s.metrics.RecordFetch(s.settings.Weather.Provider, "success")
	}

	for i := range observations {
		o := &observations[i]
		day := datastore.WeatherDaily{
			Date:          o.Date,
			TempMax:       o.TempMax,
			TempMin:       o.TempMin,
			PrecipSum:     o.PrecipSum,
			PrecipHours:   o.PrecipHours,
			SunshineHours: o.SunshineHours,
			WindSpeedMax:  o.WindSpeedMax,
			CloudCover:    o.CloudCover,
			WeatherCode:   o.WeatherCode,
			Source:        s.settings.Weather.Provider,
		}
		if err := s.db.SaveWeatherDaily(&day); err != nil {
			return 0, err
		}
	}

	weatherLogger.Info("Weather archive backfilled",
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
		"days", len(observations))

	return len(observations), nil
}
