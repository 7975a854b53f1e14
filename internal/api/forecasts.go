package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/skaiser/staffcast/internal/datastore"
)

// WalkinForecastResponse is one walk-in prediction for a target date.
type WalkinForecastResponse struct {
	TargetDate    string  `json:"target_date"`
	RunID         string  `json:"run_id"`
	HorizonDays   int     `json:"horizon_days"`
	Prediction    float64 `json:"prediction"`
	LowerBound    float64 `json:"lower_bound"`
	UpperBound    float64 `json:"upper_bound"`
	ModelVersion  string  `json:"model_version"`
	LowConfidence bool    `json:"low_confidence"`
}

// WeatherForecastResponse is one weather forecast row for a target date.
type WeatherForecastResponse struct {
	ForecastDate  string  `json:"forecast_date"`
	DaysAhead     int     `json:"days_ahead"`
	TempMax       float64 `json:"temp_max"`
	TempMin       float64 `json:"temp_min"`
	PrecipSum     float64 `json:"precipitation_sum"`
	SunshineHours float64 `json:"sunshine_hours"`
	WindSpeedMax  float64 `json:"windspeed_max"`
	CloudCover    float64 `json:"cloudcover_mean"`
}

// GetForecasts returns the newest walk-in forecast per target date in the
// requested range.
func (c *Controller) GetForecasts(ctx echo.Context) error {
	from, to, err := c.dateRange(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
	}

	rows, err := c.DS.LatestWalkinForecastsBetween(from, to)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load forecasts", http.StatusInternalServerError)
	}

	forecasts := make([]WalkinForecastResponse, 0, len(rows))
	for i := range rows {
		forecasts = append(forecasts, walkinForecastResponse(&rows[i]))
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"from":      from,
		"to":        to,
		"forecasts": forecasts,
	})
}

// GetWeather returns the newest weather forecast per target date in the
// requested range.
func (c *Controller) GetWeather(ctx echo.Context) error {
	from, to, err := c.dateRange(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
	}

	rows, err := c.DS.LatestWeatherForecastsBetween(from, to)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load weather forecasts", http.StatusInternalServerError)
	}

	weather := make([]WeatherForecastResponse, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		weather = append(weather, WeatherForecastResponse{
			ForecastDate:  r.ForecastDate,
			DaysAhead:     r.DaysAhead,
			TempMax:       r.TempMax,
			TempMin:       r.TempMin,
			PrecipSum:     r.PrecipSum,
			SunshineHours: r.SunshineHours,
			WindSpeedMax:  r.WindSpeedMax,
			CloudCover:    r.CloudCover,
		})
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"from":    from,
		"to":      to,
		"weather": weather,
	})
}

func walkinForecastResponse(row *datastore.WalkinForecast) WalkinForecastResponse {
	return WalkinForecastResponse{
		TargetDate:    row.TargetDate,
		RunID:         row.RunID,
		HorizonDays:   row.HorizonDays,
		Prediction:    row.Prediction,
		LowerBound:    row.LowerBound,
		UpperBound:    row.UpperBound,
		ModelVersion:  row.ModelVersion,
		LowConfidence: row.LowConfidence,
	}
}
