package weather

import (
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/skaiser/staffcast/internal/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWeatherSettings() *conf.Settings {
	return &conf.Settings{
		Restaurant: conf.RestaurantSettings{
			Latitude:  54.323,
			Longitude: 10.139,
			Timezone:  "Europe/Berlin",
		},
		Weather: conf.WeatherSettings{
			Provider: "openmeteo",
			OpenMeteo: conf.OpenMeteoSettings{
				Endpoint:        "https://api.open-meteo.com/v1/forecast",
				ArchiveEndpoint: "https://archive-api.open-meteo.com/v1/era5",
				ForecastDays:    3,
			},
			Score: testScoreSettings(),
		},
	}
}

const forecastResponse = `{
	"daily": {
		"time": ["2026-08-25", "2026-08-26", "2026-08-27"],
		"temperature_2m_max": [21.4, 19.8, 23.1],
		"temperature_2m_min": [14.2, 13.0, 15.5],
		"precipitation_sum": [0.0, 4.2, 0.3],
		"precipitation_probability_mean": [5, 65, 10],
		"sunshine_duration": [36000, 10800, 32400],
		"wind_speed_10m_max": [18.5, 32.0, 12.3],
		"cloud_cover_mean": [25, 80, 40],
		"weathercode": [1, 61, 2]
	}
}`

const archiveResponse = `{
	"daily": {
		"time": ["2026-08-20", "2026-08-21"],
		"temperature_2m_max": [24.0, 17.5],
		"temperature_2m_min": [16.1, 12.4],
		"precipitation_sum": [0.0, 8.6],
		"precipitation_hours": [0.0, 6.0],
		"sunshine_duration": [43200, 7200],
		"wind_speed_10m_max": [15.0, 28.0],
		"cloud_cover_mean": [20, 95],
		"weathercode": [0, 63]
	}
}`

func TestFetchForecast(t *testing.T) {
	provider := NewOpenMeteoProvider()
	httpmock.ActivateNonDefault(provider.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", `=~^https://api\.open-meteo\.com/v1/forecast`,
		httpmock.NewStringResponder(200, forecastResponse))

	forecasts, err := provider.FetchForecast(testWeatherSettings())
	require.NoError(t, err)
	require.Len(t, forecasts, 3)

	first := forecasts[0]
	assert.Equal(t, "2026-08-25", first.Date)
	assert.InDelta(t, 21.4, first.TempMax, 0.001)
	assert.InDelta(t, 14.2, first.TempMin, 0.001)
	assert.InDelta(t, 0.0, first.PrecipSum, 0.001)
	assert.InDelta(t, 5.0, first.PrecipProb, 0.001)
	assert.InDelta(t, 10.0, first.SunshineHours, 0.001, "sunshine seconds convert to hours")
	assert.InDelta(t, 25.0, first.CloudCover, 0.001)
	assert.Equal(t, 1, first.WeatherCode)

	rainy := forecasts[1]
	assert.InDelta(t, 4.2, rainy.PrecipSum, 0.001)
	assert.Equal(t, 61, rainy.WeatherCode)
}

func TestFetchForecastAPIError(t *testing.T) {
	provider := NewOpenMeteoProvider()
	httpmock.ActivateNonDefault(provider.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", `=~^https://api\.open-meteo\.com/v1/forecast`,
		httpmock.NewStringResponder(503, "service unavailable"))

	_, err := provider.FetchForecast(testWeatherSettings())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchForecastMalformedResponse(t *testing.T) {
	provider := NewOpenMeteoProvider()
	httpmock.ActivateNonDefault(provider.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", `=~^https://api\.open-meteo\.com/v1/forecast`,
		httpmock.NewStringResponder(200, "{not json"))

	_, err := provider.FetchForecast(testWeatherSettings())
	require.Error(t, err)
}

func TestFetchArchive(t *testing.T) {
	provider := NewOpenMeteoProvider()
	httpmock.ActivateNonDefault(provider.client)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", `=~^https://archive-api\.open-meteo\.com/v1/era5`,
		httpmock.NewStringResponder(200, archiveResponse))

	start := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	observations, err := provider.FetchArchive(testWeatherSettings(), start, end)
	require.NoError(t, err)
	require.Len(t, observations, 2)

	wet := observations[1]
	assert.Equal(t, "2026-08-21", wet.Date)
	assert.InDelta(t, 8.6, wet.PrecipSum, 0.001)
	assert.InDelta(t, 6.0, wet.PrecipHours, 0.001)
	assert.InDelta(t, 2.0, wet.SunshineHours, 0.001)
	assert.Equal(t, 63, wet.WeatherCode)
}

func TestNewServiceRejectsUnknownProvider(t *testing.T) {
	settings := testWeatherSettings()
	settings.Weather.Provider = "met-office"

	_, err := NewService(settings, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid weather provider")
}
