package weather

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/skaiser/staffcast/internal/conf"
)

// RequestTimeout defines the HTTP timeout for Open-Meteo requests.
const RequestTimeout = 30 * time.Second

// dailyFields are requested from both the forecast and archive APIs where
// available. The archive has observed precipitation hours, the forecast a
// precipitation probability instead.
var forecastDailyFields = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"precipitation_probability_mean",
	"sunshine_duration",
	"wind_speed_10m_max",
	"cloud_cover_mean",
	"weathercode",
}

var archiveDailyFields = []string{
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"precipitation_hours",
	"sunshine_duration",
	"wind_speed_10m_max",
	"cloud_cover_mean",
	"weathercode",
}

// OpenMeteoProvider fetches daily weather from the Open-Meteo API.
// Open-Meteo requires no API key.
type OpenMeteoProvider struct {
	client *http.Client
}

// NewOpenMeteoProvider creates a new Open-Meteo provider.
func NewOpenMeteoProvider() *OpenMeteoProvider {
	return &OpenMeteoProvider{
		client: &http.Client{Timeout: RequestTimeout},
	}
}

// openMeteoResponse mirrors the column-oriented JSON of the daily API.
type openMeteoResponse struct {
	Daily struct {
		Time                     []string  `json:"time"`
		TemperatureMax           []float64 `json:"temperature_2m_max"`
		TemperatureMin           []float64 `json:"temperature_2m_min"`
		PrecipitationSum         []float64 `json:"precipitation_sum"`
		PrecipitationProbability []float64 `json:"precipitation_probability_mean"`
		PrecipitationHours       []float64 `json:"precipitation_hours"`
		SunshineDuration         []float64 `json:"sunshine_duration"`
		WindSpeedMax             []float64 `json:"wind_speed_10m_max"`
		CloudCoverMean           []float64 `json:"cloud_cover_mean"`
		WeatherCode              []int     `json:"weathercode"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) get(rawURL string) (*openMeteoResponse, error) {
	resp, err := p.client.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("requesting Open-Meteo: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Open-Meteo returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading Open-Meteo response: %w", err)
	}

	var parsed openMeteoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing Open-Meteo response: %w", err)
	}
	return &parsed, nil
}

// column safely reads index i from a possibly short or missing column.
func column(values []float64, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return values[i]
}

func intColumn(values []int, i int) int {
	if i >= len(values) {
		return 0
	}
	return values[i]
}

// FetchForecast retrieves the configured number of daily forecasts.
func (p *OpenMeteoProvider) FetchForecast(settings *conf.Settings) ([]DailyForecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(settings.Restaurant.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(settings.Restaurant.Longitude, 'f', -1, 64))
	params.Set("forecast_days", strconv.Itoa(settings.Weather.OpenMeteo.ForecastDays))
	params.Set("timezone", settings.Restaurant.Timezone)
	for _, f := range forecastDailyFields {
		params.Add("daily", f)
	}

	parsed, err := p.get(settings.Weather.OpenMeteo.Endpoint + "?" + params.Encode())
	if err != nil {
		return nil, err
	}

	today := time.Now().Format("2006-01-02")
	forecasts := make([]DailyForecast, 0, len(parsed.Daily.Time))
	for i, date := range parsed.Daily.Time {
		daysAhead := i
		if t, err := time.Parse("2006-01-02", date); err == nil {
			if ref, err := time.Parse("2006-01-02", today); err == nil {
				daysAhead = int(t.Sub(ref).Hours() / 24)
			}
		}
		forecasts = append(forecasts, DailyForecast{
			Observation: Observation{
				Date:          date,
				TempMax:       column(parsed.Daily.TemperatureMax, i),
				TempMin:       column(parsed.Daily.TemperatureMin, i),
				PrecipSum:     column(parsed.Daily.PrecipitationSum, i),
				SunshineHours: column(parsed.Daily.SunshineDuration, i) / 3600,
				WindSpeedMax:  column(parsed.Daily.WindSpeedMax, i),
				CloudCover:    column(parsed.Daily.CloudCoverMean, i),
				WeatherCode:   intColumn(parsed.Daily.WeatherCode, i),
			},
			DaysAhead:  daysAhead,
			PrecipProb: column(parsed.Daily.PrecipitationProbability, i),
		})
	}
	return forecasts, nil
}

// FetchArchive retrieves observed weather for an inclusive date range from
// the historical archive API.
func (p *OpenMeteoProvider) FetchArchive(settings *conf.Settings, start, end time.Time) ([]Observation, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(settings.Restaurant.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(settings.Restaurant.Longitude, 'f', -1, 64))
	params.Set("start_date", start.Format("2006-01-02"))
	params.Set("end_date", end.Format("2006-01-02"))
	params.Set("timezone", settings.Restaurant.Timezone)
	for _, f := range archiveDailyFields {
		params.Add("daily", f)
	}

	parsed, err := p.get(settings.Weather.OpenMeteo.ArchiveEndpoint + "?" + params.Encode())
	if err != nil {
		return nil, err
	}

	observations := make([]Observation, 0, len(parsed.Daily.Time))
	for i, date := range parsed.Daily.Time {
		observations = append(observations, Observation{
			Date:          date,
			TempMax:       column(parsed.Daily.TemperatureMax, i),
			TempMin:       column(parsed.Daily.TemperatureMin, i),
			PrecipSum:     column(parsed.Daily.PrecipitationSum, i),
			PrecipHours:   column(parsed.Daily.PrecipitationHours, i),
			SunshineHours: column(parsed.Daily.SunshineDuration, i) / 3600,
			WindSpeedMax:  column(parsed.Daily.WindSpeedMax, i),
			CloudCover:    column(parsed.Daily.CloudCoverMean, i),
			WeatherCode:   intColumn(parsed.Daily.WeatherCode, i),
		})
	}
	return observations, nil
}
