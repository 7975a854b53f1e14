package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WeatherMetrics contains Prometheus metrics for weather data operations.
type WeatherMetrics struct {
	registry *prometheus.Registry

	fetchesTotal     *prometheus.CounterVec
	fetchErrorsTotal *prometheus.CounterVec
	fetchDuration    *prometheus.HistogramVec

	forecastRowsTotal prometheus.Counter
	scoreGauge        prometheus.Gauge
	temperatureGauge  prometheus.Gauge
}

// NewWeatherMetrics creates and registers new weather metrics.
func NewWeatherMetrics(registry *prometheus.Registry) (*WeatherMetrics, error) {
	m := &WeatherMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *WeatherMetrics) initMetrics() {
	m.fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetches_total",
			Help: "Total number of weather data fetch operations",
		},
		[]string{"provider", "status"}, // status: success, error
	)

	m.fetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetch_errors_total",
			Help: "Total number of weather fetch errors",
		},
		[]string{"provider", "error_type"},
	)

	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_fetch_duration_seconds",
			Help:    "Time taken to fetch weather data",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"provider"},
	)

	m.forecastRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_forecast_rows_total",
			Help: "Total number of weather forecast rows persisted",
		},
	)

	m.scoreGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weather_score_today",
			Help: "Weather quality score (1-5) for the current day",
		},
	)

	m.temperatureGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "weather_temperature_max_celsius",
			Help: "Forecast maximum temperature for the current day",
		},
	)
}

// Describe implements the prometheus.Collector interface.
func (m *WeatherMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetchesTotal.Describe(ch)
	m.fetchErrorsTotal.Describe(ch)
	m.fetchDuration.Describe(ch)
	m.forecastRowsTotal.Describe(ch)
	m.scoreGauge.Describe(ch)
	m.temperatureGauge.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *WeatherMetrics) Collect(ch chan<- prometheus.Metric) {
	m.fetchesTotal.Collect(ch)
	m.fetchErrorsTotal.Collect(ch)
	m.fetchDuration.Collect(ch)
	m.forecastRowsTotal.Collect(ch)
	m.scoreGauge.Collect(ch)
	m.temperatureGauge.Collect(ch)
}

// RecordFetch records a weather fetch operation.
func (m *WeatherMetrics) RecordFetch(provider, status string) {
	m.fetchesTotal.WithLabelValues(provider, status).Inc()
}

// RecordFetchError records a categorized fetch failure.
func (m *WeatherMetrics) RecordFetchError(provider, errorType string) {
	m.fetchErrorsTotal.WithLabelValues(provider, errorType).Inc()
}

// RecordFetchDuration records the duration of a fetch in seconds.
func (m *WeatherMetrics) RecordFetchDuration(provider string, seconds float64) {
	m.fetchDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordForecastRows counts persisted forecast rows.
func (m *WeatherMetrics) RecordForecastRows(count int) {
	m.forecastRowsTotal.Add(float64(count))
}

// UpdateToday sets the current-day gauges.
func (m *WeatherMetrics) UpdateToday(score int, tempMax float64) {
	m.scoreGauge.Set(float64(score))
	m.temperatureGauge.Set(tempMax)
}
