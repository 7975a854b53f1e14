package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics contains Prometheus metrics for forecast pipeline runs.
type PipelineMetrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	forecastsTotal prometheus.Counter
	plansTotal     prometheus.Counter
	flagsTotal     *prometheus.CounterVec
	laborHours     prometheus.Gauge
}

// NewPipelineMetrics creates and registers new pipeline metrics.
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of forecast pipeline runs",
		},
		[]string{"status"}, // success, partial, error
	)

	m.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Time taken for a full forecast pipeline run",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)

	m.forecastsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_walkin_forecasts_total",
			Help: "Total number of walk-in forecasts produced",
		},
	)

	m.plansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_staffing_plans_total",
			Help: "Total number of staffing plans produced",
		},
	)

	m.flagsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_plan_flags_total",
			Help: "Plan quality flags raised during pipeline runs",
		},
		[]string{"flag"}, // low_confidence, no_ai_forecast, understaffed_infeasible
	)

	m.laborHours = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_last_run_labor_hours",
			Help: "Total planned labor hours from the most recent run",
		},
	)
}

// Describe implements the prometheus.Collector interface.
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.runsTotal.Describe(ch)
	m.runDuration.Describe(ch)
	m.forecastsTotal.Describe(ch)
	m.plansTotal.Describe(ch)
	m.flagsTotal.Describe(ch)
	m.laborHours.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.runsTotal.Collect(ch)
	m.runDuration.Collect(ch)
	m.forecastsTotal.Collect(ch)
	m.plansTotal.Collect(ch)
	m.flagsTotal.Collect(ch)
	m.laborHours.Collect(ch)
}

// RecordRun records the outcome of a pipeline run.
func (m *PipelineMetrics) RecordRun(status string) {
	m.runsTotal.WithLabelValues(status).Inc()
}

// RecordRunDuration records the duration of a run in seconds.
func (m *PipelineMetrics) RecordRunDuration(seconds float64) {
	m.runDuration.Observe(seconds)
}

// RecordForecast counts a produced walk-in forecast.
func (m *PipelineMetrics) RecordForecast() {
	m.forecastsTotal.Inc()
}

// RecordPlan counts a produced staffing plan.
func (m *PipelineMetrics) RecordPlan() {
	m.plansTotal.Inc()
}

// RecordFlag counts a raised plan flag.
func (m *PipelineMetrics) RecordFlag(flag string) {
	m.flagsTotal.WithLabelValues(flag).Inc()
}

// SetLaborHours sets the planned labor hours gauge.
func (m *PipelineMetrics) SetLaborHours(hours float64) {
	m.laborHours.Set(hours)
}
