// Package metrics provides Prometheus metrics for the forecasting engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics bundles all metric groups behind a single registry.
type Metrics struct {
	registry *prometheus.Registry

	Weather  *WeatherMetrics
	Booking  *BookingMetrics
	Pipeline *PipelineMetrics
}

// NewMetrics creates a registry with all metric groups registered.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	weather, err := NewWeatherMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("creating weather metrics: %w", err)
	}
	booking, err := NewBookingMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("creating booking metrics: %w", err)
	}
	pipeline, err := NewPipelineMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Weather:  weather,
		Booking:  booking,
		Pipeline: pipeline,
	}, nil
}

// Registry returns the underlying Prometheus registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
