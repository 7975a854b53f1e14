package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BookingMetrics contains Prometheus metrics for booking sync operations.
type BookingMetrics struct {
	registry *prometheus.Registry

	syncsTotal     *prometheus.CounterVec
	syncDuration   prometheus.Histogram
	snapshotsTotal prometheus.Counter
	cacheHitsTotal *prometheus.CounterVec
}

// NewBookingMetrics creates and registers new booking metrics.
func NewBookingMetrics(registry *prometheus.Registry) (*BookingMetrics, error) {
	m := &BookingMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *BookingMetrics) initMetrics() {
	m.syncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_syncs_total",
			Help: "Total number of booking sync operations",
		},
		[]string{"status"},
	)

	m.syncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_sync_duration_seconds",
			Help:    "Time taken to sync bookings from the reservation system",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	m.snapshotsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_snapshots_total",
			Help: "Total number of booking snapshots persisted",
		},
	)

	m.cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_cache_requests_total",
			Help: "Booking API cache lookups by outcome",
		},
		[]string{"outcome"}, // hit, miss
	)
}

// Describe implements the prometheus.Collector interface.
func (m *BookingMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.syncsTotal.Describe(ch)
	m.syncDuration.Describe(ch)
	m.snapshotsTotal.Describe(ch)
	m.cacheHitsTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *BookingMetrics) Collect(ch chan<- prometheus.Metric) {
	m.syncsTotal.Collect(ch)
	m.syncDuration.Collect(ch)
	m.snapshotsTotal.Collect(ch)
	m.cacheHitsTotal.Collect(ch)
}

// RecordSync records a booking sync attempt.
func (m *BookingMetrics) RecordSync(status string) {
	m.syncsTotal.WithLabelValues(status).Inc()
}

// RecordSyncDuration records the duration of a sync in seconds.
func (m *BookingMetrics) RecordSyncDuration(seconds float64) {
	m.syncDuration.Observe(seconds)
}

// RecordSnapshots counts persisted booking snapshots.
func (m *BookingMetrics) RecordSnapshots(count int) {
	m.snapshotsTotal.Add(float64(count))
}

// RecordCacheLookup records a cache hit or miss.
func (m *BookingMetrics) RecordCacheLookup(outcome string) {
	m.cacheHitsTotal.WithLabelValues(outcome).Inc()
}
