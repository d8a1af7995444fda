package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	windowsFetched *prometheus.CounterVec
	windowReadings *prometheus.HistogramVec
	malformedTotal *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	lastVoltage    *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
	errorsTotal    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		windowsFetched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltwatch_windows_fetched_total",
				Help: "Total number of reading windows fetched from the source",
			},
			[]string{"collection"},
		),
		windowReadings: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voltwatch_window_readings",
				Help:    "Number of readings per fetched window",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"collection"},
		),
		malformedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltwatch_malformed_records_total",
				Help: "Records skipped because timestamp or voltage was missing",
			},
			[]string{"collection", "reason"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltwatch_cache_lookups_total",
				Help: "Window cache lookups by outcome",
			},
			[]string{"collection", "outcome"},
		),
		lastVoltage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "voltwatch_last_voltage",
				Help: "Most recent voltage observed per collection",
			},
			[]string{"collection"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voltwatch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voltwatch_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordWindowFetched records a completed window fetch.
func (r *Recorder) RecordWindowFetched(collection string, readings int) {
	r.windowsFetched.WithLabelValues(collection).Inc()
	r.windowReadings.WithLabelValues(collection).Observe(float64(readings))
}

// RecordMalformed records a skipped record.
func (r *Recorder) RecordMalformed(collection, reason string) {
	r.malformedTotal.WithLabelValues(collection, reason).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Recorder) RecordCacheLookup(collection string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	r.cacheLookups.WithLabelValues(collection, outcome).Inc()
}

// RecordLastVoltage records the most recent voltage for a collection.
func (r *Recorder) RecordLastVoltage(collection string, v float64) {
	r.lastVoltage.WithLabelValues(collection).Set(v)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
