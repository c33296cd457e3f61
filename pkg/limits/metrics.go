package limits

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus collectors for the limits package.
type Metrics struct {
	evaluations      *prometheus.CounterVec
	rejections       *prometheus.CounterVec
	storeErrors      prometheus.Counter
	evaluationTiming prometheus.Histogram
}

// NewMetrics creates the limits collectors, registered on the default
// registry.
func NewMetrics() *Metrics {
	return &Metrics{
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webrana_limits_evaluations_total",
				Help: "Total rate-limiter evaluations by result",
			},
			[]string{"result"},
		),

		rejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webrana_limits_rejections_total",
				Help: "Total quota rejections by exceeded dimension",
			},
			[]string{"dimension"},
		),

		storeErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "webrana_limits_store_errors_total",
				Help: "Total quota store failures (each fails a request closed)",
			},
		),

		evaluationTiming: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "webrana_limits_evaluation_duration_seconds",
				Help:    "Duration of rate-limiter evaluations",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs to ~400ms
			},
		),
	}
}

// RecordEvaluation records one evaluation outcome.
func (m *Metrics) RecordEvaluation(allowed bool) {
	result := "admitted"
	if !allowed {
		result = "rejected"
	}
	m.evaluations.WithLabelValues(result).Inc()
}

// RecordRejection records a rejection by dimension.
func (m *Metrics) RecordRejection(dimension string) {
	m.rejections.WithLabelValues(dimension).Inc()
}

// RecordStoreError records a quota store failure.
func (m *Metrics) RecordStoreError() {
	m.storeErrors.Inc()
}

// RecordEvaluationDuration records evaluation latency in seconds.
func (m *Metrics) RecordEvaluationDuration(seconds float64) {
	m.evaluationTiming.Observe(seconds)
}
