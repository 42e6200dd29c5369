// Package metrics exposes Prometheus collectors for step validation and
// record loading.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dctmd"

// Metrics records validation and load activity. All methods are safe for
// concurrent use.
type Metrics struct {
	stepValidations *prometheus.CounterVec
	stepDuration    *prometheus.HistogramVec
	fieldErrors     *prometheus.CounterVec
	loads           *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stepValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_validations_total",
			Help:      "Step validations by validator kind and result.",
		}, []string{"kind", "valid"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_validation_duration_seconds",
			Help:      "Duration of step validations by validator kind.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"kind"}),
		fieldErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_errors_total",
			Help:      "Field errors attached by step validations, by validator kind.",
		}, []string{"kind"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_loads_total",
			Help:      "Record loads by outcome (direct, merged, defaults, newer).",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.stepValidations, m.stepDuration, m.fieldErrors, m.loads)
	}
	return m
}

// ObserveStep records one step validation.
func (m *Metrics) ObserveStep(kind string, valid bool, fieldErrors int, duration time.Duration) {
	m.stepValidations.WithLabelValues(kind, strconv.FormatBool(valid)).Inc()
	m.stepDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if fieldErrors > 0 {
		m.fieldErrors.WithLabelValues(kind).Add(float64(fieldErrors))
	}
}

// ObserveLoad records one record load outcome.
func (m *Metrics) ObserveLoad(outcome string) {
	m.loads.WithLabelValues(outcome).Inc()
}

// StepValidations returns the step validation counter, for inspection.
func (m *Metrics) StepValidations() *prometheus.CounterVec { return m.stepValidations }

// FieldErrors returns the field error counter, for inspection.
func (m *Metrics) FieldErrors() *prometheus.CounterVec { return m.fieldErrors }

// Loads returns the load outcome counter, for inspection.
func (m *Metrics) Loads() *prometheus.CounterVec { return m.loads }
