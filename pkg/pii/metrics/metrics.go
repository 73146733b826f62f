// Package metrics provides observability for the pii module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks per-field normalization outcomes and batch durations.
type Metrics struct {
	FieldsHashed      *prometheus.CounterVec
	FieldsRejected    *prometheus.CounterVec
	NormalizeDuration prometheus.Histogram
}

// New creates a Metrics instance with all pii module metrics registered on
// the default registry.
func New() *Metrics {
	return &Metrics{
		FieldsHashed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "matchkey_fields_hashed_total",
			Help: "Total number of fields successfully normalized and hashed",
		}, []string{"field"}),
		FieldsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "matchkey_fields_rejected_total",
			Help: "Total number of fields dropped by normalization",
		}, []string{"field"}),
		NormalizeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchkey_normalize_duration_seconds",
			Help:    "Duration of batch Normalize calls",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
}

// IncrementFieldHashed records a successful normalize-and-hash for a field.
func (m *Metrics) IncrementFieldHashed(field string) {
	m.FieldsHashed.WithLabelValues(field).Inc()
}

// IncrementFieldRejected records a validation rejection for a field.
func (m *Metrics) IncrementFieldRejected(field string) {
	m.FieldsRejected.WithLabelValues(field).Inc()
}

// ObserveNormalize records the duration of a batch Normalize call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveNormalize(start time.Time) {
	m.NormalizeDuration.Observe(time.Since(start).Seconds())
}
