// Package metrics exports validation outcomes as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/formskema"
)

// Outcome label values.
const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Prometheus is a formskema.Observer recording runs, error keys and
// durations per schema name.
type Prometheus struct {
	runs      *prometheus.CounterVec
	errorKeys *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

var _ formskema.Observer = (*Prometheus)(nil)

// NewPrometheus creates the collectors under namespace and registers them
// with reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	p := &Prometheus{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of validations by outcome",
			},
			[]string{"schema", "outcome"},
		),
		errorKeys: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_error_keys_total",
				Help:      "Total number of model keys reported with errors",
			},
			[]string{"schema"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_duration_seconds",
				Help:      "Duration of validations including Async validators",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"schema"},
		),
	}
	for _, c := range []prometheus.Collector{p.runs, p.errorKeys, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ObserveValidation implements formskema.Observer.
func (p *Prometheus) ObserveValidation(schema string, took time.Duration, errors formskema.Tree, err error) {
	outcome := OutcomeValid
	switch {
	case err != nil:
		outcome = OutcomeError
	case len(errors) > 0:
		outcome = OutcomeInvalid
		p.errorKeys.WithLabelValues(schema).Add(float64(len(errors)))
	}
	p.runs.WithLabelValues(schema, outcome).Inc()
	p.duration.WithLabelValues(schema).Observe(took.Seconds())
}
