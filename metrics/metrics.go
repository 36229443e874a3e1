// Package metrics exposes Prometheus collectors for condition evaluations.
//
// The core engine has no metrics dependency; callers feed a Recorder from
// a context's log after (or during) an evaluation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/verdict-eval/verdict/condition"
)

// Recorder tracks condition evaluation metrics.
//
// Metrics:
//   - <ns>_condition_outcomes_total: outcomes by alias and kind
//   - <ns>_condition_matches_total: completed outcomes by alias and result
//   - <ns>_condition_duration_seconds: evaluation duration by alias
type Recorder struct {
	outcomesTotal *prometheus.CounterVec
	matchesTotal  *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewRecorder creates and registers the collectors with registry.
func NewRecorder(namespace string, registry *prometheus.Registry) *Recorder {
	r := &Recorder{
		outcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "condition_outcomes_total",
				Help:      "Total number of condition outcomes by kind",
			},
			[]string{"alias", "kind"},
		),

		matchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "condition_matches_total",
				Help:      "Total number of completed condition evaluations by result",
			},
			[]string{"alias", "matched"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "condition_duration_seconds",
				Help:      "Duration of condition evaluations in seconds",
				// Predicates range from sub-millisecond checks to
				// multi-second delayed or remote work.
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"alias"},
		),
	}

	registry.MustRegister(
		r.outcomesTotal,
		r.matchesTotal,
		r.duration,
	)

	return r
}

// Observe records a single outcome.
func (r *Recorder) Observe(o condition.Outcome) {
	r.outcomesTotal.WithLabelValues(o.Alias, o.Kind.String()).Inc()
	r.duration.WithLabelValues(o.Alias).Observe(o.Duration().Seconds())
	if o.Kind == condition.OutcomeCompleted {
		matched := "false"
		if o.Matched {
			matched = "true"
		}
		r.matchesTotal.WithLabelValues(o.Alias, matched).Inc()
	}
}

// ObserveLog records every outcome of an execution log, typically a
// Context.Log snapshot taken after Matches returns.
func (r *Recorder) ObserveLog(log []condition.Outcome) {
	for _, o := range log {
		r.Observe(o)
	}
}
