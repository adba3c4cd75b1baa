package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FormMetrics instruments the application form controller
type FormMetrics struct {
	// Validation passes that produced at least one error, by field
	ValidationErrors *prometheus.CounterVec

	// Finished submissions by outcome (success, failure, abandoned)
	Submissions *prometheus.CounterVec

	// Collaborator round-trip time by outcome
	SubmitDuration *prometheus.HistogramVec
}

// NewFormMetrics creates the metrics and registers them with reg
func NewFormMetrics(reg prometheus.Registerer) *FormMetrics {
	m := &FormMetrics{
		ValidationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kqs_apply_validation_errors_total",
				Help: "Total number of field validation errors reported on submit attempts",
			},
			[]string{"field"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kqs_apply_submissions_total",
				Help: "Total number of finished application submissions by outcome",
			},
			[]string{"outcome"},
		),
		SubmitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kqs_apply_submit_duration_seconds",
				Help:    "Time spent waiting for the submission collaborator",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(m.ValidationErrors, m.Submissions, m.SubmitDuration)
	return m
}

// ValidationFailed counts one error per rejected field
func (m *FormMetrics) ValidationFailed(fields []string) {
	for _, f := range fields {
		m.ValidationErrors.WithLabelValues(f).Inc()
	}
}

// SubmissionFinished records the outcome and latency of one submission
func (m *FormMetrics) SubmissionFinished(outcome string, elapsed time.Duration) {
	m.Submissions.WithLabelValues(outcome).Inc()
	m.SubmitDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
