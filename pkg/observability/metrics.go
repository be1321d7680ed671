package observability

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the survey collectors.
type Metrics struct {
	QuestionsAsked    *prometheus.CounterVec
	Verdicts          *prometheus.CounterVec
	Skips             *prometheus.CounterVec
	Interrupts        prometheus.Counter
	SessionsCompleted *prometheus.CounterVec
	ValidatorDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QuestionsAsked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_questions_asked_total",
			Help: "Questions that became current.",
		}, []string{"question"}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_verdicts_total",
			Help: "Validator verdicts by outcome.",
		}, []string{"question", "outcome"}),
		Skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_skips_total",
			Help: "Questions skipped after too many rejected answers.",
		}, []string{"question"}),
		Interrupts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "intake_interrupts_total",
			Help: "Interrupts detected in user answers.",
		}),
		SessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_sessions_completed_total",
			Help: "Completed sessions by reason.",
		}, []string{"reason"}),
		ValidatorDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intake_validator_duration_seconds",
			Help:    "Time spent in the answer validator.",
			Buckets: prometheus.DefBuckets,
		}, []string{"question"}),
	}
	if reg != nil {
		reg.MustRegister(m.QuestionsAsked, m.Verdicts, m.Skips, m.Interrupts, m.SessionsCompleted, m.ValidatorDuration)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnQuestionAsked: func(_ context.Context, e *domain.QuestionEvent) {
			m.QuestionsAsked.WithLabelValues(e.QuestionID).Inc()
		},
		OnVerdict: func(_ context.Context, e *domain.VerdictEvent) {
			m.Verdicts.WithLabelValues(e.QuestionID, e.Outcome).Inc()
			m.ValidatorDuration.WithLabelValues(e.QuestionID).Observe(e.Duration.Seconds())
		},
		OnSkip: func(_ context.Context, e *domain.QuestionEvent) {
			m.Skips.WithLabelValues(e.QuestionID).Inc()
		},
		OnInterrupt: func(_ context.Context, _ *domain.QuestionEvent) {
			m.Interrupts.Inc()
		},
		OnComplete: func(_ context.Context, e *domain.CompleteEvent) {
			m.SessionsCompleted.WithLabelValues(string(e.Reason)).Inc()
		},
	}
}
