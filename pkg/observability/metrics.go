package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/journeys/pkg/domain"
)

// Namespace prefixes every metric name.
const Namespace = "journeys"

// Metrics holds the session collectors and the registry they live in.
type Metrics struct {
	Registry *prometheus.Registry

	SessionsOpened     *prometheus.CounterVec
	SessionsCompleted  *prometheus.CounterVec
	SessionsClosed     *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
	Answers            *prometheus.CounterVec
	Steps              *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	InvalidFields      prometheus.Histogram
	RepeatInstances    *prometheus.CounterVec
}

// NewMetrics registers the collectors in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SessionsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sessions_opened_total",
			Help:      "Preview sessions opened.",
		}, []string{"journey", "mode"}),
		SessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sessions_completed_total",
			Help:      "Preview sessions that advanced past their last step.",
		}, []string{"journey"}),
		SessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sessions_closed_total",
			Help:      "Preview sessions closed.",
		}, []string{"journey"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "sessions_active",
			Help:      "Preview sessions opened and not yet closed.",
		}),
		Answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "answers_total",
			Help:      "Answers recorded.",
		}, []string{"journey"}),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "step_moves_total",
			Help:      "Cursor moves by direction.",
		}, []string{"journey", "direction"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "validation_failures_total",
			Help:      "Advances blocked by required-field validation.",
		}, []string{"journey"}),
		InvalidFields: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "validation_invalid_fields",
			Help:      "Fields failing per blocked advance.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		}),
		RepeatInstances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "repeat_instances_total",
			Help:      "Repeat instances added or removed by hand.",
		}, []string{"journey", "action"}),
	}
	m.Registry.MustRegister(
		m.SessionsOpened, m.SessionsCompleted, m.SessionsClosed, m.ActiveSessions,
		m.Answers, m.Steps, m.ValidationFailures, m.InvalidFields, m.RepeatInstances,
	)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionOpen: func(_ context.Context, e *domain.SessionEvent) {
			m.SessionsOpened.WithLabelValues(e.JourneyID, string(e.Mode)).Inc()
			m.ActiveSessions.Inc()
		},
		OnSessionClose: func(_ context.Context, e *domain.SessionEvent) {
			m.SessionsClosed.WithLabelValues(e.JourneyID).Inc()
			m.ActiveSessions.Dec()
		},
		OnComplete: func(_ context.Context, e *domain.SessionEvent) {
			m.SessionsCompleted.WithLabelValues(e.JourneyID).Inc()
		},
		OnAnswer: func(_ context.Context, e *domain.StepEvent) {
			m.Answers.WithLabelValues(e.JourneyID).Inc()
		},
		OnAdvance: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.JourneyID, "next").Inc()
		},
		OnRetreat: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.JourneyID, "prev").Inc()
		},
		OnValidationFailed: func(_ context.Context, e *domain.ValidationEvent) {
			m.ValidationFailures.WithLabelValues(e.JourneyID).Inc()
			m.InvalidFields.Observe(float64(len(e.Errors)))
		},
		OnInstanceAdded: func(_ context.Context, e *domain.InstanceEvent) {
			m.RepeatInstances.WithLabelValues(e.JourneyID, "add").Inc()
		},
		OnInstanceRemoved: func(_ context.Context, e *domain.InstanceEvent) {
			m.RepeatInstances.WithLabelValues(e.JourneyID, "remove").Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
