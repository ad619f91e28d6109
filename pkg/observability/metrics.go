package observability

import (
	"context"

	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the engine hooks.
type Metrics struct {
	NodeVisits       *prometheus.CounterVec
	NodeErrors       *prometheus.CounterVec
	NodeDuration     *prometheus.HistogramVec
	ProviderDuration *prometheus.HistogramVec
	ProviderErrors   *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aacflow_node_visits_total",
				Help: "Total number of node invocations",
			},
			[]string{"node_id"},
		),
		NodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aacflow_node_errors_total",
				Help: "Total number of failed node invocations",
			},
			[]string{"node_id"},
		),
		NodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aacflow_node_duration_seconds",
				Help:    "Duration of node invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"node_id"},
		),
		ProviderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aacflow_provider_duration_seconds",
				Help:    "Duration of generation and verification calls",
				Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
			},
			[]string{"role", "node_id"},
		),
		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aacflow_provider_errors_total",
				Help: "Total number of failed provider calls",
			},
			[]string{"role"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aacflow_transitions_total",
				Help: "Total number of routed edges taken",
			},
			[]string{"from", "to"},
		),
	}

	for _, c := range []prometheus.Collector{m.NodeVisits, m.NodeErrors, m.NodeDuration, m.ProviderDuration, m.ProviderErrors, m.Transitions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodeDuration.WithLabelValues(e.NodeID).Observe(e.Duration.Seconds())
			if e.IsError {
				m.NodeErrors.WithLabelValues(e.NodeID).Inc()
				return
			}
			m.Transitions.WithLabelValues(e.NodeID, e.Next).Inc()
		},
		OnProviderReturn: func(ctx context.Context, e *domain.ProviderEvent) {
			m.ProviderDuration.WithLabelValues(e.Role, e.NodeID).Observe(e.Duration.Seconds())
			if e.IsError {
				m.ProviderErrors.WithLabelValues(e.Role).Inc()
			}
		},
	}
}
