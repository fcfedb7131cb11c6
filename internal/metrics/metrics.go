// Package metrics defines the Prometheus counters exported by the registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes, used as the "outcome" label value.
const (
	OutcomeCreated  = "created"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds all Prometheus metrics for the registry.
type Metrics struct {
	Registrations *prometheus.CounterVec
	Lookups       *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raffle_registry_registrations_total",
			Help: "Registration attempts by outcome",
		}, []string{"outcome"}),
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raffle_registry_lookups_total",
			Help: "Read operations by kind (one, all)",
		}, []string{"kind"}),
	}
}

// ObserveRegistration counts one registration attempt. Safe on a nil receiver.
func (m *Metrics) ObserveRegistration(outcome string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(outcome).Inc()
}

// ObserveLookup counts one read. Safe on a nil receiver.
func (m *Metrics) ObserveLookup(kind string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(kind).Inc()
}
