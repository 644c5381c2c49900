// Package metrics exposes Prometheus instrumentation for the control loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Transitions    *prometheus.CounterVec
	ActuatorErrors *prometheus.CounterVec
	Pulses         *prometheus.CounterVec
	Ticks          prometheus.Counter
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mudra_transitions_total",
				Help: "Total number of state machine transitions",
			},
			[]string{"from", "to"},
		),
		ActuatorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mudra_actuator_errors_total",
				Help: "Total number of failed robot actuator calls",
			},
			[]string{"call"},
		),
		Pulses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mudra_pulses_total",
				Help: "Total number of execute pulses sent, by selected program",
			},
			[]string{"program"},
		),
		Ticks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mudra_ticks_total",
				Help: "Total number of control loop ticks processed",
			},
		),
	}

	m.registry.MustRegister(m.Transitions, m.ActuatorErrors, m.Pulses, m.Ticks)
	return m
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
