// Package metrics exports solver and event-bus activity to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeusync/xrig/internal/core/constraints"
	"github.com/zeusync/xrig/internal/core/events/bus"
	"github.com/zeusync/xrig/internal/core/system"
)

var (
	_ system.Recorder = (*Metrics)(nil)
	_ bus.Observer    = (*Metrics)(nil)
)

// Metrics owns a private registry so several engines (and tests) never
// collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	resolves     *prometheus.CounterVec
	errors       *prometheus.CounterVec
	collisions   *prometheus.CounterVec
	busEvents    *prometheus.CounterVec
	tickDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xrig_constraint_resolves_total",
				Help: "Total number of constraint resolves",
			},
			[]string{"kind"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xrig_constraint_errors_total",
				Help: "Total number of failed constraint resolves",
			},
			[]string{"constraint"},
		),
		collisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xrig_collisions_total",
				Help: "Ticks in which a collision constraint hit a collider",
			},
			[]string{"constraint"},
		),
		busEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xrig_bus_events_total",
				Help: "Events published on the engine bus",
			},
			[]string{"event"},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "xrig_tick_duration_seconds",
				Help:    "Wall time spent resolving all constraints in a tick",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),
	}
	m.registry.MustRegister(m.resolves, m.errors, m.collisions, m.busEvents, m.tickDuration)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveResolve(kind constraints.Kind, name string, _ time.Duration, err error) {
	m.resolves.WithLabelValues(string(kind)).Inc()
	if err != nil {
		m.errors.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) ObserveTick(took time.Duration) {
	m.tickDuration.Observe(took.Seconds())
}

func (m *Metrics) OnPublish(_, eventType string, event bus.Event) {
	m.busEvents.WithLabelValues(eventType).Inc()
	if eventType == constraints.EventCollision {
		m.collisions.WithLabelValues(event.Source()).Inc()
	}
}

func (m *Metrics) OnDelivered(string, string, int, error, time.Duration) {}
