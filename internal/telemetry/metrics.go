package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's counters on a private registry so several
// engines (tests, the hub subcommand) never collide on registration.
type Metrics struct {
	registry      *prometheus.Registry
	signals       *prometheus.CounterVec
	unlocks       *prometheus.CounterVec
	notifications *prometheus.CounterVec
	matcherPanics *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eastereggs",
			Name:      "signals_total",
			Help:      "Input signals dispatched to matchers, by kind.",
		}, []string{"kind"}),
		unlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eastereggs",
			Name:      "unlocks_total",
			Help:      "Achievements newly unlocked in this process.",
		}, []string{"id"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eastereggs",
			Name:      "notifications_total",
			Help:      "Transient notifications shown, by display kind.",
		}, []string{"kind"}),
		matcherPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eastereggs",
			Name:      "matcher_panics_total",
			Help:      "Recovered panics inside signal handlers.",
		}, []string{"matcher"}),
	}
	m.registry.MustRegister(m.signals, m.unlocks, m.notifications, m.matcherPanics)
	return m
}

func (m *Metrics) Signal(kind string) {
	if m == nil {
		return
	}
	m.signals.WithLabelValues(kind).Inc()
}

func (m *Metrics) Unlock(id string) {
	if m == nil {
		return
	}
	m.unlocks.WithLabelValues(id).Inc()
}

func (m *Metrics) Notification(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *Metrics) MatcherPanic(name string) {
	if m == nil {
		return
	}
	m.matcherPanics.WithLabelValues(name).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
