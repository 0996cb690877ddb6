// Package metrics exposes Prometheus collectors for the game server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the game collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	TurnsTotal     prometheus.Counter
	PelletsEaten   *prometheus.CounterVec
	Deaths         prometheus.Counter
	RoundsFinished *prometheus.CounterVec
	TurnLatency    prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors under namespace and registers them with
// reg. A nil reg gets a fresh private registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live game sessions",
		}),
		TurnsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of turns played",
		}),
		PelletsEaten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pellets_eaten_total",
			Help:      "Pellets eaten, by kind",
		}, []string{"kind"}),
		Deaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "player_deaths_total",
			Help:      "Total number of lives lost to ghosts",
		}),
		RoundsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_finished_total",
			Help:      "Rounds that ended, by outcome",
		}, []string{"outcome"}),
		TurnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_seconds",
			Help:      "Time spent processing one turn",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}

	reg.MustRegister(
		m.ActiveSessions,
		m.TurnsTotal,
		m.PelletsEaten,
		m.Deaths,
		m.RoundsFinished,
		m.TurnLatency,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}

	return m
}

// Handler serves the registry the metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// ObserveTurn records one processed turn. deaths is the number of lives the
// turn cost, which can exceed one when ghosts catch the player after its move.
func (m *Metrics) ObserveTurn(d time.Duration, pellets, powerPellets, deaths int) {
	if m == nil {
		return
	}
	m.TurnsTotal.Inc()
	m.TurnLatency.Observe(d.Seconds())
	if pellets > 0 {
		m.PelletsEaten.WithLabelValues("pellet").Add(float64(pellets))
	}
	if powerPellets > 0 {
		m.PelletsEaten.WithLabelValues("power_pellet").Add(float64(powerPellets))
	}
	if deaths > 0 {
		m.Deaths.Add(float64(deaths))
	}
}

// RoundFinished records a round ending with outcome "victory" or "game_over".
func (m *Metrics) RoundFinished(outcome string) {
	if m == nil {
		return
	}
	m.RoundsFinished.WithLabelValues(outcome).Inc()
}
