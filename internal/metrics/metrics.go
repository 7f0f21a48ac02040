// Package metrics exposes engine activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/verte-zerg/typewright/internal/engine"
)

// Metrics holds the collectors fed by engine hooks.
type Metrics struct {
	chars     prometheus.Counter
	mistakes  prometheus.Counter
	pauses    *prometheus.CounterVec
	completed prometheus.Counter
	delay     prometheus.Histogram
	state     prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		chars: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "typewright_characters_emitted_total",
			Help: "Characters of the text typed into the target application. Typos and backspaces are not counted.",
		}),
		mistakes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "typewright_mistakes_total",
			Help: "Simulated typos.",
		}),
		pauses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "typewright_pauses_total",
			Help: "Sessions paused, by reason.",
		}, []string{"reason"}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "typewright_sessions_completed_total",
			Help: "Sessions typed to the end.",
		}),
		delay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "typewright_char_delay_seconds",
			Help:    "Delay scheduled after each character.",
			Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 20},
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "typewright_state",
			Help: "Engine state: 0 idle, 1 counting down, 2 typing, 3 paused.",
		}),
	}
	for _, c := range []prometheus.Collector{m.chars, m.mistakes, m.pauses, m.completed, m.delay, m.state} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns engine hooks that update the collectors.
func (m *Metrics) Hooks() engine.Hooks {
	return engine.Hooks{
		OnStateChange: func(_, to engine.State) {
			m.state.Set(float64(to))
		},
		OnEmit: func(rune) {
			m.chars.Inc()
		},
		OnDelay: func(d time.Duration) {
			m.delay.Observe(d.Seconds())
		},
		OnMistake: func(_, _ rune) {
			m.mistakes.Inc()
		},
		OnPause: func(reason engine.PauseReason) {
			m.pauses.WithLabelValues(string(reason)).Inc()
		},
		OnComplete: func(engine.Summary) {
			m.completed.Inc()
		},
	}
}
