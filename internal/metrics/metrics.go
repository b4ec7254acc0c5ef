// Package metrics exposes chatbot counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dinebot"

// Metrics owns a private registry so tests and multiple servers don't clash.
type Metrics struct {
	registry *prometheus.Registry

	turns        *prometheus.CounterVec
	kbAnswers    *prometheus.CounterVec
	callLogs     *prometheus.CounterVec
	liveSessions prometheus.Gauge
}

// New registers every collector, plus Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Chat turns handled, by resulting state and intent.",
		}, []string{"state", "intent"}),
		kbAnswers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kb_answers_total",
			Help:      "Knowledge base answers, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		callLogs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calllog_appends_total",
			Help:      "Conversation log appends, by outcome.",
		}, []string{"outcome"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_live",
			Help:      "Sessions currently held in the session store.",
		}),
	}

	m.registry.MustRegister(
		m.turns,
		m.kbAnswers,
		m.callLogs,
		m.liveSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RecordTurn(state, intent string) {
	if intent == "" {
		intent = "none"
	}
	m.turns.WithLabelValues(state, intent).Inc()
}

func (m *Metrics) RecordKBAnswer(mode, outcome string) {
	m.kbAnswers.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) RecordCallLog(outcome string) {
	m.callLogs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetLiveSessions(n int) {
	m.liveSessions.Set(float64(n))
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
