// Package metrics exposes chat pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "job_engine"

// Metrics owns its registry so several instances can coexist in tests
type Metrics struct {
	registry     *prometheus.Registry
	intents      *prometheus.CounterVec
	jobSearches  *prometheus.CounterVec
	turns        *prometheus.CounterVec
	chatDuration prometheus.Histogram
	ingested     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_classifications_total",
			Help:      "Messages classified, by deciding tier and outcome.",
		}, []string{"source", "job_search"}),
		jobSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_searches_total",
			Help:      "Job searches triggered from chat, by outcome.",
		}, []string{"outcome"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Chat turns, by generation path.",
		}, []string{"outcome"}),
		chatDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_duration_seconds",
			Help:      "End to end latency of a chat turn.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}),
		ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_chunks_indexed_total",
			Help:      "Chunks embedded and written to the vector store.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.intents, m.jobSearches, m.turns, m.chatDuration, m.ingested,
	)
	return m
}

// TrackSessions exports the live session count read from fn at scrape time
func (m *Metrics) TrackSessions(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Sessions currently held in memory.",
	}, func() float64 { return float64(fn()) }))
}

func (m *Metrics) IntentClassified(source string, isJobSearch bool) {
	m.intents.WithLabelValues(source, strconv.FormatBool(isJobSearch)).Inc()
}

func (m *Metrics) JobSearchCompleted(outcome string) {
	m.jobSearches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TurnCompleted(outcome string) {
	m.turns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveChat(d time.Duration) {
	m.chatDuration.Observe(d.Seconds())
}

func (m *Metrics) ChunksIndexed(n int) {
	m.ingested.Add(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
