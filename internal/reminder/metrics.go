package reminder

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the watcher's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	dueCards  *prometheus.GaugeVec
	sent      *prometheus.CounterVec
	failures  *prometheus.CounterVec
	lastCheck prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dueCards: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tutor_due_cards",
			Help: "Flashcards currently due for review, by topic.",
		}, []string{"topic"}),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_reminders_sent_total",
			Help: "Reminders delivered, by topic.",
		}, []string{"topic"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutor_reminder_failures_total",
			Help: "Reminders the notifier failed to deliver, by topic.",
		}, []string{"topic"}),
		lastCheck: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tutor_reminder_last_check_timestamp_seconds",
			Help: "Unix time of the last due-card check.",
		}),
	}
	m.registry.MustRegister(m.dueCards, m.sent, m.failures, m.lastCheck)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(counts map[string]int) {
	m.dueCards.Reset()
	for topic, n := range counts {
		m.dueCards.WithLabelValues(topic).Set(float64(n))
	}
	m.lastCheck.SetToCurrentTime()
}
