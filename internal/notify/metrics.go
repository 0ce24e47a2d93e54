package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for notification delivery.
type Metrics struct {
	Outcomes *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_notifications_total",
			Help: "Notification attempts, labeled by provider and outcome",
		}, []string{"provider", "outcome"}),
		Latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regdesk_notification_latency_seconds",
			Help:    "Latency of notification provider calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "regdesk_notifications_in_flight",
			Help: "Notifications dispatched and not yet finished",
		}),
	}
}

func (m *Metrics) ObserveOutcome(provider, outcome string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ObserveLatency(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.Latency.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) IncInFlight() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

func (m *Metrics) DecInFlight() {
	if m == nil {
		return
	}
	m.InFlight.Dec()
}
