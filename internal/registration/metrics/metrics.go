package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for registration operations.
type Metrics struct {
	Lookups             *prometheus.CounterVec
	LookupMatches       prometheus.Histogram
	Mutations           *prometheus.CounterVec
	SheetLatency        *prometheus.HistogramVec
	SheetRowsRead       prometheus.Gauge
	NotificationsQueued prometheus.Counter
}

// New registers and returns registration collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_registration_lookups_total",
			Help: "Total number of registration lookups, labeled by outcome (found, empty, error)",
		}, []string{"outcome"}),
		LookupMatches: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "regdesk_registration_lookup_matches",
			Help:    "Distribution of rows matched per lookup",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25},
		}),
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_registration_mutations_total",
			Help: "Total number of cancel/confirm attempts, labeled by action and outcome",
		}, []string{"action", "outcome"}),
		SheetLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regdesk_sheet_operation_latency_seconds",
			Help:    "Latency of spreadsheet reads and writes in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		SheetRowsRead: f.NewGauge(prometheus.GaugeOpts{
			Name: "regdesk_sheet_rows",
			Help: "Data rows in the registrations sheet at the last read",
		}),
		NotificationsQueued: f.NewCounter(prometheus.CounterOpts{
			Name: "regdesk_registration_notifications_queued_total",
			Help: "Cancellations handed to the notifier",
		}),
	}
}

func (m *Metrics) ObserveLookup(outcome string, matches int) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
	if outcome != "error" {
		m.LookupMatches.Observe(float64(matches))
	}
}

func (m *Metrics) ObserveMutation(action, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) ObserveSheet(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.SheetLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) SetSheetRows(n int) {
	if m == nil {
		return
	}
	m.SheetRowsRead.Set(float64(n))
}

func (m *Metrics) IncrementNotificationsQueued() {
	if m == nil {
		return
	}
	m.NotificationsQueued.Inc()
}
