package audit

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CounterEmitter counts audit events by action and outcome.
type CounterEmitter struct {
	events *prometheus.CounterVec
}

func NewCounterEmitter(reg prometheus.Registerer) *CounterEmitter {
	return &CounterEmitter{
		events: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_audit_events_total",
			Help: "Audit events recorded, by action and outcome",
		}, []string{"action", "outcome"}),
	}
}

func (c *CounterEmitter) Emit(_ context.Context, event Event) error {
	outcome := event.Outcome
	if outcome == "" {
		outcome = "none"
	}
	c.events.WithLabelValues(event.Action, outcome).Inc()
	return nil
}

var _ Emitter = (*CounterEmitter)(nil)
