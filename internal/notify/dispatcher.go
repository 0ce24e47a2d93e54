package notify

import (
	"context"
	"log/slog"
	"sync"

	"regdesk/internal/registration/models"
	"regdesk/pkg/platform/audit"
	"regdesk/pkg/requestcontext"
)

// Notifier is the synchronous delivery path wrapped by Dispatcher.
type Notifier interface {
	NotifyCancellation(ctx context.Context, notice models.CancellationNotice) bool
}

// Outcome is reported for every dispatched notice.
type Outcome struct {
	Notice    models.CancellationNotice
	RequestID string
	Delivered bool
}

// Dispatcher runs deliveries on their own goroutines after the triggering
// write has committed. Callers never wait for or see the result; outcomes
// flow through an internal channel to a single collector that logs them.
type Dispatcher struct {
	notifier  Notifier
	logger    *slog.Logger
	auditor   *audit.Logger
	metrics   *Metrics
	onOutcome func(Outcome)

	mu        sync.Mutex
	closed    bool
	inflight  sync.WaitGroup
	outcomes  chan Outcome
	collected chan struct{}
}

type DispatcherOption func(*Dispatcher)

func WithAuditor(a *audit.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.auditor = a
	}
}

func WithDispatchMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithOutcomeHook is called by the collector after each outcome is logged.
func WithOutcomeHook(fn func(Outcome)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onOutcome = fn
	}
}

func NewDispatcher(notifier Notifier, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifier:  notifier,
		logger:    logger,
		outcomes:  make(chan Outcome, 16),
		collected: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	go d.collect()
	return d
}

// NotifyCancellation queues notice for delivery and returns immediately. The
// request context's values are kept but its cancellation is not, so a client
// disconnect does not abort delivery.
func (d *Dispatcher) NotifyCancellation(ctx context.Context, notice models.CancellationNotice) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.WarnContext(ctx, "dispatcher closed, dropping notification",
			"request_id", requestcontext.RequestID(ctx))
		return
	}
	d.inflight.Add(1)
	d.mu.Unlock()

	d.metrics.IncInFlight()
	go d.deliver(context.WithoutCancel(ctx), notice)
}

func (d *Dispatcher) deliver(ctx context.Context, notice models.CancellationNotice) {
	defer d.inflight.Done()
	defer d.metrics.DecInFlight()

	delivered := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.ErrorContext(ctx, "notification panicked", "panic", r)
			}
		}()
		delivered = d.notifier.NotifyCancellation(ctx, notice)
	}()

	d.outcomes <- Outcome{
		Notice:    notice,
		RequestID: requestcontext.RequestID(ctx),
		Delivered: delivered,
	}
}

func (d *Dispatcher) collect() {
	defer close(d.collected)
	for o := range d.outcomes {
		outcome := OutcomeDelivered
		if !o.Delivered {
			outcome = OutcomeFailed
			d.logger.Warn("cancellation notice not delivered",
				"course", o.Notice.CourseName,
				"request_id", o.RequestID,
			)
		}
		ctx := requestcontext.WithRequestID(context.Background(), o.RequestID)
		d.auditor.Log(ctx, audit.EventNotificationSent,
			"course", o.Notice.CourseName,
			"outcome", outcome,
		)
		if d.onOutcome != nil {
			d.onOutcome(o)
		}
	}
}

// Shutdown stops accepting notices and waits for in-flight deliveries until
// ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	alreadyClosed := d.closed
	d.closed = true
	d.mu.Unlock()
	if alreadyClosed {
		return nil
	}

	drained := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		close(d.outcomes)
		<-d.collected
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
