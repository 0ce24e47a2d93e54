// Package notify delivers best-effort cancellation notices to course handlers.
// Delivery failures are logged and counted, never returned.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"regdesk/internal/registration/models"
	"regdesk/pkg/platform/circuit"
	"regdesk/pkg/platform/privacy"
	"regdesk/pkg/platform/tracer"
)

// Sender pushes one text message to one recipient over a chat API.
type Sender interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Configured is false when the provider credential is missing.
	Configured() bool
	Send(ctx context.Context, recipient, text string) error
}

// Outcome labels.
const (
	OutcomeDelivered   = "delivered"
	OutcomeFailed      = "failed"
	OutcomeSkipped     = "skipped"
	OutcomeCircuitOpen = "circuit_open"
)

const defaultTimeout = 10 * time.Second

type Option func(*Service)

// Service formats cancellation notices and sends them through a Sender.
type Service struct {
	sender  Sender
	breaker *circuit.Breaker
	metrics *Metrics
	tracer  tracer.Tracer
	logger  *slog.Logger
	timeout time.Duration
}

func New(sender Sender, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		sender:  sender,
		tracer:  tracer.NewNoop(),
		logger:  logger,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.breaker == nil {
		s.breaker = circuit.New("notify-" + sender.Name())
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		s.breaker = b
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithTimeout bounds each delivery attempt. Default 10s.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NotifyCancellation sends the cancellation notice to notice.Recipient and
// reports whether the provider accepted it. It never panics or returns an
// error: a missing credential, an empty recipient, an open circuit or a
// failed call all yield false.
func (s *Service) NotifyCancellation(ctx context.Context, notice models.CancellationNotice) (delivered bool) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanNotify, tracer.String(tracer.AttrProvider, s.sender.Name()))
	outcome := OutcomeFailed
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrOutcome, outcome))
		span.End(nil)
		s.metrics.ObserveOutcome(s.sender.Name(), outcome)
	}()

	if !s.sender.Configured() {
		outcome = OutcomeSkipped
		s.logger.WarnContext(ctx, "notification credential not configured, skipping", "provider", s.sender.Name())
		return false
	}
	if notice.Recipient == "" {
		outcome = OutcomeSkipped
		s.logger.WarnContext(ctx, "notification recipient empty, skipping", "provider", s.sender.Name())
		return false
	}
	if !s.breaker.Allow() {
		outcome = OutcomeCircuitOpen
		s.logger.WarnContext(ctx, "notification circuit open, skipping", "provider", s.sender.Name())
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.sender.Send(ctx, notice.Recipient, FormatCancellation(notice))
	s.metrics.ObserveLatency(s.sender.Name(), time.Since(start))
	if err != nil {
		if change := s.breaker.RecordFailure(); change.Opened {
			s.logger.ErrorContext(ctx, "notification circuit opened", "provider", s.sender.Name())
		}
		s.logger.ErrorContext(ctx, "notification delivery failed",
			"provider", s.sender.Name(),
			"recipient", privacy.SuffixOnly(notice.Recipient, 4),
			"error", err,
		)
		return false
	}
	if change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "notification circuit closed", "provider", s.sender.Name())
	}
	outcome = OutcomeDelivered
	s.logger.InfoContext(ctx, "notification delivered", "provider", s.sender.Name())
	return true
}

// FormatCancellation renders the cancellation notice text.
func FormatCancellation(n models.CancellationNotice) string {
	return fmt.Sprintf(`📢 報名取消通知

📚 課程名稱：%s
👤 姓名：%s
🆔 身分證字號：%s
📅 開課日期：%s
❌ 狀態：已取消
⏰ 取消時間：%s`, n.CourseName, n.Name, n.IDNumber, n.CourseDate, n.CancelledAt)
}
