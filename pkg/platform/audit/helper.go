package audit

import (
	"context"
	"log/slog"
	"time"

	"regdesk/pkg/platform/privacy"
	"regdesk/pkg/requestcontext"
)

// Emitter receives every audit event after it is logged.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger writes audit lines (log_type=audit) and forwards them to an optional Emitter.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
	now        func() time.Time
}

// NewLogger creates an audit logger. emitter may be nil.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
		now:        time.Now,
	}
}

// Log records event with alternating key/value attributes. The request id and
// anonymized client address are added from ctx.
//
// Usage:
//
//	auditor.Log(ctx, audit.EventRegistrationCancelled, "subject", id.Redacted(), "course", course)
func (l *Logger) Log(ctx context.Context, event string, attributes ...any) {
	if l == nil {
		return
	}
	requestID := requestcontext.RequestID(ctx)
	clientIP := privacy.AnonymizeIP(requestcontext.ClientIP(ctx))
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	attributes = append(attributes, "client_ip_prefix", clientIP)

	if l.textLogger != nil {
		args := append(attributes, "event", event, "log_type", "audit")
		l.textLogger.InfoContext(ctx, event, args...)
	}

	if l.emitter == nil {
		return
	}
	err := l.emitter.Emit(ctx, Event{
		Timestamp: l.now(),
		Action:    event,
		Subject:   extractString(attributes, "subject"),
		Course:    extractString(attributes, "course"),
		Outcome:   extractString(attributes, "outcome"),
		RequestID: requestID,
		ClientIP:  clientIP,
	})
	if err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", event,
		)
	}
}

// extractString returns the string value following key in a key/value list.
func extractString(attributes []any, key string) string {
	for i := 0; i+1 < len(attributes); i += 2 {
		if k, ok := attributes[i].(string); ok && k == key {
			if v, ok := attributes[i+1].(string); ok {
				return v
			}
		}
	}
	return ""
}
