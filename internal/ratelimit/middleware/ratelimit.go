package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"regdesk/internal/ratelimit/metrics"
	"regdesk/internal/ratelimit/models"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/platform/privacy"
	"regdesk/pkg/requestcontext"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (*models.Result, error)
}

type Middleware struct {
	limiter Limiter
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Middleware)

func WithMetrics(m *metrics.Metrics) Option {
	return func(mw *Middleware) {
		mw.metrics = m
	}
}

func New(limiter Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RateLimit limits requests per client IP. A limiter failure lets the request through.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIPOrUnknown(ctx)

		result, err := m.limiter.Allow(ctx, ip)
		if err != nil {
			m.metrics.IncrementErrors()
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"error", err,
				"ip_prefix", privacy.AnonymizeIP(ip),
				"request_id", requestcontext.RequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		m.metrics.ObserveDecision(result.Allowed)
		m.addHeaders(w, result)

		if !result.Allowed {
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"ip_prefix", privacy.AnonymizeIP(ip),
				"request_id", requestcontext.RequestID(ctx),
			)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, models.ExceededMessage))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// addHeaders sets the RateLimit-* headers; Reset is seconds until the window ends.
func (m *Middleware) addHeaders(w http.ResponseWriter, result *models.Result) {
	reset := int(result.ResetAt.Sub(m.now()).Round(time.Second).Seconds())
	if reset < 0 {
		reset = 0
	}
	w.Header().Set("RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("RateLimit-Reset", strconv.Itoa(reset))
}
