package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"regdesk/internal/ratelimit/metrics"
	"regdesk/internal/ratelimit/models"
	"regdesk/internal/ratelimit/store"
	"regdesk/pkg/requestcontext"
)

type stubLimiter struct {
	result *models.Result
	err    error
	keys   []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (*models.Result, error) {
	s.keys = append(s.keys, key)
	return s.result, s.err
}

// MiddlewareSuite covers headers, the 429 envelope and fail-open behavior.
//
// Justification: limiter failures cannot be produced through the real store.
type MiddlewareSuite struct {
	suite.Suite
	now     time.Time
	metrics *metrics.Metrics
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupTest() {
	s.now = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	s.metrics = metrics.New(prometheus.NewRegistry())
}

func (s *MiddlewareSuite) serve(limiter Limiter) (*httptest.ResponseRecorder, bool) {
	mw := New(limiter, slog.New(slog.NewTextHandler(io.Discard, nil)), WithMetrics(s.metrics))
	mw.now = func() time.Time { return s.now }

	reached := false
	handler := mw.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), "198.51.100.4", "ua"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, reached
}

func (s *MiddlewareSuite) TestAllowedRequestCarriesHeaders() {
	limiter := &stubLimiter{result: &models.Result{Allowed: true, Limit: 100, Remaining: 99, ResetAt: s.now.Add(15 * time.Minute)}}

	w, reached := s.serve(limiter)

	s.True(reached)
	s.Equal([]string{"198.51.100.4"}, limiter.keys)
	s.Equal("100", w.Header().Get("RateLimit-Limit"))
	s.Equal("99", w.Header().Get("RateLimit-Remaining"))
	s.Equal("900", w.Header().Get("RateLimit-Reset"))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues("allowed")))
}

func (s *MiddlewareSuite) TestRejectedRequest() {
	limiter := &stubLimiter{result: &models.Result{Allowed: false, Limit: 100, Remaining: 0, ResetAt: s.now.Add(42 * time.Second), RetryAfter: 42}}

	w, reached := s.serve(limiter)

	s.False(reached)
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Equal("42", w.Header().Get("Retry-After"))
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(false, body["success"])
	s.Equal(models.ExceededMessage, body["error"])
	s.Equal("rate_limited", body["code"])
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues("rejected")))
}

func (s *MiddlewareSuite) TestLimiterFailureFailsOpen() {
	w, reached := s.serve(&stubLimiter{err: errors.New("store unavailable")})

	s.True(reached)
	s.Equal(http.StatusOK, w.Code)
	s.Empty(w.Header().Get("RateLimit-Limit"))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Errors))
}

func (s *MiddlewareSuite) TestWithWindowStore() {
	limiter := store.NewWindowStore(models.Policy{Max: 2, Window: time.Minute})
	codes := make([]int, 0, 3)
	for range 3 {
		w, _ := s.serve(limiter)
		codes = append(codes, w.Code)
	}
	s.Equal([]int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
