// Package store keeps fixed-window request counters per key.
package store

import (
	"context"
	"math"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"regdesk/internal/ratelimit/models"
	keyed "regdesk/pkg/platform/sync"
)

// window is the counter for one key in the current window.
type window struct {
	count   int
	resetAt time.Time
}

// WindowStore counts requests per key in fixed windows. Entries expire with
// their window, so idle clients cost nothing.
type WindowStore struct {
	cache  *gocache.Cache
	locks  *keyed.KeyedMutex
	policy models.Policy
	now    func() time.Time
}

type Option func(*WindowStore)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *WindowStore) {
		s.now = now
	}
}

// NewWindowStore creates a store enforcing policy.
func NewWindowStore(policy models.Policy, opts ...Option) *WindowStore {
	s := &WindowStore{
		cache:  gocache.New(policy.Window, 2*policy.Window),
		locks:  keyed.NewKeyedMutex(),
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow counts one request for key and reports whether it is within the limit.
// A rejected request still counts toward the window.
func (s *WindowStore) Allow(_ context.Context, key string) (*models.Result, error) {
	var w window
	now := s.now()

	s.locks.Do(key, func() {
		if cached, ok := s.cache.Get(key); ok {
			w = cached.(window)
		}
		if w.resetAt.IsZero() || !now.Before(w.resetAt) {
			w = window{resetAt: now.Add(s.policy.Window)}
		}
		w.count++
		s.cache.Set(key, w, w.resetAt.Sub(now))
	})

	result := &models.Result{
		Allowed:   w.count <= s.policy.Max,
		Limit:     s.policy.Max,
		Remaining: max(s.policy.Max-w.count, 0),
		ResetAt:   w.resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = int(math.Ceil(w.resetAt.Sub(now).Seconds()))
	}
	return result, nil
}

// Reset forgets the counter for key.
func (s *WindowStore) Reset(key string) {
	s.cache.Delete(key)
}

// Len is the number of keys with a live window.
func (s *WindowStore) Len() int {
	return s.cache.ItemCount()
}
