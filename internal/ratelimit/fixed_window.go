package ratelimit

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultLimit  = 100
	DefaultPeriod = 60 * time.Second
)

// Decision is the result of counting one request against a window.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// FixedWindowLimiter counts requests per key in a fixed window that starts
// at the key's first request and resets lazily once the period has passed.
//
// The counter update is a plain get-then-set against the store, so
// concurrent requests for the same key can overwrite each other's
// increments and admit more than limit requests in one window.
type FixedWindowLimiter struct {
	store  Store
	limit  int
	period time.Duration
	now    Clock
}

type Option func(*FixedWindowLimiter)

func WithClock(clock Clock) Option {
	return func(f *FixedWindowLimiter) {
		f.now = clock
	}
}

func NewFixedWindow(store Store, limit int, period time.Duration, opts ...Option) *FixedWindowLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if period <= 0 {
		period = DefaultPeriod
	}

	f := &FixedWindowLimiter{
		store:  store,
		limit:  limit,
		period: period,
		now:    time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Allow records one request for key and reports whether it is within the limit.
// The request that pushes the count past limit is the first one rejected.
func (f *FixedWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := f.now()

	window, err := f.store.Get(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read rate window for %s: %w", key, err)
	}

	if window == nil || now.Sub(window.WindowStart) > f.period {
		window = &Window{Count: 1, WindowStart: now}
	} else {
		window.Count++
	}

	// TTL is refreshed on every write
	if err := f.store.Set(ctx, key, *window, f.period); err != nil {
		return Decision{}, fmt.Errorf("failed to write rate window for %s: %w", key, err)
	}

	remaining := f.limit - window.Count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   window.Count <= f.limit,
		Count:     window.Count,
		Limit:     f.limit,
		Remaining: remaining,
		ResetAt:   window.WindowStart.Add(f.period),
	}, nil
}

func (f *FixedWindowLimiter) Limit() int {
	return f.limit
}

func (f *FixedWindowLimiter) Period() time.Duration {
	return f.period
}

// Detail is the human readable message sent with a rejection.
func (f *FixedWindowLimiter) Detail() string {
	return fmt.Sprintf("Too many requests. Maximum %d requests per %d seconds.", f.limit, int(f.period.Seconds()))
}
