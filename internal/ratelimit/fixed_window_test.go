package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/impawawa/Final-Project/internal/ratelimit"
)

func newLimiter(limit int, period time.Duration) (*ratelimit.FixedWindowLimiter, *ratelimit.MemoryStore, *fakeClock) {
	clock := newFakeClock()
	store := ratelimit.NewMemoryStore(clock.Now)
	return ratelimit.NewFixedWindow(store, limit, period, ratelimit.WithClock(clock.Now)), store, clock
}

func TestFixedWindow_AllowsExactlyLimit(t *testing.T) {
	limiter, _, clock := newLimiter(5, 60*time.Second)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d should pass", i)
		require.Equal(t, i, d.Count)
		require.Equal(t, 5-i, d.Remaining)
		clock.Advance(2 * time.Second)
	}

	d, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 6, d.Count)
	require.Equal(t, 0, d.Remaining)
	require.Equal(t, 5, d.Limit)
}

func TestFixedWindow_ResetsAfterPeriod(t *testing.T) {
	limiter, _, clock := newLimiter(5, 60*time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
	}

	clock.Advance(61 * time.Second)

	d, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Count)
	require.Equal(t, clock.Now().Add(60*time.Second), d.ResetAt)
}

func TestFixedWindow_LazyResetWhenEntryOutlivesWindow(t *testing.T) {
	// The TTL is refreshed on every write, so the stored entry can still be
	// present after window_start + period. The age check must reset it.
	limiter, _, clock := newLimiter(2, 10*time.Second)
	ctx := context.Background()

	start := clock.Now()
	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		clock.Advance(4 * time.Second)
	}
	// 12s after window_start, last write 4s ago: entry still stored
	d, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Count)
	require.Equal(t, start.Add(22*time.Second), d.ResetAt)
}

func TestFixedWindow_ExactlyPeriodIsSameWindow(t *testing.T) {
	limiter, _, clock := newLimiter(1, 10*time.Second)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	d, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	// now - window_start == period: not expired by age, entry TTL was refreshed 5s ago
	clock.Advance(5 * time.Second)
	d, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 3, d.Count)

	clock.Advance(time.Nanosecond)
	d, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestFixedWindow_IndependentKeys(t *testing.T) {
	limiter, _, _ := newLimiter(1, time.Minute)
	ctx := context.Background()

	d, err := limiter.Allow(ctx, "1.1.1.1")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "1.1.1.1")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = limiter.Allow(ctx, "2.2.2.2")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestFixedWindow_RejectedRequestsKeepCounting(t *testing.T) {
	limiter, store, _ := newLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := limiter.Allow(ctx, "ip")
		require.NoError(t, err)
	}

	w, err := store.Get(ctx, "ip")
	require.NoError(t, err)
	require.NotNil(t, w)
	require.Equal(t, 4, w.Count)
}

func TestFixedWindow_StoreErrors(t *testing.T) {
	clock := newFakeClock()
	store := &failingStore{inner: ratelimit.NewMemoryStore(clock.Now), down: true}
	limiter := ratelimit.NewFixedWindow(store, 5, time.Minute, ratelimit.WithClock(clock.Now))

	_, err := limiter.Allow(context.Background(), "ip")
	require.ErrorIs(t, err, errStoreDown)
}

func TestFixedWindow_Defaults(t *testing.T) {
	limiter := ratelimit.NewFixedWindow(ratelimit.NewMemoryStore(nil), 0, 0)
	require.Equal(t, ratelimit.DefaultLimit, limiter.Limit())
	require.Equal(t, ratelimit.DefaultPeriod, limiter.Period())
}

func TestFixedWindow_Detail(t *testing.T) {
	limiter, _, _ := newLimiter(5, 60*time.Second)
	require.Equal(t, "Too many requests. Maximum 5 requests per 60 seconds.", limiter.Detail())
}
