package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/impawawa/Final-Project/internal/ratelimit"
	"github.com/impawawa/Final-Project/internal/storage"
)

func TestMemoryStore_Expiry(t *testing.T) {
	clock := newFakeClock()
	store := ratelimit.NewMemoryStore(clock.Now)
	ctx := context.Background()

	w, err := store.Get(ctx, "ip")
	require.NoError(t, err)
	require.Nil(t, w)

	start := clock.Now()
	require.NoError(t, store.Set(ctx, "ip", ratelimit.Window{Count: 3, WindowStart: start}, 10*time.Second))

	clock.Advance(9 * time.Second)
	w, err = store.Get(ctx, "ip")
	require.NoError(t, err)
	require.NotNil(t, w)
	require.Equal(t, 3, w.Count)
	require.True(t, w.WindowStart.Equal(start))

	clock.Advance(time.Second)
	w, err = store.Get(ctx, "ip")
	require.NoError(t, err)
	require.Nil(t, w)
	require.Equal(t, 0, store.Len())
}

func TestMemoryStore_ReturnsCopy(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "ip", ratelimit.Window{Count: 1, WindowStart: time.Now()}, time.Minute))

	w, err := store.Get(ctx, "ip")
	require.NoError(t, err)
	w.Count = 99

	again, err := store.Get(ctx, "ip")
	require.NoError(t, err)
	require.Equal(t, 1, again.Count)
}

func newRedisStore(t *testing.T) (*ratelimit.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := storage.NewRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return ratelimit.NewRedisStore(client), mr
}

func TestRedisStore_RoundTripAndTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	w, err := store.Get(ctx, "9.9.9.9")
	require.NoError(t, err)
	require.Nil(t, w)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(ctx, "9.9.9.9", ratelimit.Window{Count: 2, WindowStart: start}, 60*time.Second))

	require.True(t, mr.Exists("ratelimit:window:9.9.9.9"))
	require.Equal(t, 60*time.Second, mr.TTL("ratelimit:window:9.9.9.9"))

	w, err = store.Get(ctx, "9.9.9.9")
	require.NoError(t, err)
	require.NotNil(t, w)
	require.Equal(t, 2, w.Count)
	require.True(t, w.WindowStart.Equal(start))

	mr.FastForward(60 * time.Second)
	w, err = store.Get(ctx, "9.9.9.9")
	require.NoError(t, err)
	require.Nil(t, w)
}

func TestRedisStore_CorruptEntryIsTreatedAsMissing(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("ratelimit:window:ip", "not-json"))

	w, err := store.Get(context.Background(), "ip")
	require.NoError(t, err)
	require.Nil(t, w)
}

func TestRedisStore_Unavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "ip")
	require.Error(t, err)
}

func TestRedisStore_WithLimiter(t *testing.T) {
	store, _ := newRedisStore(t)
	clock := newFakeClock()
	limiter := ratelimit.NewFixedWindow(store, 5, 60*time.Second, ratelimit.WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := limiter.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, d.Allowed)
		clock.Advance(time.Second)
	}

	d, err := limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	// redis TTL is still running, the age check resets the window
	clock.Advance(61 * time.Second)
	d, err = limiter.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Count)
}
