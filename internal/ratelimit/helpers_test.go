package ratelimit_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/impawawa/Final-Project/internal/ratelimit"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var errStoreDown = errors.New("store down")

// failingStore fails every call until healed
type failingStore struct {
	mu    sync.Mutex
	inner ratelimit.Store
	down  bool
	calls int
}

func (f *failingStore) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *failingStore) Get(ctx context.Context, key string) (*ratelimit.Window, error) {
	f.mu.Lock()
	f.calls++
	down := f.down
	f.mu.Unlock()
	if down {
		return nil, errStoreDown
	}
	return f.inner.Get(ctx, key)
}

func (f *failingStore) Set(ctx context.Context, key string, w ratelimit.Window, ttl time.Duration) error {
	f.mu.Lock()
	f.calls++
	down := f.down
	f.mu.Unlock()
	if down {
		return errStoreDown
	}
	return f.inner.Set(ctx, key, w, ttl)
}
