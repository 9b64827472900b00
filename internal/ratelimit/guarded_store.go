package ratelimit

import (
	"context"
	"time"

	"github.com/impawawa/Final-Project/internal/circuitbreaker"
)

// GuardedStore short-circuits calls to an unhealthy backing store so a
// Redis outage costs one failed round trip per cooldown rather than one
// per request. While open, every call fails with circuitbreaker.ErrOpen.
type GuardedStore struct {
	store   Store
	breaker *circuitbreaker.Breaker
}

func NewGuardedStore(store Store, breaker *circuitbreaker.Breaker) *GuardedStore {
	return &GuardedStore{store: store, breaker: breaker}
}

func (g *GuardedStore) Get(ctx context.Context, key string) (*Window, error) {
	var w *Window
	err := g.breaker.Call(func() error {
		var err error
		w, err = g.store.Get(ctx, key)
		return err
	})
	return w, err
}

func (g *GuardedStore) Set(ctx context.Context, key string, window Window, ttl time.Duration) error {
	return g.breaker.Call(func() error {
		return g.store.Set(ctx, key, window, ttl)
	})
}

func (g *GuardedStore) State() circuitbreaker.State {
	return g.breaker.State()
}
