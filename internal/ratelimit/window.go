package ratelimit

import (
	"context"
	"time"
)

// Window is the per-client counter for the current fixed window.
type Window struct {
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
}

// Store is the shared expiring key-value cache holding one Window per key.
// Get returns (nil, nil) when the key is absent or expired.
type Store interface {
	Get(ctx context.Context, key string) (*Window, error)
	Set(ctx context.Context, key string, window Window, ttl time.Duration) error
}

// Clock returns the current time. Tests substitute a controllable one.
type Clock func() time.Time
