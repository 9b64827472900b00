package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/impawawa/Final-Project/internal/storage"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:window:"

// RedisStore keeps windows as JSON strings with a native Redis TTL.
type RedisStore struct {
	redis *storage.RedisClient
}

func NewRedisStore(redis *storage.RedisClient) *RedisStore {
	return &RedisStore{redis: redis}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Window, error) {
	data, err := s.redis.Get(ctx, redisKeyPrefix+key)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var w Window
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		// A corrupt entry is treated like a missing one and overwritten on Set
		return nil, nil
	}
	return &w, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, window Window, ttl time.Duration) error {
	data, err := json.Marshal(window)
	if err != nil {
		return fmt.Errorf("failed to encode rate window: %w", err)
	}
	return s.redis.Set(ctx, redisKeyPrefix+key, data, ttl)
}
