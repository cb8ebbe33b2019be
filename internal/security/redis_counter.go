package security

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore is the multi-instance CounterStore backend. Redis
// INCR is atomic and ExpireNX maps straight onto the set-once-TTL
// contract; idle keys are garbage-collected by Redis itself via TTLs,
// so Sweep has no equivalent here.
type RedisCounterStore struct {
	client *redis.Client
	prefix string
}

func NewRedisCounterStore(client *redis.Client, prefix string) *RedisCounterStore {
	if prefix == "" {
		prefix = "sec"
	}
	return &RedisCounterStore{client: client, prefix: prefix}
}

func (s *RedisCounterStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisCounterStore) Get(ctx context.Context, key string) (int64, error) {
	v, err := s.client.Get(ctx, s.key(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, s.key(key)).Result()
}

func (s *RedisCounterStore) ExpireNX(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.ExpireNX(ctx, s.key(key), ttl).Err()
}

func (s *RedisCounterStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
