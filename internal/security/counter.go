package security

import (
	"context"
	"time"
)

// CounterStore is the shared counter contract behind brute-force
// tracking. Incr must be atomic under concurrent callers for the same
// key, and ExpireNX must set a TTL only when the key has none, so that
// repeated failures during a lockout never extend the window. Both the
// in-process and the Redis backend honor the same semantics, which is
// what lets a multi-instance deployment swap backends without changing
// the protection logic.
type CounterStore interface {
	Get(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
	ExpireNX(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
