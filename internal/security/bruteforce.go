package security

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultFailureThreshold is how many failed logins lock an IP out.
	DefaultFailureThreshold = 5
	// DefaultLockoutDuration is how long a locked IP stays rejected.
	DefaultLockoutDuration = 15 * time.Minute
	// DefaultCounterIdleTTL bounds the lifetime of counters whose IP
	// never returns.
	DefaultCounterIdleTTL = 24 * time.Hour
)

// BruteForceProtector tracks failed logins per client IP and locks the
// IP out once the threshold is reached. The lockout is set exactly once
// per episode: further failures while locked never extend it.
type BruteForceProtector struct {
	store     CounterStore
	threshold int64
	lockout   time.Duration
	idleTTL   time.Duration
	log       *zap.Logger
}

func NewBruteForceProtector(store CounterStore, threshold int, lockout, idleTTL time.Duration, log *zap.Logger) *BruteForceProtector {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if lockout <= 0 {
		lockout = DefaultLockoutDuration
	}
	if idleTTL <= 0 {
		idleTTL = DefaultCounterIdleTTL
	}
	return &BruteForceProtector{
		store:     store,
		threshold: int64(threshold),
		lockout:   lockout,
		idleTTL:   idleTTL,
		log:       log,
	}
}

func failKey(ip string) string { return "bf:fail:" + ip }
func lockKey(ip string) string { return "bf:lock:" + ip }

// IsLocked reports whether the IP is currently inside a lockout window.
// Store errors fail open: a broken counter backend must not take the
// login path down with it.
func (p *BruteForceProtector) IsLocked(ctx context.Context, ip string) bool {
	v, err := p.store.Get(ctx, lockKey(ip))
	if err != nil {
		p.log.Warn("brute-force check failed, allowing request", zap.String("ip", ip), zap.Error(err))
		return false
	}
	return v > 0
}

// RecordFailure counts one failed login for the IP. Once the count
// reaches the threshold, a lock key is created with a set-once TTL;
// while it exists, ExpireNX refuses to touch the TTL again, which is
// exactly the non-extension guarantee.
func (p *BruteForceProtector) RecordFailure(ctx context.Context, ip string) (int64, bool) {
	count, err := p.store.Incr(ctx, failKey(ip))
	if err != nil {
		p.log.Warn("failed-login counter unavailable", zap.String("ip", ip), zap.Error(err))
		return 0, false
	}
	// Idle GC for counters: TTL from the first failure only.
	if err := p.store.ExpireNX(ctx, failKey(ip), p.idleTTL); err != nil {
		p.log.Warn("failed to set counter ttl", zap.String("ip", ip), zap.Error(err))
	}

	if count < p.threshold {
		return count, false
	}

	if _, err := p.store.Incr(ctx, lockKey(ip)); err != nil {
		p.log.Warn("failed to set lockout", zap.String("ip", ip), zap.Error(err))
		return count, false
	}
	if err := p.store.ExpireNX(ctx, lockKey(ip), p.lockout); err != nil {
		p.log.Warn("failed to set lockout ttl", zap.String("ip", ip), zap.Error(err))
	}
	return count, true
}

// Clear removes all state for the IP, called on successful login.
func (p *BruteForceProtector) Clear(ctx context.Context, ip string) {
	if err := p.store.Del(ctx, failKey(ip)); err != nil {
		p.log.Warn("failed to clear login counter", zap.String("ip", ip), zap.Error(err))
	}
	if err := p.store.Del(ctx, lockKey(ip)); err != nil {
		p.log.Warn("failed to clear lockout", zap.String("ip", ip), zap.Error(err))
	}
}

// LockoutDuration exposes the configured window for client messaging.
func (p *BruteForceProtector) LockoutDuration() time.Duration {
	return p.lockout
}
