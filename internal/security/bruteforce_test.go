package security

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestProtector() (*BruteForceProtector, *MemoryCounterStore, *time.Time) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryCounterStore()
	store.now = func() time.Time { return now }
	p := NewBruteForceProtector(store, 5, 15*time.Minute, 24*time.Hour, zap.NewNop())
	return p, store, &now
}

func TestBruteForceThreshold(t *testing.T) {
	p, _, _ := newTestProtector()
	ctx := context.Background()
	ip := "203.0.113.7"

	for i := 0; i < 4; i++ {
		if _, locked := p.RecordFailure(ctx, ip); locked {
			t.Fatalf("locked after %d failures", i+1)
		}
	}
	if p.IsLocked(ctx, ip) {
		t.Fatal("locked before reaching threshold")
	}

	if _, locked := p.RecordFailure(ctx, ip); !locked {
		t.Fatal("5th failure did not lock")
	}
	if !p.IsLocked(ctx, ip) {
		t.Fatal("IsLocked false after threshold")
	}
}

func TestBruteForceLockoutExpires(t *testing.T) {
	p, _, now := newTestProtector()
	ctx := context.Background()
	ip := "203.0.113.8"

	for i := 0; i < 5; i++ {
		p.RecordFailure(ctx, ip)
	}
	if !p.IsLocked(ctx, ip) {
		t.Fatal("not locked after 5 failures")
	}

	// No explicit clear: the window simply elapses.
	*now = now.Add(16 * time.Minute)
	if p.IsLocked(ctx, ip) {
		t.Fatal("still locked after lockout window elapsed")
	}
}

func TestBruteForceLockoutNotExtended(t *testing.T) {
	p, store, now := newTestProtector()
	ctx := context.Background()
	ip := "203.0.113.9"

	for i := 0; i < 5; i++ {
		p.RecordFailure(ctx, ip)
	}

	expiryBefore := store.entries[lockKey(ip)].expiresAt

	// More failures while locked must not push the expiry.
	*now = now.Add(5 * time.Minute)
	p.RecordFailure(ctx, ip)
	p.RecordFailure(ctx, ip)

	expiryAfter := store.entries[lockKey(ip)].expiresAt
	if !expiryAfter.Equal(expiryBefore) {
		t.Errorf("lockout extended: %v -> %v", expiryBefore, expiryAfter)
	}
}

func TestBruteForceClear(t *testing.T) {
	p, _, _ := newTestProtector()
	ctx := context.Background()
	ip := "203.0.113.10"

	for i := 0; i < 5; i++ {
		p.RecordFailure(ctx, ip)
	}
	p.Clear(ctx, ip)

	if p.IsLocked(ctx, ip) {
		t.Fatal("still locked after clear")
	}
	// Counter starts over.
	if count, locked := p.RecordFailure(ctx, ip); count != 1 || locked {
		t.Errorf("after clear: count=%d locked=%v", count, locked)
	}
}

func TestBruteForceIPsIndependent(t *testing.T) {
	p, _, _ := newTestProtector()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		p.RecordFailure(ctx, "203.0.113.11")
	}
	if p.IsLocked(ctx, "203.0.113.12") {
		t.Error("lockout leaked across IPs")
	}
}

func TestMemoryStoreExpireNXSetOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryCounterStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Incr(ctx, "k")
	store.ExpireNX(ctx, "k", time.Minute)
	first := store.entries["k"].expiresAt

	store.ExpireNX(ctx, "k", time.Hour)
	if !store.entries["k"].expiresAt.Equal(first) {
		t.Error("ExpireNX replaced an existing TTL")
	}
}

func TestMemoryStoreSweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryCounterStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Incr(ctx, "stale")
	now = now.Add(48 * time.Hour)
	store.Incr(ctx, "fresh")

	if removed := store.Sweep(24 * time.Hour); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if v, _ := store.Get(ctx, "fresh"); v != 1 {
		t.Error("Sweep removed a fresh entry")
	}
	if v, _ := store.Get(ctx, "stale"); v != 0 {
		t.Error("Sweep kept a stale entry")
	}
}
