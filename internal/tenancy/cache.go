package tenancy

import (
	"context"
	"sync"
	"time"
)

// CachedDirectory wraps a Directory with a bounded-staleness in-process
// cache so the hot path does not pay a store round-trip per request.
//
// The TTL is the deliberate consistency/latency trade-off from the
// design: a tenant deactivation propagates within at most TTL. Keep it
// small (the default is 5s). Lookup errors are never cached.
//
// Injectable (not a package singleton) so tests can swap the inner
// directory and clock, and so the staleness window stays an auditable
// configuration value.
type CachedDirectory struct {
	inner Directory
	ttl   time.Duration
	clock func() time.Time

	mu      sync.RWMutex
	entries map[int64]cacheEntry
}

type cacheEntry struct {
	active    bool
	expiresAt time.Time
}

func NewCachedDirectory(inner Directory, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 || ttl > 5*time.Second {
		ttl = 5 * time.Second
	}
	return &CachedDirectory{
		inner:   inner,
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[int64]cacheEntry),
	}
}

func (c *CachedDirectory) TenantActive(ctx context.Context, id int64) (bool, error) {
	now := c.clock()

	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && now.Before(e.expiresAt) {
		return e.active, nil
	}

	active, err := c.inner.TenantActive(ctx, id)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	c.entries[id] = cacheEntry{active: active, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
	return active, nil
}

// Invalidate drops a cached entry, e.g. right after an admin
// deactivates a tenant, so the change is visible before TTL expiry.
func (c *CachedDirectory) Invalidate(id int64) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}
