package tenancy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingDirectory struct {
	mu       sync.Mutex
	inner    Directory
	calls    int
	failWith error
}

func (d *countingDirectory) TenantActive(ctx context.Context, id int64) (bool, error) {
	d.mu.Lock()
	d.calls++
	fail := d.failWith
	d.mu.Unlock()
	if fail != nil {
		return false, fail
	}
	return d.inner.TenantActive(ctx, id)
}

func (d *countingDirectory) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func TestCachedDirectoryServesFromCacheWithinTTL(t *testing.T) {
	counting := &countingDirectory{inner: NewMemoryDirectory(activeTenant(1))}
	c := NewCachedDirectory(counting, 5*time.Second)

	now := time.Unix(1700000000, 0)
	c.clock = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		active, err := c.TenantActive(context.Background(), 1)
		if err != nil || !active {
			t.Fatalf("lookup %d: %v %v", i, active, err)
		}
	}
	if got := counting.callCount(); got != 1 {
		t.Fatalf("expected one inner lookup, got %d", got)
	}
}

func TestCachedDirectoryStalenessBoundedByTTL(t *testing.T) {
	inner := NewMemoryDirectory(activeTenant(1))
	counting := &countingDirectory{inner: inner}
	c := NewCachedDirectory(counting, 5*time.Second)

	now := time.Unix(1700000000, 0)
	c.clock = func() time.Time { return now }

	if _, err := c.TenantActive(context.Background(), 1); err != nil {
		t.Fatalf("warm: %v", err)
	}

	inner.SetActive(1, false)

	// Still within TTL: stale answer is allowed.
	if active, _ := c.TenantActive(context.Background(), 1); !active {
		t.Fatalf("expected cached active within TTL")
	}

	now = now.Add(5*time.Second + time.Millisecond)
	active, err := c.TenantActive(context.Background(), 1)
	if err != nil {
		t.Fatalf("post-TTL lookup: %v", err)
	}
	if active {
		t.Fatalf("deactivation must be visible after TTL expiry")
	}
}

func TestCachedDirectoryCapsTTL(t *testing.T) {
	c := NewCachedDirectory(NewMemoryDirectory(), time.Minute)
	if c.ttl != 5*time.Second {
		t.Fatalf("expected TTL capped at 5s, got %s", c.ttl)
	}
}

func TestCachedDirectoryNeverCachesErrors(t *testing.T) {
	lookupErr := errors.New("store down")
	counting := &countingDirectory{inner: NewMemoryDirectory(activeTenant(1)), failWith: lookupErr}
	c := NewCachedDirectory(counting, 5*time.Second)

	if _, err := c.TenantActive(context.Background(), 1); !errors.Is(err, lookupErr) {
		t.Fatalf("expected propagated error, got %v", err)
	}

	counting.mu.Lock()
	counting.failWith = nil
	counting.mu.Unlock()

	active, err := c.TenantActive(context.Background(), 1)
	if err != nil || !active {
		t.Fatalf("recovery lookup: %v %v", active, err)
	}
	if got := counting.callCount(); got != 2 {
		t.Fatalf("error must not be cached; inner calls = %d", got)
	}
}

func TestCachedDirectoryInvalidate(t *testing.T) {
	inner := NewMemoryDirectory(activeTenant(1))
	c := NewCachedDirectory(inner, 5*time.Second)

	if _, err := c.TenantActive(context.Background(), 1); err != nil {
		t.Fatalf("warm: %v", err)
	}

	inner.SetActive(1, false)
	c.Invalidate(1)

	if active, _ := c.TenantActive(context.Background(), 1); active {
		t.Fatalf("invalidate must bypass the stale entry")
	}
}
