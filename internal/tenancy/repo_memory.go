package tenancy

import (
	"context"
	"sync"
)

// MemoryDirectory is an in-memory Directory useful for tests.
// It is not intended for production use.
type MemoryDirectory struct {
	mu      sync.RWMutex
	tenants map[int64]Tenant
}

func NewMemoryDirectory(tenants ...Tenant) *MemoryDirectory {
	d := &MemoryDirectory{tenants: make(map[int64]Tenant, len(tenants))}
	for _, t := range tenants {
		d.tenants[t.ID] = t
	}
	return d
}

func (d *MemoryDirectory) TenantActive(ctx context.Context, id int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tenants[id]
	return ok && t.IsActive, nil
}

func (d *MemoryDirectory) TenantBySubdomain(ctx context.Context, subdomain string) (Tenant, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, t := range d.tenants {
		if t.Subdomain == subdomain {
			return t, true, nil
		}
	}
	return Tenant{}, false, nil
}

func (d *MemoryDirectory) SetActive(id int64, active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.tenants[id]; ok {
		t.IsActive = active
		d.tenants[id] = t
	}
}
