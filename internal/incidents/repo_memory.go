package incidents

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repository useful for tests and local
// development without Postgres.
type MemoryRepo struct {
	mu   sync.RWMutex
	rows []Incident
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Insert(ctx context.Context, in Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, in)
	return nil
}

func (r *MemoryRepo) ListByTenant(ctx context.Context, tenantID int64) ([]Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Incident
	for _, row := range r.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}
