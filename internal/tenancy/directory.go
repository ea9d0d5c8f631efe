package tenancy

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Tenant is an isolated customer organization. Deactivation is soft
// (is_active=false), never a delete, and must take effect on the next
// request — which is why the resolver consults the directory per
// request instead of trusting anything baked into the token.
type Tenant struct {
	ID        int64     `json:"id" db:"id"`
	Subdomain string    `json:"subdomain" db:"subdomain"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Directory answers tenant-activity questions. Implementations must be
// safe for concurrent reads from arbitrarily many requests.
type Directory interface {
	// TenantActive reports whether the tenant exists and is active.
	// An unknown tenant id is simply not active.
	TenantActive(ctx context.Context, id int64) (bool, error)
}

// PostgresDirectory reads tenants from the credential store.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) TenantActive(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT is_active FROM tenants WHERE id = $1`
	var active bool
	if err := d.db.QueryRowContext(ctx, q, id).Scan(&active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return active, nil
}

func (d *PostgresDirectory) TenantBySubdomain(ctx context.Context, subdomain string) (Tenant, bool, error) {
	const q = `
SELECT id, subdomain, is_active, created_at, updated_at
FROM tenants
WHERE subdomain = $1
`
	var t Tenant
	err := d.db.QueryRowContext(ctx, q, subdomain).Scan(
		&t.ID,
		&t.Subdomain,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tenant{}, false, nil
		}
		return Tenant{}, false, err
	}
	return t, true, nil
}
