package incidents

import (
	"context"
	"database/sql"
)

// PostgresRepo persists incidents. tenant_id is enforced in every
// query; there is no unscoped read.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, in Incident) error {
	const q = `
INSERT INTO incidents (
  id, tenant_id, title, description, severity, status, reported_by, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := r.db.ExecContext(ctx, q,
		in.ID,
		in.TenantID,
		in.Title,
		in.Description,
		in.Severity,
		in.Status,
		in.ReportedBy,
		in.CreatedAt,
		in.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) ListByTenant(ctx context.Context, tenantID int64) ([]Incident, error) {
	const q = `
SELECT id, tenant_id, title, description, severity, status, reported_by, created_at, updated_at
FROM incidents
WHERE tenant_id = $1
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Incident
	for rows.Next() {
		var in Incident
		if err := rows.Scan(
			&in.ID,
			&in.TenantID,
			&in.Title,
			&in.Description,
			&in.Severity,
			&in.Status,
			&in.ReportedBy,
			&in.CreatedAt,
			&in.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
