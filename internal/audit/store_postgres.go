package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends audit events to auth_audit_events.
// The table is INSERT-only; deploys should enforce that with a policy
// or trigger.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO auth_audit_events (
  id, tenant_id, type, subject_id, role, super_admin, ip_address, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.TenantID,
		e.Type,
		e.SubjectID,
		e.Role,
		e.SuperAdmin,
		e.IPAddress,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}
