package session

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PostgresStore reads user credentials from the users table.
//
// Expected schema:
//
//	users(id, tenant_id NULL, email, password_hash, role, is_active,
//	      created_at, updated_at)
//	UNIQUE (tenant_id, lower(email)); tenant_id IS NULL for super-admins.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

const userColumns = `id, tenant_id, (tenant_id IS NULL) AS super_admin, email, password_hash, role, is_active, created_at, updated_at`

func (s *PostgresStore) UserByEmail(ctx context.Context, tenantID *int64, email string) (User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var q string
	var args []any
	if tenantID == nil {
		q = `SELECT ` + userColumns + ` FROM users WHERE tenant_id IS NULL AND lower(email) = $1`
		args = []any{email}
	} else {
		q = `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND lower(email) = $2`
		args = []any{*tenantID, email}
	}
	return s.scanUser(s.db.QueryRowContext(ctx, q, args...))
}

func (s *PostgresStore) UserByID(ctx context.Context, id int64) (User, bool, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) EmailKnown(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = $1)`
	var known bool
	if err := s.db.QueryRowContext(ctx, q, email).Scan(&known); err != nil {
		return false, err
	}
	return known, nil
}

func (s *PostgresStore) scanUser(row *sql.Row) (User, bool, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.TenantID,
		&u.SuperAdmin,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return u, true, nil
}
