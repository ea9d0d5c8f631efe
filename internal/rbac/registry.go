package rbac

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Permission codes. Keep these stable; they are part of the token contract.
const (
	PermIncidentsRead   = "incidents:read"
	PermIncidentsWrite  = "incidents:write"
	PermActionsRead     = "actions:read"
	PermActionsWrite    = "actions:write"
	PermCategoriesRead  = "categories:read"
	PermCategoriesWrite = "categories:write"
	PermLocationsRead   = "locations:read"
	PermLocationsWrite  = "locations:write"
	PermReportsRead     = "reports:read"
	PermTenantsAdmin    = "tenants:admin"
)

// Role names. Stable contract values as well.
const (
	RoleReporter   = "reporter"
	RoleResponder  = "responder"
	RoleManager    = "manager"
	RoleAuditor    = "auditor"
	RoleSuperAdmin = "super_admin"
)

// Registry maps a role to its permission expansion.
//
// The expansion is frozen into the token at login/refresh time; a role
// edit only takes effect on the next login or refresh. This staleness
// window is intentional and documented, not a bug.
//
// Read-mostly: Replace swaps the whole table atomically, Expand is safe
// for concurrent readers.
type Registry struct {
	mu    sync.RWMutex
	roles map[string][]Permission
}

func NewRegistry(roles map[string][]Permission) *Registry {
	r := &Registry{}
	r.Replace(roles)
	return r
}

// Defaults returns the built-in role table. A deployment normally
// overlays this with LoadRegistry at startup.
func Defaults() map[string][]Permission {
	return map[string][]Permission{
		RoleReporter: {
			Named(PermIncidentsRead),
			Named(PermIncidentsWrite),
			Named(PermCategoriesRead),
			Named(PermLocationsRead),
		},
		RoleResponder: {
			Named(PermIncidentsRead),
			Named(PermIncidentsWrite),
			Named(PermActionsRead),
			Named(PermActionsWrite),
			Named(PermCategoriesRead),
			Named(PermLocationsRead),
		},
		RoleManager: {
			Named(PermIncidentsRead),
			Named(PermIncidentsWrite),
			Named(PermActionsRead),
			Named(PermActionsWrite),
			Named(PermCategoriesRead),
			Named(PermCategoriesWrite),
			Named(PermLocationsRead),
			Named(PermLocationsWrite),
			Named(PermReportsRead),
		},
		RoleAuditor: {
			Named(PermIncidentsRead),
			Named(PermActionsRead),
			Named(PermReportsRead),
		},
		RoleSuperAdmin: {
			Wildcard(),
		},
	}
}

func (r *Registry) Replace(roles map[string][]Permission) {
	cp := make(map[string][]Permission, len(roles))
	for name, perms := range roles {
		cp[name] = append([]Permission(nil), perms...)
	}
	r.mu.Lock()
	r.roles = cp
	r.mu.Unlock()
}

// Expand returns the permission set for a role. ok is false for a role
// the registry does not know; callers must fail closed on that.
func (r *Registry) Expand(role string) (Set, bool) {
	r.mu.RLock()
	perms, ok := r.roles[role]
	r.mu.RUnlock()
	if !ok {
		return Set{}, false
	}
	return NewSet(perms...), true
}

// LoadRegistry reads the role table from the credential store.
//
// Expected schema:
//   roles(name)  role_permissions(role_name, permission, position)
func LoadRegistry(ctx context.Context, db *sql.DB) (*Registry, error) {
	const q = `
SELECT r.name, p.permission
FROM roles r
JOIN role_permissions p ON p.role_name = r.name
ORDER BY r.name, p.position
`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("rbac: load roles: %w", err)
	}
	defer rows.Close()

	roles := make(map[string][]Permission)
	for rows.Next() {
		var role, perm string
		if err := rows.Scan(&role, &perm); err != nil {
			return nil, fmt.Errorf("rbac: scan role row: %w", err)
		}
		roles[role] = append(roles[role], Parse(perm))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rbac: iterate role rows: %w", err)
	}
	if len(roles) == 0 {
		// Empty table means an unseeded database; fall back to the
		// built-in defaults rather than locking everyone out.
		roles = Defaults()
	}
	return NewRegistry(roles), nil
}
