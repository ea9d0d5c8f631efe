package audit

import "time"

// Event is an immutable, append-only audit record for the auth layer.
//
// Invariants:
// - Events are never updated or deleted.
// - TenantID is nil only for global-scope (super-admin) activity.
// - Capture is best-effort; auth decisions never block on audit failures.
//
// Storage recommendation (Postgres): table auth_audit_events with an
// INSERT-only policy and time-based partitioning for retention.
type Event struct {
	ID string `json:"id" db:"id"`

	// TenantID is the effective tenant of the request, nil for global
	// super-admin scope and for failed logins with no resolved tenant.
	TenantID *int64 `json:"tenant_id,omitempty" db:"tenant_id"`

	Type EventType `json:"type" db:"type"`

	// SubjectID is the authenticated user causing the event, 0 when
	// authentication itself failed.
	SubjectID  int64  `json:"subject_id,omitempty" db:"subject_id"`
	Role       string `json:"role,omitempty" db:"role"`
	SuperAdmin bool   `json:"super_admin" db:"super_admin"`

	// IPAddress is the resolved client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	// EventTypeLogin records a successful credential exchange.
	EventTypeLogin EventType = "login"
	// EventTypeLoginFailed records any failed login, without exposing
	// the failure kind (kinds are indistinguishable on the wire too).
	EventTypeLoginFailed EventType = "login_failed"
	// EventTypeActAs records a super-admin resolving into a concrete
	// tenant via the explicit selector.
	EventTypeActAs EventType = "act_as_tenant"
	// EventTypeAccessDenied records a permission-check denial.
	EventTypeAccessDenied EventType = "access_denied"
)
