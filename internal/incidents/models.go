package incidents

import "time"

// Incident is the minimal record the portal tracks. All rows are
// partitioned by tenant id; no query ever spans tenants.
type Incident struct {
	ID       string `json:"id" db:"id"`
	TenantID int64  `json:"tenant_id" db:"tenant_id"`

	Title       string   `json:"title" db:"title"`
	Description string   `json:"description,omitempty" db:"description"`
	Severity    Severity `json:"severity" db:"severity"`
	Status      Status   `json:"status" db:"status"`

	// ReportedBy is the subject id from the request context.
	ReportedBy int64 `json:"reported_by" db:"reported_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)
