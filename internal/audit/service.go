package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records internal-only audit events for the auth pipeline.
//
// Audit is never exposed to tenant users and is best-effort: callers
// log append failures but do not fail the request over them.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogLogin records a successful login into the given tenant (nil for a
// super-admin session).
func (s *Service) LogLogin(ctx context.Context, tenantID *int64, subjectID int64, role, ip string) error {
	return s.Append(ctx, Event{
		TenantID:   tenantID,
		Type:       EventTypeLogin,
		SubjectID:  subjectID,
		Role:       role,
		SuperAdmin: tenantID == nil,
		IPAddress:  ip,
		Message:    "login",
	})
}

// LogLoginFailed records a failed login attempt. The identifier goes to
// metadata, not the message, so ops tooling can redact it wholesale.
func (s *Service) LogLoginFailed(ctx context.Context, tenantID *int64, ip, metadata string) error {
	return s.Append(ctx, Event{
		TenantID:  tenantID,
		Type:      EventTypeLoginFailed,
		IPAddress: ip,
		Message:   "login failed",
		Metadata:  metadata,
	})
}

// LogActAs records a super-admin acting as a concrete tenant.
func (s *Service) LogActAs(ctx context.Context, tenantID int64, subjectID int64, role, ip string) error {
	return s.Append(ctx, Event{
		TenantID:   &tenantID,
		Type:       EventTypeActAs,
		SubjectID:  subjectID,
		Role:       role,
		SuperAdmin: true,
		IPAddress:  ip,
		Message:    "super-admin acting as tenant",
	})
}

// LogAccessDenied records a permission-check denial.
func (s *Service) LogAccessDenied(ctx context.Context, tenantID *int64, subjectID int64, role, ip, metadata string) error {
	return s.Append(ctx, Event{
		TenantID:  tenantID,
		Type:      EventTypeAccessDenied,
		SubjectID: subjectID,
		Role:      role,
		IPAddress: ip,
		Message:   "access denied",
		Metadata:  metadata,
	})
}
