package incidents

import (
	"context"
	"errors"
	"time"

	"incident-portal/internal/auth"
	"incident-portal/internal/tenancy"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("incidents: invalid argument")

// Repository is the persistence contract. Every method takes a tenant
// id; there is no cross-tenant read path.
type Repository interface {
	Insert(ctx context.Context, in Incident) error
	ListByTenant(ctx context.Context, tenantID int64) ([]Incident, error)
}

// Service is a downstream consumer of the resolved RequestContext. It
// trusts the context's effective tenant and never re-derives tenancy
// from request input.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type NewIncident struct {
	Title       string
	Description string
	Severity    Severity
}

// Report files an incident in the request's effective tenant. Global
// scope has no tenant to write into and is rejected; a super-admin
// must act as a tenant (explicit selector) to file one.
func (s *Service) Report(ctx context.Context, rc auth.RequestContext, in NewIncident) (Incident, error) {
	tenantID, ok := rc.Scope.TenantID()
	if !ok {
		return Incident{}, tenancy.ErrTenantRequired
	}
	if in.Title == "" || !ValidSeverity(in.Severity) {
		return Incident{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	inc := Incident{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Title:       in.Title,
		Description: in.Description,
		Severity:    in.Severity,
		Status:      StatusOpen,
		ReportedBy:  rc.SubjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, inc); err != nil {
		return Incident{}, err
	}
	return inc, nil
}

// List returns the effective tenant's incidents.
func (s *Service) List(ctx context.Context, rc auth.RequestContext) ([]Incident, error) {
	tenantID, ok := rc.Scope.TenantID()
	if !ok {
		return nil, tenancy.ErrTenantRequired
	}
	return s.repo.ListByTenant(ctx, tenantID)
}
