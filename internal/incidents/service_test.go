package incidents

import (
	"context"
	"errors"
	"testing"
	"time"

	"incident-portal/internal/auth"
	"incident-portal/internal/tenancy"
)

func tenantContext(tenantID, subjectID int64) auth.RequestContext {
	return auth.RequestContext{
		Authenticated: true,
		SubjectID:     subjectID,
		Scope:         tenancy.TenantScope(tenantID),
	}
}

func TestReportFilesInEffectiveTenant(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0) }

	inc, err := svc.Report(context.Background(), tenantContext(5, 42), NewIncident{
		Title:    "switch down",
		Severity: SeverityHigh,
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if inc.ID == "" || inc.TenantID != 5 || inc.ReportedBy != 42 {
		t.Fatalf("unexpected incident: %+v", inc)
	}
	if inc.Status != StatusOpen {
		t.Fatalf("status = %q, want open", inc.Status)
	}
}

func TestReportRejectsGlobalScope(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	rc := auth.RequestContext{Authenticated: true, SubjectID: 1, SuperAdmin: true, Scope: tenancy.GlobalScope()}
	_, err := svc.Report(context.Background(), rc, NewIncident{Title: "x", Severity: SeverityLow})
	if !errors.Is(err, tenancy.ErrTenantRequired) {
		t.Fatalf("expected ErrTenantRequired, got %v", err)
	}
}

func TestReportValidatesInput(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	rc := tenantContext(5, 1)

	if _, err := svc.Report(context.Background(), rc, NewIncident{Severity: SeverityLow}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty title: got %v", err)
	}
	if _, err := svc.Report(context.Background(), rc, NewIncident{Title: "x", Severity: "urgent"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad severity: got %v", err)
	}
}

func TestListIsTenantPartitioned(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if _, err := svc.Report(context.Background(), tenantContext(5, 1), NewIncident{Title: "a", Severity: SeverityLow}); err != nil {
		t.Fatalf("report a: %v", err)
	}
	if _, err := svc.Report(context.Background(), tenantContext(7, 2), NewIncident{Title: "b", Severity: SeverityLow}); err != nil {
		t.Fatalf("report b: %v", err)
	}

	got, err := svc.List(context.Background(), tenantContext(5, 1))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "a" {
		t.Fatalf("tenant 5 sees %+v", got)
	}

	rc := auth.RequestContext{Authenticated: true, SuperAdmin: true, Scope: tenancy.GlobalScope()}
	if _, err := svc.List(context.Background(), rc); !errors.Is(err, tenancy.ErrTenantRequired) {
		t.Fatalf("global list: got %v", err)
	}
}
