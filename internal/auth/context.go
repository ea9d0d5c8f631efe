package auth

import (
	"context"

	"incident-portal/internal/rbac"
	"incident-portal/internal/tenancy"
)

// RequestContext is the per-request authorization result handed to
// business handlers. It is constructed exactly once by the pipeline,
// owned by the request's lifetime, and never mutated, cached, pooled,
// or shared across requests afterwards. Treat every field as read-only.
type RequestContext struct {
	// Authenticated is false only for routes declared public.
	Authenticated bool

	SubjectID  int64
	SuperAdmin bool
	Role       string

	// Scope is the effective tenant resolution: one concrete tenant,
	// or global for a super-admin without an explicit selector.
	Scope tenancy.Scope

	Permissions rbac.Set
}

// AnonymousContext is attached to public routes when no identity is
// presented. Zero subject, no tenant, no permissions.
func AnonymousContext() RequestContext {
	return RequestContext{}
}

type ctxKey struct{}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the request's authorization result. ok is false
// when the pipeline never ran (e.g. a route wired outside it).
func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(ctxKey{}).(RequestContext)
	return rc, ok
}
