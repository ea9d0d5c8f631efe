package tenancy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Resolution failure taxonomy. All fail closed: no code path ever
// substitutes a default tenant when resolution cannot produce one.
var (
	ErrTenantRequired    = errors.New("tenancy: concrete tenant required")
	ErrTenantMismatch    = errors.New("tenancy: selector does not match token tenant")
	ErrTenantInactive    = errors.New("tenancy: tenant inactive")
	ErrLookupTimeout     = errors.New("tenancy: tenant lookup timed out")
	ErrSelectorMalformed = errors.New("tenancy: tenant selector malformed")
)

// Subject is the identity slice the resolver needs from decoded token
// claims. SuperAdmin identities carry no tenant; everyone else carries
// exactly one.
type Subject struct {
	TenantID   *int64
	SuperAdmin bool
}

// Scope is the resolved data space of a request: one concrete tenant,
// or the tenant-less global scope a super-admin gets without an
// explicit selector.
type Scope struct {
	tenantID int64
	global   bool
}

func GlobalScope() Scope { return Scope{global: true} }

func TenantScope(id int64) Scope { return Scope{tenantID: id} }

func (s Scope) IsGlobal() bool { return s.global }

// TenantID returns the effective tenant id; ok is false for the global
// scope. Handlers needing a concrete tenant must reject !ok with
// ErrTenantRequired instead of inventing a default.
func (s Scope) TenantID() (int64, bool) {
	if s.global {
		return 0, false
	}
	return s.tenantID, true
}

func (s Scope) String() string {
	if s.global {
		return "global"
	}
	return "tenant:" + strconv.FormatInt(s.tenantID, 10)
}

// ParseSelector reads an explicit tenant selector value, typically the
// X-Tenant-Id header. Absent (empty) is valid and yields nil.
func ParseSelector(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, ErrSelectorMalformed
	}
	return &id, nil
}

// Resolver reconciles token claims with the optional explicit selector
// into a single effective Scope, re-checking tenant activity against
// the directory on every call so that deactivation takes effect
// without waiting for token expiry.
type Resolver struct {
	directory     Directory
	lookupTimeout time.Duration
}

func NewResolver(d Directory, lookupTimeout time.Duration) *Resolver {
	if lookupTimeout <= 0 {
		lookupTimeout = 2 * time.Second
	}
	return &Resolver{directory: d, lookupTimeout: lookupTimeout}
}

// Resolve applies the precedence rule. The order is load-bearing:
//
//  1. super-admin with selector: act-as that tenant if it is active
//  2. super-admin without selector: global scope
//  3. member: tenant comes from the token; a present selector must
//     match it exactly or the request fails with ErrTenantMismatch
//     (a mismatch is treated as a confused-deputy attempt, never
//     silently ignored or overridden)
func (r *Resolver) Resolve(ctx context.Context, sub Subject, selector *int64) (Scope, error) {
	if sub.SuperAdmin {
		if selector == nil {
			return GlobalScope(), nil
		}
		if err := r.requireActive(ctx, *selector); err != nil {
			return Scope{}, err
		}
		return TenantScope(*selector), nil
	}

	if sub.TenantID == nil {
		// No tenant derivable. Fail closed; fabricating a default
		// tenant here would silently cross tenant boundaries.
		return Scope{}, ErrTenantRequired
	}
	if selector != nil && *selector != *sub.TenantID {
		return Scope{}, ErrTenantMismatch
	}
	if err := r.requireActive(ctx, *sub.TenantID); err != nil {
		return Scope{}, err
	}
	return TenantScope(*sub.TenantID), nil
}

func (r *Resolver) requireActive(ctx context.Context, id int64) error {
	lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	active, err := r.directory.TenantActive(lookupCtx, id)
	if err != nil {
		// The caller disconnecting is not a lookup timeout.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrLookupTimeout
		}
		return fmt.Errorf("tenancy: activity lookup: %w", err)
	}
	if !active {
		return ErrTenantInactive
	}
	return nil
}
