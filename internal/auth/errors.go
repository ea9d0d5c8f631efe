package auth

import (
	"errors"
	"net/http"

	"incident-portal/internal/tenancy"
)

// Failure taxonomy for the token layer. Every kind is terminal for the
// current request; nothing here is retried server-side.
var (
	ErrTokenMissing          = errors.New("auth: bearer token missing")
	ErrTokenMalformed        = errors.New("auth: token malformed")
	ErrTokenExpired          = errors.New("auth: token expired")
	ErrTokenSignatureInvalid = errors.New("auth: token signature invalid")

	// ErrClaimsInvariant marks a claims set violating the
	// super-admin/tenant invariant. Encode refuses to sign it.
	ErrClaimsInvariant = errors.New("auth: claims violate tenant invariant")

	ErrPermissionDenied = errors.New("auth: permission denied")
)

// HTTPStatus maps a pipeline failure to its wire status class. The
// mapping is a binding contract for clients and must stay stable:
//
//	401 missing / malformed / expired / bad-signature token
//	403 tenant mismatch, tenant required, permission denied
//	409 inactive tenant
//	400 malformed tenant selector
//	503 tenant lookup timeout (the only kind worth a client retry)
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrTokenMissing),
		errors.Is(err, ErrTokenMalformed),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, tenancy.ErrTenantMismatch),
		errors.Is(err, tenancy.ErrTenantRequired),
		errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, tenancy.ErrTenantInactive):
		return http.StatusConflict
	case errors.Is(err, tenancy.ErrSelectorMalformed):
		return http.StatusBadRequest
	case errors.Is(err, tenancy.ErrLookupTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the client-visible rejection text. Deliberately
// coarse: expired tokens are distinguishable (clients must know to
// re-authenticate), but malformed vs bad-signature share one message.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return "missing bearer token"
	case errors.Is(err, ErrTokenExpired):
		return "session expired"
	case errors.Is(err, ErrTokenMalformed), errors.Is(err, ErrTokenSignatureInvalid):
		return "invalid token"
	case errors.Is(err, tenancy.ErrSelectorMalformed):
		return "invalid tenant selector"
	case errors.Is(err, tenancy.ErrTenantInactive):
		return "tenant inactive"
	case errors.Is(err, tenancy.ErrLookupTimeout):
		return "temporarily unavailable"
	case errors.Is(err, tenancy.ErrTenantMismatch),
		errors.Is(err, tenancy.ErrTenantRequired),
		errors.Is(err, ErrPermissionDenied):
		return "access denied"
	default:
		return "internal error"
	}
}
