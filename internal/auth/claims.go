package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the only supported token claims shape for this service.
//
// Tenant invariant: SuperAdmin == true exactly when TenantID == nil.
// A token carrying both a concrete tenant and the super-admin flag, or
// neither, is never issued and never accepted.
//
// Permissions hold the role expansion frozen at issue time; a role
// change takes effect on the next login or refresh, not mid-session.
type Claims struct {
	jwt.RegisteredClaims

	SubjectID   int64    `json:"subject_id"`
	TenantID    *int64   `json:"tenant_id,omitempty"`
	SuperAdmin  bool     `json:"super_admin"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Validate enforces the claims invariant. The jwt parser calls this
// during decode (jwt/v5 ClaimsValidator); Encode calls it before
// signing so an invariant-violating token is never produced.
func (c Claims) Validate() error {
	if c.SubjectID <= 0 {
		return ErrClaimsInvariant
	}
	if c.SuperAdmin == (c.TenantID != nil) {
		return ErrClaimsInvariant
	}
	if c.Role == "" {
		return ErrClaimsInvariant
	}
	return nil
}
