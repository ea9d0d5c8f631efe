package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"incident-portal/internal/audit"
	"incident-portal/internal/auth"
	"incident-portal/internal/rbac"
	"incident-portal/internal/tenancy"

	"golang.org/x/crypto/bcrypt"
)

// Login failure kinds. The wire payload is one generic 401 for all of
// them; the split exists for audit and tests only.
var (
	// ErrInvalidCredentials covers both wrong secret and unknown
	// identifier. The two must stay indistinguishable to callers so a
	// login form cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	ErrRoleNotRegistered  = errors.New("session: role not registered")
)

// CredentialStore is consulted only at login and refresh time.
type CredentialStore interface {
	// UserByEmail looks up a user scoped to a tenant. A nil tenantID
	// matches super-admin accounts only.
	UserByEmail(ctx context.Context, tenantID *int64, email string) (User, bool, error)
	// UserByID reloads a user for token refresh.
	UserByID(ctx context.Context, id int64) (User, bool, error)
	// EmailKnown reports whether the email exists under any tenant.
	// Used to split TenantRequired from InvalidCredentials internally;
	// the wire response stays identical either way.
	EmailKnown(ctx context.Context, email string) (bool, error)
}

// Issuer handles login and refresh: credential check, role expansion,
// claims assembly, token issue. Tenant selection at login is a
// simplified instance of request-time resolution: non-super-admin
// logins must name their tenant explicitly.
type Issuer struct {
	store     CredentialStore
	registry  *rbac.Registry
	directory tenancy.Directory
	codec     *auth.Codec
	audit     *audit.Service
	clock     func() time.Time
}

func NewIssuer(store CredentialStore, registry *rbac.Registry, directory tenancy.Directory, codec *auth.Codec, auditSvc *audit.Service) *Issuer {
	return &Issuer{
		store:     store,
		registry:  registry,
		directory: directory,
		codec:     codec,
		audit:     auditSvc,
		clock:     time.Now,
	}
}

// dummyHash keeps the bcrypt cost constant for unknown identifiers so
// response timing does not reveal whether an account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Login validates identifier+secret scoped to the selected tenant and
// issues a session token.
func (i *Issuer) Login(ctx context.Context, email, password string, tenantID *int64, clientIP string) (Session, error) {
	sess, err := i.login(ctx, email, password, tenantID, clientIP)
	if err != nil {
		// Audit is best-effort; the login failure is what matters.
		_ = i.audit.LogLoginFailed(ctx, tenantID, clientIP, "")
		return Session{}, err
	}
	return sess, nil
}

func (i *Issuer) login(ctx context.Context, email, password string, tenantID *int64, clientIP string) (Session, error) {
	if tenantID != nil {
		active, err := i.directory.TenantActive(ctx, *tenantID)
		if err != nil {
			return Session{}, fmt.Errorf("session: tenant lookup: %w", err)
		}
		if !active {
			return Session{}, tenancy.ErrTenantInactive
		}
	}

	user, found, err := i.store.UserByEmail(ctx, tenantID, email)
	if err != nil {
		return Session{}, fmt.Errorf("session: user lookup: %w", err)
	}
	if !found || !user.IsActive {
		// Burn a bcrypt round anyway; see dummyHash.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		if tenantID == nil {
			// Not a super-admin. If the email lives under some tenant,
			// the caller forgot the selector.
			known, kerr := i.store.EmailKnown(ctx, email)
			if kerr == nil && known {
				return Session{}, tenancy.ErrTenantRequired
			}
		}
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	sess, err := i.issue(user)
	if err != nil {
		return Session{}, err
	}
	_ = i.audit.LogLogin(ctx, user.TenantID, user.ID, user.Role, clientIP)
	return sess, nil
}

// Refresh re-issues a token for an authenticated subject. The store is
// consulted again so role edits and deactivations take effect here,
// not mid-session: that is the documented staleness window.
func (i *Issuer) Refresh(ctx context.Context, subjectID int64) (Session, error) {
	user, found, err := i.store.UserByID(ctx, subjectID)
	if err != nil {
		return Session{}, fmt.Errorf("session: user reload: %w", err)
	}
	if !found || !user.IsActive {
		return Session{}, ErrInvalidCredentials
	}
	if user.TenantID != nil {
		active, err := i.directory.TenantActive(ctx, *user.TenantID)
		if err != nil {
			return Session{}, fmt.Errorf("session: tenant lookup: %w", err)
		}
		if !active {
			return Session{}, tenancy.ErrTenantInactive
		}
	}
	return i.issue(user)
}

func (i *Issuer) issue(user User) (Session, error) {
	perms, ok := i.registry.Expand(user.Role)
	if !ok {
		return Session{}, fmt.Errorf("%w: %q", ErrRoleNotRegistered, user.Role)
	}

	claims := auth.Claims{
		SubjectID:   user.ID,
		TenantID:    user.TenantID,
		SuperAdmin:  user.TenantID == nil,
		Role:        user.Role,
		Permissions: perms.Strings(),
	}
	token, expiresAt, err := i.codec.Encode(i.clock(), claims)
	if err != nil {
		return Session{}, fmt.Errorf("session: encode token: %w", err)
	}
	return Session{Token: token, ExpiresAt: expiresAt}, nil
}
