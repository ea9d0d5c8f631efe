package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"incident-portal/internal/auth"
	"incident-portal/internal/incidents"
	"incident-portal/internal/session"
	"incident-portal/internal/tenancy"

	"github.com/gin-gonic/gin"
)

// TenantLookup resolves a login-form tenant subdomain to a tenant.
type TenantLookup interface {
	TenantBySubdomain(ctx context.Context, subdomain string) (tenancy.Tenant, bool, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services,
// return JSON.
type Handlers struct {
	Issuer    *session.Issuer
	Throttle  session.Throttle
	Tenants   TenantLookup
	Incidents *incidents.Service
	Log       *slog.Logger
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`

	// Exactly one way to pick a tenant: numeric id or subdomain.
	// Both absent means a super-admin login.
	TenantID        *int64 `json:"tenant_id,omitempty" binding:"omitempty,gt=0"`
	TenantSubdomain string `json:"tenant,omitempty"`
}

// Login exchanges credentials for a session token.
//
// Every failure kind deliberately collapses into one generic payload:
// wrong password, unknown account, missing tenant selector and
// inactive tenant all look identical to the caller, so the form cannot
// be used to probe which tenants or accounts exist.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid login payload"})
		return
	}

	throttleKey := strings.ToLower(req.Email) + "|" + c.ClientIP()
	allowed, err := h.Throttle.Allow(c.Request.Context(), throttleKey)
	if err != nil {
		// A throttle outage must not take logins down with it.
		h.Log.Warn("login throttle unavailable", "err", err)
		allowed = true
	}
	if !allowed {
		c.Header("Retry-After", "60")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
		return
	}

	tenantID := req.TenantID
	if tenantID == nil && req.TenantSubdomain != "" {
		t, found, err := h.Tenants.TenantBySubdomain(c.Request.Context(), strings.ToLower(req.TenantSubdomain))
		if err != nil {
			h.Log.Error("tenant subdomain lookup failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !found {
			loginFailed(c)
			return
		}
		tenantID = &t.ID
	}

	sess, err := h.Issuer.Login(c.Request.Context(), req.Email, req.Password, tenantID, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials),
			errors.Is(err, tenancy.ErrTenantRequired),
			errors.Is(err, tenancy.ErrTenantInactive):
			loginFailed(c)
		default:
			h.Log.Error("login failed internally", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	_ = h.Throttle.Reset(c.Request.Context(), throttleKey)
	c.JSON(http.StatusOK, gin.H{"token": sess.Token, "expires_at": sess.ExpiresAt})
}

func loginFailed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
}

// Refresh re-issues a token for the authenticated subject, reloading
// role and tenant state from the credential store.
func (h Handlers) Refresh(c *gin.Context) {
	rc, ok := auth.FromContext(c.Request.Context())
	if !ok || !rc.Authenticated {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	sess, err := h.Issuer.Refresh(c.Request.Context(), rc.SubjectID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		case errors.Is(err, tenancy.ErrTenantInactive):
			c.AbortWithStatusJSON(auth.HTTPStatus(err), gin.H{"error": auth.PublicMessage(err)})
		default:
			h.Log.Error("refresh failed internally", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": sess.Token, "expires_at": sess.ExpiresAt})
}

// Me echoes the resolved request context.
func (h Handlers) Me(c *gin.Context) {
	rc, _ := auth.FromContext(c.Request.Context())
	body := gin.H{
		"subject_id":  rc.SubjectID,
		"super_admin": rc.SuperAdmin,
		"role":        rc.Role,
		"permissions": rc.Permissions.Strings(),
	}
	if id, ok := rc.Scope.TenantID(); ok {
		body["tenant_id"] = id
	} else {
		body["scope"] = "global"
	}
	c.JSON(http.StatusOK, body)
}

// --- Incidents ---

type reportIncidentRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=4000"`
	Severity    string `json:"severity" binding:"required,severity"`
}

func (h Handlers) ReportIncident(c *gin.Context) {
	var req reportIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid incident payload"})
		return
	}

	rc, _ := auth.FromContext(c.Request.Context())
	inc, err := h.Incidents.Report(c.Request.Context(), rc, incidents.NewIncident{
		Title:       req.Title,
		Description: req.Description,
		Severity:    incidents.Severity(req.Severity),
	})
	if err != nil {
		switch {
		case errors.Is(err, tenancy.ErrTenantRequired):
			c.AbortWithStatusJSON(auth.HTTPStatus(err), gin.H{"error": auth.PublicMessage(err)})
		case errors.Is(err, incidents.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid incident payload"})
		default:
			h.Log.Error("incident report failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}
	c.JSON(http.StatusCreated, inc)
}

func (h Handlers) ListIncidents(c *gin.Context) {
	rc, _ := auth.FromContext(c.Request.Context())
	list, err := h.Incidents.List(c.Request.Context(), rc)
	if err != nil {
		if errors.Is(err, tenancy.ErrTenantRequired) {
			c.AbortWithStatusJSON(auth.HTTPStatus(err), gin.H{"error": auth.PublicMessage(err)})
			return
		}
		h.Log.Error("incident list failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if list == nil {
		list = []incidents.Incident{}
	}
	c.JSON(http.StatusOK, gin.H{"incidents": list})
}
