package auth

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"incident-portal/internal/audit"
	"incident-portal/internal/rbac"
	"incident-portal/internal/tenancy"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	// HeaderTenantSelector carries the optional explicit tenant
	// selector. Absent is a valid value.
	HeaderTenantSelector = "X-Tenant-Id"
)

// Pipeline runs the per-request authorization sequence:
// extract token -> decode -> resolve tenant -> check permissions ->
// attach RequestContext. Terminal on first failure; a rejected request
// is never partially processed downstream.
//
// One pipeline instance serves all requests; it holds no per-request
// state, so concurrent requests cannot contaminate each other.
type Pipeline struct {
	codec    *Codec
	resolver *tenancy.Resolver
	audit    *audit.Service
	log      *slog.Logger
	now      func() time.Time
}

func NewPipeline(codec *Codec, resolver *tenancy.Resolver, auditSvc *audit.Service, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		codec:    codec,
		resolver: resolver,
		audit:    auditSvc,
		log:      log,
		now:      time.Now,
	}
}

// Public marks a route as public: no token needed; the handler receives
// an anonymous RequestContext.
func (p *Pipeline) Public() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithRequestContext(c.Request.Context(), AnonymousContext())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Protect marks a route as protected and declares the permissions it
// requires. An empty requirement means any authenticated identity of
// the resolved tenant. The declaration is consumed verbatim; nothing
// downstream re-checks it.
func (p *Pipeline) Protect(required ...rbac.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
		if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
			p.reject(c, ErrTokenMissing)
			return
		}

		claims, err := p.codec.Decode(strings.TrimPrefix(raw, bearerPrefix), p.now())
		if err != nil {
			p.reject(c, err)
			return
		}

		selector, err := tenancy.ParseSelector(c.GetHeader(HeaderTenantSelector))
		if err != nil {
			p.reject(c, err)
			return
		}

		sub := tenancy.Subject{TenantID: claims.TenantID, SuperAdmin: claims.SuperAdmin}
		scope, err := p.resolver.Resolve(c.Request.Context(), sub, selector)
		if err != nil {
			p.reject(c, err)
			return
		}

		granted := rbac.ParseSet(claims.Permissions)
		if !rbac.Evaluate(granted, required) {
			p.auditDenied(c, claims, scope, required)
			p.reject(c, ErrPermissionDenied)
			return
		}

		rc := RequestContext{
			Authenticated: true,
			SubjectID:     claims.SubjectID,
			SuperAdmin:    claims.SuperAdmin,
			Role:          claims.Role,
			Scope:         scope,
			Permissions:   granted,
		}

		if claims.SuperAdmin && selector != nil {
			// Acting-as is silent toward the tenant but always leaves
			// an internal audit trail.
			if err := p.audit.LogActAs(c.Request.Context(), *selector, claims.SubjectID, claims.Role, c.ClientIP()); err != nil {
				p.log.Warn("audit act-as failed", "err", err)
			}
		}

		ctx := WithRequestContext(c.Request.Context(), rc)
		c.Request = c.Request.WithContext(ctx)

		// Breadcrumbs for the request logger; handlers use FromContext.
		c.Set("subject_id", strconv.FormatInt(rc.SubjectID, 10))
		c.Set("tenant_scope", scope.String())

		c.Next()
	}
}

// RequireTenant rejects global-scope (super-admin, no selector)
// requests on routes that only make sense against one concrete tenant.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := FromContext(c.Request.Context())
		if !ok || !rc.Authenticated {
			c.AbortWithStatusJSON(HTTPStatus(ErrTokenMissing), gin.H{"error": PublicMessage(ErrTokenMissing)})
			return
		}
		if rc.Scope.IsGlobal() {
			c.AbortWithStatusJSON(HTTPStatus(tenancy.ErrTenantRequired), gin.H{"error": PublicMessage(tenancy.ErrTenantRequired)})
			return
		}
		c.Next()
	}
}

func (p *Pipeline) reject(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if status >= 500 {
		p.log.Error("auth pipeline failure", "err", err, "path", c.FullPath())
	} else {
		p.log.Warn("request rejected", "status", status, "err", err, "path", c.FullPath())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": PublicMessage(err)})
}

func (p *Pipeline) auditDenied(c *gin.Context, claims Claims, scope tenancy.Scope, required []rbac.Permission) {
	var tenantID *int64
	if id, ok := scope.TenantID(); ok {
		tenantID = &id
	}
	names := make([]string, 0, len(required))
	for _, r := range required {
		names = append(names, r.String())
	}
	err := p.audit.LogAccessDenied(
		c.Request.Context(),
		tenantID,
		claims.SubjectID,
		claims.Role,
		c.ClientIP(),
		`{"required":"`+strings.Join(names, ",")+`"}`,
	)
	if err != nil {
		p.log.Warn("audit access-denied failed", "err", err)
	}
}
