package main

import (
	"net/http"
	"time"

	"incident-portal/internal/auth"
	"incident-portal/internal/httpapi"
	"incident-portal/internal/rbac"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// registerRoutes wires the route tree. Protect must precede
// RequireTenant on a route: the latter inspects the request context
// the former establishes.
func registerRoutes(r *gin.Engine, pipeline *auth.Pipeline, h httpapi.Handlers) {
	r.GET("/healthz", pipeline.Public(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// Login is the only unauthenticated business endpoint; rate limit
	// it per client IP on top of the per-account redis throttle.
	authGroup := v1.Group("/auth")
	authGroup.POST("/login", pipeline.Public(), httpapi.RateLimit(rate.Every(12*time.Second), 5), h.Login)
	authGroup.POST("/refresh", pipeline.Protect(), h.Refresh)

	v1.GET("/me", pipeline.Protect(), h.Me)

	incidentsGroup := v1.Group("/incidents")
	incidentsGroup.GET("", pipeline.Protect(rbac.Named(rbac.PermIncidentsRead)), auth.RequireTenant(), h.ListIncidents)
	incidentsGroup.POST("", pipeline.Protect(rbac.Named(rbac.PermIncidentsWrite)), auth.RequireTenant(), h.ReportIncident)

	actionsGroup := v1.Group("/actions")
	actionsGroup.GET("", pipeline.Protect(rbac.Named(rbac.PermActionsRead)), auth.RequireTenant(), notImplemented)
	actionsGroup.POST("", pipeline.Protect(rbac.Named(rbac.PermActionsWrite)), auth.RequireTenant(), notImplemented)

	categoriesGroup := v1.Group("/categories")
	categoriesGroup.GET("", pipeline.Protect(rbac.Named(rbac.PermCategoriesRead)), auth.RequireTenant(), notImplemented)
	categoriesGroup.POST("", pipeline.Protect(rbac.Named(rbac.PermCategoriesWrite)), auth.RequireTenant(), notImplemented)

	locationsGroup := v1.Group("/locations")
	locationsGroup.GET("", pipeline.Protect(rbac.Named(rbac.PermLocationsRead)), auth.RequireTenant(), notImplemented)
	locationsGroup.POST("", pipeline.Protect(rbac.Named(rbac.PermLocationsWrite)), auth.RequireTenant(), notImplemented)

	v1.GET("/reports", pipeline.Protect(rbac.Named(rbac.PermReportsRead)), auth.RequireTenant(), notImplemented)

	// Tenant administration operates across tenants; no RequireTenant.
	adminGroup := v1.Group("/admin/tenants")
	adminGroup.GET("", pipeline.Protect(rbac.Named(rbac.PermTenantsAdmin)), notImplemented)
	adminGroup.POST("", pipeline.Protect(rbac.Named(rbac.PermTenantsAdmin)), notImplemented)
}

func notImplemented(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "not implemented"})
}
