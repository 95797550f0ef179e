package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/worksphere/admin-auth/internal/api/http/handlers"
	"github.com/worksphere/admin-auth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	AdminAuth      *handlers.AdminAuthHandler
	Audit          *handlers.AuditHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")
	api.Get("/health", cfg.Health.Status)

	adminAuth := api.Group("/admin/auth")
	adminAuth.Post("/login", cfg.AdminAuth.Login)

	requireAdmin := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireSuperAdmin()}
	adminAuth.Get("/check", append(requireAdmin, cfg.AdminAuth.Check)...)
	if cfg.Audit != nil {
		adminAuth.Get("/audit", append(requireAdmin, cfg.Audit.List)...)
	}
}
