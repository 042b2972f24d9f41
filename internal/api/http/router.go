package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/client-query-service/internal/api/http/handlers"
	"github.com/spec-kit/client-query-service/internal/auth"
	"github.com/spec-kit/client-query-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Queries        *handlers.QueriesHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Auth.Logout)

	queries := app.Group("/queries", cfg.AuthMiddleware.Handle)
	queries.Post("", auth.RequireRole(domain.RoleClient), cfg.Queries.Submit)
	queries.Get("", auth.RequireRole(domain.RoleSupport), cfg.Queries.List)
	queries.Get("/headings", auth.RequireRole(domain.RoleSupport), cfg.Queries.Headings)
	queries.Post("/:id/close", auth.RequireRole(domain.RoleSupport), cfg.Queries.Close)

	app.Get("/analytics", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSupport), cfg.Analytics.Report)
}
