package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-auth/internal/api/http/handlers"
	"github.com/spec-kit/commerce-auth/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Service        *handlers.ServiceHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Authentication runs for every route but
// never rejects; only /me/required demands an identity.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("", cfg.AuthMiddleware.Handle)
	api.Get("/hello", cfg.Service.Hello)
	api.Get("/error-endpoint", cfg.Service.ErrorEndpoint)
	api.Get("/me", cfg.Service.Me)
	api.Get("/me/required", auth.RequireRole(auth.RoleUser), cfg.Service.Me)
}
