package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-auth/internal/api/http/handlers"
	"github.com/spec-kit/commerce-auth/internal/auth"
	"github.com/spec-kit/commerce-auth/internal/config"
	"github.com/spec-kit/commerce-auth/internal/observability"
)

// NewApp builds the fiber application with the full middleware chain.
func NewApp(cfg *config.Config, codec *auth.TokenCodec, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	authMiddleware := auth.NewAuthMiddleware(codec, cfg.Security.Enabled, logger,
		auth.WithOutcomeRecorder(metrics))

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, metrics),
		Service:        handlers.NewServiceHandler(cfg.App.Service),
		AuthMiddleware: authMiddleware,
	})
	return app
}
