package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-auth/internal/observability"
)

// HealthHandler responds to liveness probes and exposes counters.
type HealthHandler struct {
	serviceName string
	version     string
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, metrics: metrics}
}

// Live reports service liveness. There are no dependencies to check.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Metrics returns a snapshot of the in-memory counters.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
