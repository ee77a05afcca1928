package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-auth/internal/auth"
)

// ServiceHandler serves the plain service endpoints.
type ServiceHandler struct {
	service string
}

// NewServiceHandler builds a handler announcing itself as service.
func NewServiceHandler(service string) *ServiceHandler {
	return &ServiceHandler{service: service}
}

// Hello reports that the service is up.
func (h *ServiceHandler) Hello(c *fiber.Ctx) error {
	return c.SendString(fmt.Sprintf("%s service is running!", h.service))
}

// ErrorEndpoint always fails so the error mapping can be exercised end to end.
func (h *ServiceHandler) ErrorEndpoint(_ *fiber.Ctx) error {
	return errors.New("Test exception for global error handling")
}

// Me returns the identity attached by the authentication middleware.
func (h *ServiceHandler) Me(c *fiber.Ctx) error {
	id, ok := auth.IdentityFromFiber(c)
	if !ok {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{
		"authenticated": true,
		"principal":     id.Principal,
		"roles":         id.Roles,
	})
}
