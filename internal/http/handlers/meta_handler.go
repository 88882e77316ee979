package handlers

import (
	"github.com/fruitctl/fruitctl/internal/http/dto"
	"github.com/fruitctl/fruitctl/internal/integrations"
	"github.com/gofiber/fiber/v2"
)

type MetaHandler struct {
	registration *integrations.Registration
}

func NewMetaHandler(registration *integrations.Registration) *MetaHandler {
	return &MetaHandler{registration: registration}
}

func (h *MetaHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "ok"})
}

// GetCapabilities lists what the registered integrations expose.
func (h *MetaHandler) GetCapabilities(c *fiber.Ctx) error {
	resp := dto.CapabilitiesResponse{
		Registered:   []string{},
		Skipped:      []string{},
		Capabilities: []integrations.Capability{},
	}
	if h.registration != nil {
		resp.Registered = h.registration.Registered
		resp.Skipped = h.registration.Skipped
		resp.Capabilities = h.registration.Capabilities
	}
	return c.JSON(resp)
}
