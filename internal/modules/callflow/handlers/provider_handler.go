package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

type SetDefaultRequest struct {
	Provider string `json:"provider"`
}

type ProviderHandler struct {
	registry *providers.Registry
}

func NewProviderHandler(registry *providers.Registry) *ProviderHandler {
	return &ProviderHandler{registry: registry}
}

// GetHealth godoc
// @Summary Service health check
// @Description Check if API is alive and list provider status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *ProviderHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"service":   "callflow-api",
		"providers": h.registry.Descriptors(),
	})
}

// ListProviders godoc
// @Summary List providers
// @Tags Providers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /providers [get]
func (h *ProviderHandler) ListProviders(c *fiber.Ctx) error {
	defaults := fiber.Map{}
	for _, capability := range []providers.Capability{
		providers.CapabilityMessaging,
		providers.CapabilityVirtualNumbers,
		providers.CapabilityChatbot,
	} {
		if name, ok := h.registry.Default(capability); ok {
			defaults[string(capability)] = name
		}
	}

	return c.JSON(fiber.Map{
		"providers": h.registry.Descriptors(),
		"defaults":  defaults,
	})
}

// SetDefault godoc
// @Summary Set the default provider for a capability
// @Tags Providers
// @Accept json
// @Produce json
// @Param capability path string true "messaging, virtual_numbers or chatbot"
// @Param provider body SetDefaultRequest true "Provider name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /providers/defaults/{capability} [put]
func (h *ProviderHandler) SetDefault(c *fiber.Ctx) error {
	capability, err := providers.ParseCapability(c.Params("capability"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req SetDefaultRequest
	if err := c.BodyParser(&req); err != nil || req.Provider == "" {
		return badRequest(c, "provider is required")
	}

	if err := h.registry.SetDefault(capability, req.Provider); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"capability": capability, "provider": req.Provider})
}
