package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/services"
)

type FlowHandler struct {
	flows *services.FlowService
}

func NewFlowHandler(flows *services.FlowService) *FlowHandler {
	return &FlowHandler{flows: flows}
}

// HandleMissedCall godoc
// @Summary Process a missed call
// @Description Runs the templates and chatbot branches for a missed-call event
// @Tags Calls
// @Accept json
// @Produce json
// @Param event body services.MissedCallEvent true "Call event"
// @Success 200 {object} services.FlowResult
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /calls/missed [post]
func (h *FlowHandler) HandleMissedCall(c *fiber.Ctx) error {
	var event services.MissedCallEvent
	if err := c.BodyParser(&event); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.flows.HandleMissedCall(c.UserContext(), event)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleMissedCallWithWhatsApp godoc
// @Summary Answer a missed call on WhatsApp
// @Description Sends the location's missed-call WhatsApp template from its WhatsApp number
// @Tags Calls
// @Accept json
// @Produce json
// @Param call body services.MissedCallData true "Missed call"
// @Success 200 {object} services.WhatsAppResult
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /calls/missed/whatsapp [post]
func (h *FlowHandler) HandleMissedCallWithWhatsApp(c *fiber.Ctx) error {
	var data services.MissedCallData
	if err := c.BodyParser(&data); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := h.flows.HandleMissedCallWithWhatsApp(c.UserContext(), data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetPreferences godoc
// @Summary Flow preferences
// @Tags Flow Preferences
// @Produce json
// @Param owner_id query string true "Owner ID"
// @Success 200 {object} models.FlowPreference
// @Router /flow-preferences [get]
func (h *FlowHandler) GetPreferences(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	pref, err := h.flows.GetPreferences(c.UserContext(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pref)
}

// UpdatePreferences godoc
// @Summary Update flow preferences
// @Tags Flow Preferences
// @Accept json
// @Produce json
// @Param owner_id query string true "Owner ID"
// @Param preferences body services.PreferenceRequest true "Preferences"
// @Success 200 {object} models.FlowPreference
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /flow-preferences [put]
func (h *FlowHandler) UpdatePreferences(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req services.PreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	pref, err := h.flows.UpdatePreferences(c.UserContext(), owner, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pref)
}

// ListCallEvents godoc
// @Summary Call history
// @Tags Calls
// @Produce json
// @Param owner_id query string true "Owner ID"
// @Param limit query int false "Max events" default(50)
// @Success 200 {array} models.CallEvent
// @Router /call-events [get]
func (h *FlowHandler) ListCallEvents(c *fiber.Ctx) error {
	return h.history(c, func(owner uuid.UUID, limit int) (interface{}, error) {
		return h.flows.CallEvents(c.UserContext(), owner, limit)
	})
}

// ListMessages godoc
// @Summary Message history
// @Tags Calls
// @Produce json
// @Param owner_id query string true "Owner ID"
// @Param limit query int false "Max messages" default(50)
// @Success 200 {array} models.Message
// @Router /messages [get]
func (h *FlowHandler) ListMessages(c *fiber.Ctx) error {
	return h.history(c, func(owner uuid.UUID, limit int) (interface{}, error) {
		return h.flows.Messages(c.UserContext(), owner, limit)
	})
}

func (h *FlowHandler) history(c *fiber.Ctx, fetch func(owner uuid.UUID, limit int) (interface{}, error)) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	items, err := fetch(owner, c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}
