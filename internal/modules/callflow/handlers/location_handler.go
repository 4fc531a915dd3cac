package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/services"
)

type CreateLocationRequest struct {
	OwnerID  uuid.UUID `json:"owner_id"`
	PlanType string    `json:"plan_type"`
	services.LocationAttrs
}

type AssignNumberBody struct {
	OwnerID uuid.UUID `json:"owner_id"`
	services.AssignNumberRequest
}

type LocationHandler struct {
	provisioning *services.ProvisioningService
	numbers      *services.PhoneNumberService
}

func NewLocationHandler(provisioning *services.ProvisioningService, numbers *services.PhoneNumberService) *LocationHandler {
	return &LocationHandler{provisioning: provisioning, numbers: numbers}
}

// CreateLocation godoc
// @Summary Provision a location
// @Description Consumes one credit of the plan type. Reusing request_key returns the same location.
// @Tags Locations
// @Accept json
// @Produce json
// @Param location body CreateLocationRequest true "Location"
// @Success 201 {object} models.Location
// @Failure 400 {object} map[string]interface{}
// @Failure 402 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /locations [post]
func (h *LocationHandler) CreateLocation(c *fiber.Ctx) error {
	var req CreateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	location, err := h.provisioning.Provision(c.UserContext(), req.OwnerID, req.PlanType, req.LocationAttrs)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(location)
}

// ListLocations godoc
// @Summary List locations
// @Tags Locations
// @Produce json
// @Param owner_id query string true "Owner ID"
// @Success 200 {array} models.Location
// @Router /locations [get]
func (h *LocationHandler) ListLocations(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	locations, err := h.provisioning.List(c.UserContext(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(locations)
}

// AssignVirtualNumber godoc
// @Summary Assign a virtual number
// @Description Issues a number from the virtual-number provider and attaches it to the location
// @Tags Phone Numbers
// @Accept json
// @Produce json
// @Param id path string true "Location ID"
// @Param number body AssignNumberBody true "Number request"
// @Success 201 {object} models.PhoneNumber
// @Failure 404 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /locations/{id}/virtual-number [post]
func (h *LocationHandler) AssignVirtualNumber(c *fiber.Ctx) error {
	locationID, err := pathID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req AssignNumberBody
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	number, err := h.numbers.AssignVirtualNumber(c.UserContext(), req.OwnerID, locationID, req.AssignNumberRequest)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(number)
}

// ReleaseVirtualNumber godoc
// @Summary Release a virtual number
// @Tags Phone Numbers
// @Produce json
// @Param id path string true "Phone number ID"
// @Param owner_id query string true "Owner ID"
// @Success 200 {object} models.PhoneNumber
// @Failure 404 {object} map[string]interface{}
// @Router /phone-numbers/{id} [delete]
func (h *LocationHandler) ReleaseVirtualNumber(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	number, err := h.numbers.ReleaseVirtualNumber(c.UserContext(), owner, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(number)
}
