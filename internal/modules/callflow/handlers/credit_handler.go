package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/services"
)

type CreditHandler struct {
	credits *services.CreditService
}

func NewCreditHandler(credits *services.CreditService) *CreditHandler {
	return &CreditHandler{credits: credits}
}

// GetCredits godoc
// @Summary Credit balance
// @Description List the owner's credit entries with available counts
// @Tags Credits
// @Produce json
// @Param owner_id query string true "Owner ID"
// @Success 200 {array} services.CreditBalance
// @Failure 400 {object} map[string]interface{}
// @Router /credits [get]
func (h *CreditHandler) GetCredits(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	balances, err := h.credits.Balance(c.UserContext(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(balances)
}

// RecordPurchase godoc
// @Summary Record a credit purchase
// @Description Applies a paid purchase once per reference; repeats are acknowledged without effect
// @Tags Credits
// @Accept json
// @Produce json
// @Param purchase body services.PurchaseRequest true "Purchase"
// @Success 201 {object} map[string]interface{}
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /credits/purchases [post]
func (h *CreditHandler) RecordPurchase(c *fiber.Ctx) error {
	var req services.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	recorded, err := h.credits.Purchase(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	status := fiber.StatusOK
	if recorded {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"recorded": recorded, "reference": req.Reference})
}
