package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/credit"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/templating"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/repositories"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/services"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var validation *templating.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     err.Error(),
			"reason":    validation.Reason,
			"variables": validation.Variables,
		})
	}

	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, credit.ErrInsufficientCredit):
		return fiber.StatusPaymentRequired
	case errors.Is(err, providers.ErrProviderUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, providers.ErrProviderSend):
		return fiber.StatusBadGateway
	case errors.Is(err, services.ErrNoTemplateConfigured), errors.Is(err, services.ErrNoWhatsAppNumber):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrLocationNotFound),
		errors.Is(err, services.ErrTemplateNotFound),
		errors.Is(err, services.ErrPhoneNumberNotFound),
		errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrCallAlreadyRecorded):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, credit.ErrInvalidQuantity),
		errors.Is(err, credit.ErrInvalidPlanType):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ownerID reads the owner_id query parameter.
func ownerID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Query("owner_id")
	if raw == "" {
		return uuid.Nil, errors.New("owner_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("invalid owner_id")
	}
	return id, nil
}

func pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.New("invalid id")
	}
	return id, nil
}
