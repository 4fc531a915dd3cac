package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// QRGenerator pairs a linked WhatsApp device.
type QRGenerator interface {
	GenerateQR(ctx context.Context) ([]byte, error)
}

type WhatsAppHandler struct {
	pairing QRGenerator
}

// NewWhatsAppHandler accepts a nil generator when no linked-device provider
// is configured.
func NewWhatsAppHandler(pairing QRGenerator) *WhatsAppHandler {
	return &WhatsAppHandler{pairing: pairing}
}

// GetQRCode godoc
// @Summary Get WhatsApp QR Code
// @Description Generate the QR code that links the whatsmeow device
// @Tags WhatsApp
// @Produce png
// @Success 200 {file} binary
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /whatsapp/qr [get]
func (h *WhatsAppHandler) GetQRCode(c *fiber.Ctx) error {
	if h.pairing == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "linked-device WhatsApp provider is not configured",
		})
	}

	qr, err := h.pairing.GenerateQR(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to generate QR")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "image/png")
	c.Set("Content-Disposition", "inline; filename=whatsapp-qr.png")
	return c.Send(qr)
}
