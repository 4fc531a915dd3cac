package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/audit"
)

type AuditHandler struct {
	audit *audit.Service
}

func NewAuditHandler(auditService *audit.Service) *AuditHandler {
	return &AuditHandler{audit: auditService}
}

// GetAuditLogs godoc
// @Summary Audit log
// @Description Credit and provisioning changes of an owner, newest first
// @Tags Audit
// @Produce json
// @Param owner_id query string true "Owner ID"
// @Param action query string false "Filter by action"
// @Param entity query string false "Filter by entity"
// @Param start_date query string false "RFC3339 lower bound"
// @Param end_date query string false "RFC3339 upper bound"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(50)
// @Success 200 {object} audit.AuditLogResponse
// @Router /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	filter := audit.AuditFilter{
		OwnerID:  &owner,
		Action:   c.Query("action"),
		Entity:   c.Query("entity"),
		EntityID: c.Query("entity_id"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 50),
	}
	for param, dst := range map[string]**time.Time{"start_date": &filter.StartDate, "end_date": &filter.EndDate} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return badRequest(c, "invalid "+param)
		}
		*dst = &t
	}

	resp, err := h.audit.GetLogs(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
