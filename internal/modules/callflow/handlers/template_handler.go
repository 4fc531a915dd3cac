package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/services"
)

type ValidateTemplateRequest struct {
	Content           string   `json:"content"`
	DeclaredVariables []string `json:"declared_variables"`
}

type TemplateHandler struct {
	templates *services.TemplateService
}

func NewTemplateHandler(templates *services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// ValidateTemplate godoc
// @Summary Validate template content
// @Description Checks placeholders against the declared variables
// @Tags Templates
// @Accept json
// @Produce json
// @Param template body ValidateTemplateRequest true "Template content"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /templates/validate [post]
func (h *TemplateHandler) ValidateTemplate(c *fiber.Ctx) error {
	var req ValidateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.templates.Validate(req.Content, req.DeclaredVariables); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"valid": true})
}

// CreateTemplate godoc
// @Summary Create a template
// @Tags Templates
// @Accept json
// @Produce json
// @Param owner_id query string true "Owner ID"
// @Param template body services.TemplateRequest true "Template"
// @Success 201 {object} models.Template
// @Failure 422 {object} map[string]interface{}
// @Router /templates [post]
func (h *TemplateHandler) CreateTemplate(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req services.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tmpl, err := h.templates.Create(c.UserContext(), owner, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tmpl)
}

// ListTemplates godoc
// @Summary List templates
// @Tags Templates
// @Produce json
// @Param owner_id query string true "Owner ID"
// @Success 200 {array} models.Template
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	templates, err := h.templates.List(c.UserContext(), owner)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(templates)
}

// GetTemplate godoc
// @Summary Get a template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Param owner_id query string true "Owner ID"
// @Success 200 {object} models.Template
// @Failure 404 {object} map[string]interface{}
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	tmpl, err := h.templates.Get(c.UserContext(), owner, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tmpl)
}

// UpdateTemplate godoc
// @Summary Update a template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param owner_id query string true "Owner ID"
// @Param template body services.TemplateRequest true "Template"
// @Success 200 {object} models.Template
// @Failure 404 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req services.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	tmpl, err := h.templates.Update(c.UserContext(), owner, id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tmpl)
}

// CompleteTemplate godoc
// @Summary Send a template manually
// @Description Renders the template with the given values and sends it
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param owner_id query string true "Owner ID"
// @Param completion body services.CompleteTemplateRequest true "Recipient and values"
// @Success 200 {object} models.Message
// @Failure 502 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /templates/{id}/complete [post]
func (h *TemplateHandler) CompleteTemplate(c *fiber.Ctx) error {
	owner, err := ownerID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	id, err := pathID(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req services.CompleteTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	msg, err := h.templates.CompleteTemplate(c.UserContext(), owner, id, req)
	if err != nil && msg != nil {
		// The failed attempt was recorded; return it alongside the error.
		return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error(), "message": msg})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(msg)
}
