package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/templating"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/repositories"
)

type TemplateRequest struct {
	LocationID        *uuid.UUID `json:"location_id,omitempty"`
	Name              string     `json:"name"`
	Content           string     `json:"content"`
	DeclaredVariables []string   `json:"declared_variables"`
	Channel           string     `json:"channel"`
	Purpose           string     `json:"purpose"`
	ExternalName      string     `json:"external_name,omitempty"`
	Language          string     `json:"language,omitempty"`
}

type CompleteTemplateRequest struct {
	To         string            `json:"to"`
	From       string            `json:"from,omitempty"`
	LocationID *uuid.UUID        `json:"location_id,omitempty"`
	Variables  map[string]string `json:"variables"`
	Provider   string            `json:"provider,omitempty"`
}

type TemplateService struct {
	templates  repositories.TemplateRepo
	locations  repositories.LocationRepo
	dispatcher *templateDispatcher
}

func NewTemplateService(
	templates repositories.TemplateRepo,
	locations repositories.LocationRepo,
	messages repositories.MessageRepo,
	completions repositories.CompletionRepo,
	gateway MessagingGateway,
) *TemplateService {
	return &TemplateService{
		templates:  templates,
		locations:  locations,
		dispatcher: newTemplateDispatcher(gateway, messages, completions),
	}
}

// Validate checks content against its declared variables.
func (s *TemplateService) Validate(content string, declared []string) error {
	return templating.Validate(content, declared)
}

// Create validates and stores a new template.
func (s *TemplateService) Create(ctx context.Context, ownerID uuid.UUID, req TemplateRequest) (*models.Template, error) {
	tmpl := &models.Template{OwnerID: ownerID}
	if err := s.apply(ctx, tmpl, req); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return tmpl, nil
}

// Update replaces the editable fields of a template, with the same
// validation as Create.
func (s *TemplateService) Update(ctx context.Context, ownerID, id uuid.UUID, req TemplateRequest) (*models.Template, error) {
	tmpl, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, tmpl, req); err != nil {
		return nil, err
	}
	if err := s.templates.Update(ctx, tmpl); err != nil {
		return nil, fmt.Errorf("failed to update template: %w", err)
	}
	return tmpl, nil
}

func (s *TemplateService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.Template, error) {
	tmpl, err := s.templates.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && tmpl.OwnerID != ownerID) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *TemplateService) List(ctx context.Context, ownerID uuid.UUID) ([]models.Template, error) {
	return s.templates.FindByOwner(ctx, ownerID)
}

// CompleteTemplate sends a template on demand, e.g. after the flow showed
// the template section instead of sending automatically. A failed send
// still returns the recorded message together with the provider error.
func (s *TemplateService) CompleteTemplate(ctx context.Context, ownerID, id uuid.UUID, req CompleteTemplateRequest) (*models.Message, error) {
	if strings.TrimSpace(req.To) == "" {
		return nil, fmt.Errorf("%w: to is required", ErrInvalidInput)
	}

	tmpl, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	locationID := req.LocationID
	if locationID == nil {
		locationID = tmpl.LocationID
	}

	message, res, err := s.dispatcher.dispatch(ctx, dispatchRequest{
		Template:   tmpl,
		OwnerID:    ownerID,
		LocationID: locationID,
		From:       req.From,
		To:         req.To,
		Values:     req.Variables,
		Provider:   req.Provider,
	})
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return message, res.Err()
	}
	return message, nil
}

func (s *TemplateService) apply(ctx context.Context, tmpl *models.Template, req TemplateRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	channel := strings.ToLower(strings.TrimSpace(req.Channel))
	if channel == "" {
		channel = models.ChannelSMS
	}
	if channel != models.ChannelSMS && channel != models.ChannelWhatsApp {
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidInput, req.Channel)
	}

	purpose := strings.ToLower(strings.TrimSpace(req.Purpose))
	if purpose == "" {
		purpose = models.PurposeGeneral
	}
	if purpose != models.PurposeGeneral && purpose != models.PurposeMissedCall {
		return fmt.Errorf("%w: unknown purpose %q", ErrInvalidInput, req.Purpose)
	}

	if err := templating.Validate(req.Content, req.DeclaredVariables); err != nil {
		return err
	}

	if req.LocationID != nil {
		location, err := s.locations.FindByID(ctx, *req.LocationID)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && location.OwnerID != tmpl.OwnerID) {
			return ErrLocationNotFound
		}
		if err != nil {
			return err
		}
	}

	declared := make(models.StringList, len(req.DeclaredVariables))
	copy(declared, req.DeclaredVariables)

	tmpl.LocationID = req.LocationID
	tmpl.Name = name
	tmpl.Content = req.Content
	tmpl.DeclaredVariables = declared
	tmpl.Channel = channel
	tmpl.Purpose = purpose
	tmpl.ExternalName = strings.TrimSpace(req.ExternalName)
	tmpl.Language = strings.TrimSpace(req.Language)
	return nil
}
