package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/templating"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/repositories"
)

// TimestampLayout formats {{timestamp}} in the location's time zone.
const TimestampLayout = "2006-01-02 15:04"

type dispatchRequest struct {
	Template   *models.Template
	OwnerID    uuid.UUID
	LocationID *uuid.UUID
	From       string
	To         string
	Values     map[string]string
	Provider   string
}

// templateDispatcher renders a template, sends it over the template's
// channel and records the attempt. Automated flows and manual completion
// share it so both leave the same history behind.
type templateDispatcher struct {
	gateway     MessagingGateway
	messages    repositories.MessageRepo
	completions repositories.CompletionRepo
	now         func() time.Time
}

func newTemplateDispatcher(gateway MessagingGateway, messages repositories.MessageRepo, completions repositories.CompletionRepo) *templateDispatcher {
	return &templateDispatcher{
		gateway:     gateway,
		messages:    messages,
		completions: completions,
		now:         time.Now,
	}
}

// dispatch always persists a Message, sent or failed. The returned error is
// only for a failed Message write; a failed send is reported through the
// Result and a failed completion write is logged.
func (d *templateDispatcher) dispatch(ctx context.Context, req dispatchRequest) (*models.Message, providers.Result, error) {
	tmpl := req.Template
	declared := []string(tmpl.DeclaredVariables)
	body := templating.Render(tmpl.Content, declared, req.Values)

	var res providers.Result
	switch {
	case tmpl.Channel == models.ChannelWhatsApp && tmpl.ExternalName != "":
		res = d.gateway.SendWhatsAppTemplate(ctx, req.Provider, providers.TemplateMessage{
			From:         req.From,
			To:           req.To,
			TemplateName: tmpl.ExternalName,
			Language:     tmpl.Language,
			Variables:    templating.OrderedValues(declared, req.Values),
		})
	case tmpl.Channel == models.ChannelWhatsApp:
		res = d.gateway.SendWhatsApp(ctx, req.Provider, providers.OutboundMessage{From: req.From, To: req.To, Body: body})
	default:
		res = d.gateway.SendSMS(ctx, req.Provider, providers.OutboundMessage{From: req.From, To: req.To, Body: body})
	}

	templateID := tmpl.ID
	message := &models.Message{
		OwnerID:           req.OwnerID,
		LocationID:        req.LocationID,
		TemplateID:        &templateID,
		Direction:         models.DirectionOutbound,
		Channel:           tmpl.Channel,
		FromNumber:        req.From,
		ToNumber:          req.To,
		Body:              body,
		Status:            models.MessageStatusSent,
		Provider:          res.Provider,
		ProviderMessageID: res.MessageID,
	}
	if !res.Success {
		message.Status = models.MessageStatusFailed
		message.Error = res.Error
	}

	// History writes outlive request cancellation.
	storeCtx := context.WithoutCancel(ctx)

	if err := d.messages.Create(storeCtx, message); err != nil {
		return nil, res, fmt.Errorf("failed to record message: %w", err)
	}

	if !res.Success {
		return message, res, nil
	}

	completion := &models.TemplateCompletion{
		TemplateID:      tmpl.ID,
		OwnerID:         req.OwnerID,
		LocationID:      req.LocationID,
		RecipientNumber: req.To,
		Variables:       toJSONMap(req.Values),
		SentAt:          d.now().UTC(),
		MessageID:       res.MessageID,
	}
	// A delivered send stays successful when its completion row is lost.
	if err := d.completions.Create(storeCtx, completion); err != nil {
		log.Error().
			Err(err).
			Str("template_id", tmpl.ID.String()).
			Str("message_id", message.ID.String()).
			Msg("failed to record template completion")
	}

	log.Info().
		Str("template_id", tmpl.ID.String()).
		Str("channel", tmpl.Channel).
		Str("provider", res.Provider).
		Msg("template sent")
	return message, res, nil
}

// callVariables are the values a missed call offers to templates.
func callVariables(location *models.Location, callerNumber, virtualNumber string, at time.Time) map[string]string {
	values := map[string]string{
		"caller_number":  callerNumber,
		"virtual_number": virtualNumber,
	}
	if location != nil {
		values["business_name"] = location.Name
		values["location_name"] = location.Name
		values["location_address"] = location.Address
	}
	values["timestamp"] = at.In(location.Clock()).Format(TimestampLayout)
	return values
}

func toJSONMap(values map[string]string) datatypes.JSONMap {
	m := make(datatypes.JSONMap, len(values))
	for k, v := range values {
		m[k] = v
	}
	return m
}
