package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/metrics"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/repositories"
)

// Actions reported in FlowResult.ActionsTriggered.
const (
	ActionTemplateSent         = "template-sent"
	ActionTemplateSectionShown = "template-section-shown"
	ActionChatbotRouted        = "chatbot-routed"
	ActionChatbotSectionShown  = "chatbot-section-shown"
)

const (
	branchTemplates = "templates"
	branchChatbot   = "chatbot"
)

// FlowGateway is everything the orchestrator asks of the provider registry.
type FlowGateway interface {
	MessagingGateway
	ChatbotGateway
}

// MissedCallEvent is a call event as delivered by the telephony webhook.
type MissedCallEvent struct {
	CallID        string    `json:"call_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	LocationID    uuid.UUID `json:"location_id"`
	VirtualNumber string    `json:"virtual_number"`
	CallerNumber  string    `json:"caller_number"`
	CallType      string    `json:"call_type"`
	Timestamp     time.Time `json:"timestamp"`
	Duration      *int      `json:"duration,omitempty"`
}

type FlowResult struct {
	Success          bool     `json:"success"`
	ActionsTriggered []string `json:"actions_triggered"`
	Errors           []string `json:"errors"`
}

// MissedCallData drives the missed-call-to-WhatsApp path.
type MissedCallData struct {
	OwnerID      uuid.UUID `json:"owner_id"`
	LocationID   uuid.UUID `json:"location_id"`
	CallerNumber string    `json:"caller_number"`
	Timestamp    time.Time `json:"timestamp"`
	Provider     string    `json:"provider,omitempty"`
}

type WhatsAppResult struct {
	Success           bool      `json:"success"`
	MessageID         uuid.UUID `json:"message_id,omitempty"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	Error             string    `json:"error,omitempty"`
}

type PreferenceRequest struct {
	PreferredFlow         string     `json:"preferred_flow"`
	AutoActivateTemplates bool       `json:"auto_activate_templates"`
	AutoActivateChatbot   bool       `json:"auto_activate_chatbot"`
	DefaultTemplateID     *uuid.UUID `json:"default_template_id,omitempty"`
	DefaultChatbotID      *string    `json:"default_chatbot_id,omitempty"`
}

type FlowDeps struct {
	Preferences  repositories.PreferenceRepo
	CallEvents   repositories.CallEventRepo
	Templates    repositories.TemplateRepo
	Locations    repositories.LocationRepo
	PhoneNumbers repositories.PhoneNumberRepo
	Messages     repositories.MessageRepo
	Completions  repositories.CompletionRepo
	Gateway      FlowGateway
}

// FlowService decides what happens after a call event and drives the
// templates and chatbot branches through the provider registry.
type FlowService struct {
	preferences  repositories.PreferenceRepo
	events       repositories.CallEventRepo
	templates    repositories.TemplateRepo
	locations    repositories.LocationRepo
	phoneNumbers repositories.PhoneNumberRepo
	messages     repositories.MessageRepo
	gateway      FlowGateway
	dispatcher   *templateDispatcher
	now          func() time.Time
}

func NewFlowService(deps FlowDeps) *FlowService {
	return &FlowService{
		preferences:  deps.Preferences,
		events:       deps.CallEvents,
		templates:    deps.Templates,
		locations:    deps.Locations,
		phoneNumbers: deps.PhoneNumbers,
		messages:     deps.Messages,
		gateway:      deps.Gateway,
		dispatcher:   newTemplateDispatcher(deps.Gateway, deps.Messages, deps.Completions),
		now:          time.Now,
	}
}

type branchOutcome struct {
	action string
	err    string
}

func (b *branchOutcome) failure() error {
	if b.err == "" {
		return nil
	}
	return errors.New(b.err)
}

// HandleMissedCall records the event and runs the branches selected by the
// owner's preferences. Both branches finish before it returns. Branch
// failures land in FlowResult.Errors; the returned error is reserved for
// input, duplicate and storage problems that stop processing up front.
func (s *FlowService) HandleMissedCall(ctx context.Context, event MissedCallEvent) (*FlowResult, error) {
	if err := s.validateEvent(&event); err != nil {
		return nil, err
	}

	location, err := s.ownedLocation(ctx, event.OwnerID, event.LocationID)
	if err != nil {
		return nil, err
	}

	record := &models.CallEvent{
		CallID:        event.CallID,
		OwnerID:       event.OwnerID,
		LocationID:    event.LocationID,
		VirtualNumber: event.VirtualNumber,
		CallerNumber:  event.CallerNumber,
		CallType:      event.CallType,
		Timestamp:     event.Timestamp,
		Duration:      event.Duration,
	}
	if err := s.events.Append(ctx, record); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrCallAlreadyRecorded, event.CallID)
		}
		return nil, fmt.Errorf("failed to record call event: %w", err)
	}

	pref, err := s.preferences.GetOrCreate(ctx, event.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow preferences: %w", err)
	}

	var templates, chatbot *branchOutcome
	var g errgroup.Group
	if pref.RunsTemplates() {
		templates = &branchOutcome{}
		g.Go(func() error {
			*templates = s.runTemplates(ctx, pref, location, event)
			return templates.failure()
		})
	}
	if pref.RunsChatbot() {
		chatbot = &branchOutcome{}
		g.Go(func() error {
			*chatbot = s.runChatbot(ctx, pref, event)
			return chatbot.failure()
		})
	}
	// Branches never cancel each other; Wait reports the first failure and
	// the per-branch outcomes carry the rest.
	if err := g.Wait(); err != nil {
		log.Debug().Err(err).Str("call_id", event.CallID).Msg("missed call branch failed")
	}

	result := &FlowResult{ActionsTriggered: []string{}, Errors: []string{}}
	for _, b := range []struct {
		name    string
		outcome *branchOutcome
	}{{branchTemplates, templates}, {branchChatbot, chatbot}} {
		if b.outcome == nil {
			continue
		}
		if b.outcome.err != "" {
			result.Errors = append(result.Errors, b.outcome.err)
			metrics.FlowErrors.WithLabelValues(b.name).Inc()
			continue
		}
		result.ActionsTriggered = append(result.ActionsTriggered, b.outcome.action)
		metrics.FlowActions.WithLabelValues(b.outcome.action).Inc()
	}
	result.Success = len(result.Errors) == 0

	log.Info().
		Str("call_id", event.CallID).
		Str("owner_id", event.OwnerID.String()).
		Str("preferred_flow", pref.PreferredFlow).
		Strs("actions", result.ActionsTriggered).
		Strs("errors", result.Errors).
		Msg("missed call handled")
	return result, nil
}

func (s *FlowService) runTemplates(ctx context.Context, pref *models.FlowPreference, location *models.Location, event MissedCallEvent) branchOutcome {
	if !pref.AutoActivateTemplates || pref.DefaultTemplateID == nil {
		return branchOutcome{action: ActionTemplateSectionShown}
	}

	fail := func(msg string) branchOutcome {
		log.Warn().Str("call_id", event.CallID).Str("branch", branchTemplates).Msg(msg)
		return branchOutcome{err: "template: " + msg}
	}

	tmpl, err := s.templates.FindByID(ctx, *pref.DefaultTemplateID)
	if err != nil || tmpl.OwnerID != event.OwnerID {
		if err == nil || errors.Is(err, repositories.ErrNotFound) {
			return fail(ErrTemplateNotFound.Error())
		}
		return fail(err.Error())
	}

	locationID := location.ID
	_, res, err := s.dispatcher.dispatch(ctx, dispatchRequest{
		Template:   tmpl,
		OwnerID:    event.OwnerID,
		LocationID: &locationID,
		From:       event.VirtualNumber,
		To:         event.CallerNumber,
		Values:     callVariables(location, event.CallerNumber, event.VirtualNumber, event.Timestamp),
	})
	if err != nil {
		return fail(err.Error())
	}
	if !res.Success {
		return fail(res.Error)
	}
	return branchOutcome{action: ActionTemplateSent}
}

func (s *FlowService) runChatbot(ctx context.Context, pref *models.FlowPreference, event MissedCallEvent) branchOutcome {
	if !pref.AutoActivateChatbot || pref.DefaultChatbotID == nil || *pref.DefaultChatbotID == "" {
		return branchOutcome{action: ActionChatbotSectionShown}
	}

	res := s.gateway.RouteToBot(ctx, "", providers.RouteRequest{
		BotID:          *pref.DefaultChatbotID,
		OwnerID:        event.OwnerID.String(),
		Contact:        event.CallerNumber,
		From:           event.VirtualNumber,
		InitialMessage: fmt.Sprintf("Missed call from %s", event.CallerNumber),
	})
	if !res.Success {
		log.Warn().Str("call_id", event.CallID).Str("branch", branchChatbot).Str("error", res.Error).Msg("chatbot routing failed")
		return branchOutcome{err: "chatbot: " + res.Error}
	}

	log.Info().Str("call_id", event.CallID).Str("session_id", res.SessionID).Msg("caller routed to chatbot")
	return branchOutcome{action: ActionChatbotRouted}
}

// HandleMissedCallWithWhatsApp sends the location's missed-call WhatsApp
// template from its WhatsApp number. The attempt is persisted as a Message
// whether or not the provider accepted it; a failed send is reported in
// the result, not as an error. No retry is attempted.
func (s *FlowService) HandleMissedCallWithWhatsApp(ctx context.Context, data MissedCallData) (*WhatsAppResult, error) {
	if data.OwnerID == uuid.Nil || data.LocationID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner_id and location_id are required", ErrInvalidInput)
	}
	if strings.TrimSpace(data.CallerNumber) == "" {
		return nil, fmt.Errorf("%w: caller_number is required", ErrInvalidInput)
	}
	if data.Timestamp.IsZero() {
		data.Timestamp = s.now()
	}

	location, err := s.ownedLocation(ctx, data.OwnerID, data.LocationID)
	if err != nil {
		return nil, err
	}

	number, err := s.phoneNumbers.FindWhatsAppNumberForLocation(ctx, location.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNoWhatsAppNumber
	}
	if err != nil {
		return nil, err
	}

	tmpl, err := s.templates.FindForLocation(ctx, location.ID, models.ChannelWhatsApp, models.PurposeMissedCall)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNoTemplateConfigured
	}
	if err != nil {
		return nil, err
	}

	locationID := location.ID
	message, res, err := s.dispatcher.dispatch(ctx, dispatchRequest{
		Template:   tmpl,
		OwnerID:    data.OwnerID,
		LocationID: &locationID,
		From:       number.Number,
		To:         data.CallerNumber,
		Values:     callVariables(location, data.CallerNumber, number.Number, data.Timestamp),
		Provider:   data.Provider,
	})
	if err != nil {
		return nil, err
	}

	return &WhatsAppResult{
		Success:           res.Success,
		MessageID:         message.ID,
		ProviderMessageID: res.MessageID,
		Error:             res.Error,
	}, nil
}

// GetPreferences returns the owner's preferences, creating the defaults on
// first access.
func (s *FlowService) GetPreferences(ctx context.Context, ownerID uuid.UUID) (*models.FlowPreference, error) {
	return s.preferences.GetOrCreate(ctx, ownerID)
}

func (s *FlowService) UpdatePreferences(ctx context.Context, ownerID uuid.UUID, req PreferenceRequest) (*models.FlowPreference, error) {
	flow := strings.ToLower(strings.TrimSpace(req.PreferredFlow))
	if !models.ValidFlow(flow) {
		return nil, fmt.Errorf("%w: unknown preferred_flow %q", ErrInvalidInput, req.PreferredFlow)
	}

	if req.DefaultTemplateID != nil {
		tmpl, err := s.templates.FindByID(ctx, *req.DefaultTemplateID)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && tmpl.OwnerID != ownerID) {
			return nil, ErrTemplateNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	pref, err := s.preferences.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	pref.PreferredFlow = flow
	pref.AutoActivateTemplates = req.AutoActivateTemplates
	pref.AutoActivateChatbot = req.AutoActivateChatbot
	pref.DefaultTemplateID = req.DefaultTemplateID
	pref.DefaultChatbotID = req.DefaultChatbotID
	if err := s.preferences.Save(ctx, pref); err != nil {
		return nil, fmt.Errorf("failed to save flow preferences: %w", err)
	}
	return pref, nil
}

func (s *FlowService) CallEvents(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.CallEvent, error) {
	return s.events.FindByOwner(ctx, ownerID, limit)
}

func (s *FlowService) Messages(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.Message, error) {
	return s.messages.FindByOwner(ctx, ownerID, limit)
}

// ownedLocation loads a location, hiding other owners' locations behind
// ErrLocationNotFound.
func (s *FlowService) ownedLocation(ctx context.Context, ownerID, locationID uuid.UUID) (*models.Location, error) {
	location, err := s.locations.FindByID(ctx, locationID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && location.OwnerID != ownerID) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load location: %w", err)
	}
	return location, nil
}

func (s *FlowService) validateEvent(event *MissedCallEvent) error {
	event.CallID = strings.TrimSpace(event.CallID)
	event.CallerNumber = strings.TrimSpace(event.CallerNumber)

	switch {
	case event.CallID == "":
		return fmt.Errorf("%w: call_id is required", ErrInvalidInput)
	case event.OwnerID == uuid.Nil || event.LocationID == uuid.Nil:
		return fmt.Errorf("%w: owner_id and location_id are required", ErrInvalidInput)
	case event.CallerNumber == "":
		return fmt.Errorf("%w: caller_number is required", ErrInvalidInput)
	}

	if event.CallType == "" {
		event.CallType = models.CallTypeMissed
	}
	if event.CallType != models.CallTypeMissed {
		return fmt.Errorf("%w: call_type %q is not a missed call", ErrInvalidInput, event.CallType)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	return nil
}
