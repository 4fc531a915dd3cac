package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
)

// MessagingGateway is the messaging half of the provider registry.
type MessagingGateway interface {
	SendSMS(ctx context.Context, providerName string, msg providers.OutboundMessage) providers.Result
	SendWhatsApp(ctx context.Context, providerName string, msg providers.OutboundMessage) providers.Result
	SendWhatsAppTemplate(ctx context.Context, providerName string, msg providers.TemplateMessage) providers.Result
}

// ChatbotGateway routes contacts to chatbot providers.
type ChatbotGateway interface {
	RouteToBot(ctx context.Context, providerName string, req providers.RouteRequest) providers.Result
	DisconnectBot(ctx context.Context, providerName, sessionID string) providers.Result
}

// NumberGateway issues and releases virtual numbers.
type NumberGateway interface {
	GenerateVirtualNumber(ctx context.Context, providerName, countryCode string) providers.Result
	ReleaseVirtualNumber(ctx context.Context, providerName, number string) providers.Result
}

// AuditRecorder is satisfied by *audit.Service.
type AuditRecorder interface {
	LogChange(ctx context.Context, ownerID uuid.UUID, action, entity, entityID string, oldValue, newValue interface{}) error
}
