package handlers

import "github.com/gofiber/fiber/v2"

// Handlers groups every handler mounted by RegisterRoutes.
type Handlers struct {
	Credits   *CreditHandler
	Locations *LocationHandler
	Templates *TemplateHandler
	Flows     *FlowHandler
	Providers *ProviderHandler
	Audit     *AuditHandler
	WhatsApp  *WhatsAppHandler
}

func RegisterRoutes(app fiber.Router, h Handlers) {
	// Health check
	app.Get("/health", h.Providers.GetHealth)

	// Credits
	app.Get("/credits", h.Credits.GetCredits)
	app.Post("/credits/purchases", h.Credits.RecordPurchase)

	// Locations and virtual numbers
	app.Post("/locations", h.Locations.CreateLocation)
	app.Get("/locations", h.Locations.ListLocations)
	app.Post("/locations/:id/virtual-number", h.Locations.AssignVirtualNumber)
	app.Delete("/phone-numbers/:id", h.Locations.ReleaseVirtualNumber)

	// Templates
	app.Post("/templates/validate", h.Templates.ValidateTemplate)
	app.Post("/templates", h.Templates.CreateTemplate)
	app.Get("/templates", h.Templates.ListTemplates)
	app.Get("/templates/:id", h.Templates.GetTemplate)
	app.Put("/templates/:id", h.Templates.UpdateTemplate)
	app.Post("/templates/:id/complete", h.Templates.CompleteTemplate)

	// Flow
	app.Get("/flow-preferences", h.Flows.GetPreferences)
	app.Put("/flow-preferences", h.Flows.UpdatePreferences)
	app.Post("/calls/missed", h.Flows.HandleMissedCall)
	app.Post("/calls/missed/whatsapp", h.Flows.HandleMissedCallWithWhatsApp)
	app.Get("/call-events", h.Flows.ListCallEvents)
	app.Get("/messages", h.Flows.ListMessages)

	// Provider administration
	app.Get("/providers", h.Providers.ListProviders)
	app.Put("/providers/defaults/:capability", h.Providers.SetDefault)

	app.Get("/audit-logs", h.Audit.GetAuditLogs)

	// WhatsApp pairing
	app.Get("/whatsapp/qr", h.WhatsApp.GetQRCode)
}
