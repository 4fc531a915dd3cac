package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/chatbot"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/llm"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/twilio"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/vonage"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/whatsapp"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/handlers"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/shared/config"
)

const keepAliveInterval = 60 * time.Second

type wiredProviders struct {
	// pairing stays a nil interface unless whatsmeow is configured.
	pairing handlers.QRGenerator
	closers []func()
}

func (w *wiredProviders) close() {
	for _, fn := range w.closers {
		fn()
	}
}

// registerProviders registers every provider whose credentials are present.
// A provider that fails to initialise is logged and skipped.
func registerProviders(ctx context.Context, cfg *config.Config, registry *providers.Registry) *wiredProviders {
	wired := &wiredProviders{}

	register := func(p providers.Provider) {
		if err := registry.Register(p); err != nil {
			log.Error().Err(err).Str("provider", p.Name()).Msg("❌ Failed to register provider")
		}
	}

	if cfg.TwilioAccountSID != "" {
		client, err := twilio.NewClient(twilio.Config{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFromNumber,
		})
		if err != nil {
			log.Error().Err(err).Msg("❌ Twilio disabled")
		} else {
			register(client)
		}
	}

	if cfg.VonageAPIKey != "" {
		client, err := vonage.NewClient(vonage.Config{
			APIKey:     cfg.VonageAPIKey,
			APISecret:  cfg.VonageAPISecret,
			FromNumber: cfg.VonageFromNumber,
		})
		if err != nil {
			log.Error().Err(err).Msg("❌ Vonage disabled")
		} else {
			register(client)
		}
	}

	if cfg.WhatsAppProvider != "" {
		registerWhatsApp(ctx, cfg, wired, register)
	}

	if bot := newLLMBot(cfg, registry); bot != nil {
		register(bot)
	}

	if cfg.ChatbotWebhookURL != "" {
		register(chatbot.NewWebhookBot(cfg.ChatbotWebhookURL, cfg.ChatbotWebhookToken))
	}

	for _, d := range registry.Descriptors() {
		log.Info().Str("provider", d.Name).Interface("capabilities", d.Capabilities).Msg("📡 Provider ready")
	}
	return wired
}

func registerWhatsApp(ctx context.Context, cfg *config.Config, wired *wiredProviders, register func(providers.Provider)) {
	provider, err := whatsapp.NewProvider(whatsapp.ProviderConfig{
		Type: whatsapp.ProviderType(cfg.WhatsAppProvider),
		CloudAPI: whatsapp.CloudAPIConfig{
			PhoneID:     cfg.WhatsAppCloudPhoneID,
			AccessToken: cfg.WhatsAppCloudAccessToken,
		},
		StoreURL: cfg.WhatsAppStoreURL,
	})
	if err != nil {
		log.Error().Err(err).Str("type", cfg.WhatsAppProvider).Msg("❌ WhatsApp provider disabled")
		return
	}

	if device, ok := provider.(*whatsapp.WhatsmeowProvider); ok {
		if err := device.Connect(ctx); err != nil {
			log.Error().Err(err).Msg("❌ whatsmeow connect failed")
		}
		go device.StartKeepAlive(ctx, keepAliveInterval)
		wired.pairing = device
		wired.closers = append(wired.closers, device.Disconnect)
	}

	log.Info().Str("provider", provider.Name()).Msg("📱 WhatsApp provider configured")
	register(provider)
}

// newLLMBot builds the llm chatbot. Its opening reply goes out over the
// registry's default messaging provider as WhatsApp text.
func newLLMBot(cfg *config.Config, registry *providers.Registry) *chatbot.LLMBot {
	keys := map[llm.ProviderType]string{
		llm.ProviderOpenAI:   cfg.OpenAIKey,
		llm.ProviderGroq:     cfg.GroqKey,
		llm.ProviderDeepSeek: cfg.DeepSeekKey,
	}

	providerType := llm.ProviderType(cfg.LLMProvider)
	if keys[providerType] == "" {
		log.Warn().Str("llm", cfg.LLMProvider).Msg("⚠️ LLM chatbot disabled: no API key")
		return nil
	}

	model, err := llm.NewProvider(&llm.ProviderConfig{
		Type:   providerType,
		APIKey: keys[providerType],
		Model:  cfg.LLMModel,
	})
	if err != nil {
		log.Error().Err(err).Msg("❌ LLM chatbot disabled")
		return nil
	}
	log.Info().Str("llm", model.GetProviderName()).Msg("🤖 LLM chatbot configured")

	deliver := func(ctx context.Context, from, to, body string) error {
		return registry.SendWhatsApp(ctx, "", providers.OutboundMessage{From: from, To: to, Body: body}).Err()
	}
	return chatbot.NewLLMBot(model, deliver, "")
}

// applyDefaults points each capability at its configured provider. When that
// provider is not registered the first registered one with the capability
// is used instead.
func applyDefaults(cfg *config.Config, registry *providers.Registry) {
	for capability, name := range map[providers.Capability]string{
		providers.CapabilityMessaging:      cfg.DefaultMessagingProvider,
		providers.CapabilityVirtualNumbers: cfg.DefaultVirtualNumberProvider,
		providers.CapabilityChatbot:        cfg.DefaultChatbotProvider,
	} {
		err := registry.SetDefault(capability, name)
		if err == nil {
			continue
		}
		for _, d := range registry.Descriptors() {
			if d.Supports(capability) && registry.SetDefault(capability, d.Name) == nil {
				log.Warn().Str("capability", string(capability)).Str("configured", name).Str("using", d.Name).
					Msg("⚠️ Configured default provider missing")
				err = nil
				break
			}
		}
		if err != nil {
			log.Warn().Err(err).Str("capability", string(capability)).Msg("⚠️ No provider for capability")
		}
	}
}
