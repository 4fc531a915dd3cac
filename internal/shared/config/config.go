package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string
	LogLevel    string

	// Provider registry
	ProviderTimeout              time.Duration
	ProviderHealthSchedule       string
	DefaultMessagingProvider     string
	DefaultVirtualNumberProvider string
	DefaultChatbotProvider       string

	// Twilio
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Vonage
	VonageAPIKey     string
	VonageAPISecret  string
	VonageFromNumber string

	// WhatsApp
	WhatsAppProvider         string
	WhatsAppCloudPhoneID     string
	WhatsAppCloudAccessToken string
	WhatsAppStoreURL         string

	// LLM chatbot
	LLMProvider string
	LLMModel    string
	OpenAIKey   string
	GroqKey     string
	DeepSeekKey string

	// Hosted chatbot platform
	ChatbotWebhookURL   string
	ChatbotWebhookToken string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        os.Getenv("PORT"),
		Env:         os.Getenv("ENV"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ProviderHealthSchedule:       os.Getenv("PROVIDER_HEALTH_SCHEDULE"),
		DefaultMessagingProvider:     os.Getenv("DEFAULT_MESSAGING_PROVIDER"),
		DefaultVirtualNumberProvider: os.Getenv("DEFAULT_VIRTUAL_NUMBER_PROVIDER"),
		DefaultChatbotProvider:       os.Getenv("DEFAULT_CHATBOT_PROVIDER"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),

		VonageAPIKey:     os.Getenv("VONAGE_API_KEY"),
		VonageAPISecret:  os.Getenv("VONAGE_API_SECRET"),
		VonageFromNumber: os.Getenv("VONAGE_FROM_NUMBER"),

		WhatsAppProvider:         os.Getenv("WHATSAPP_PROVIDER"),
		WhatsAppCloudPhoneID:     os.Getenv("WHATSAPP_CLOUD_PHONE_ID"),
		WhatsAppCloudAccessToken: os.Getenv("WHATSAPP_CLOUD_ACCESS_TOKEN"),
		WhatsAppStoreURL:         os.Getenv("WHATSAPP_STORE_URL"),

		LLMProvider: os.Getenv("LLM_PROVIDER"),
		LLMModel:    os.Getenv("LLM_MODEL"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		GroqKey:     os.Getenv("GROQ_API_KEY"),
		DeepSeekKey: os.Getenv("DEEPSEEK_API_KEY"),

		ChatbotWebhookURL:   os.Getenv("CHATBOT_WEBHOOK_URL"),
		ChatbotWebhookToken: os.Getenv("CHATBOT_WEBHOOK_TOKEN"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.ProviderTimeout = 10 * time.Second
	if raw := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.ProviderTimeout = time.Duration(secs) * time.Second
		} else {
			log.Warn().Str("value", raw).Msg("invalid PROVIDER_TIMEOUT_SECONDS, using 10s")
		}
	}
	if cfg.ProviderHealthSchedule == "" {
		cfg.ProviderHealthSchedule = "@every 1m"
	}
	if cfg.DefaultMessagingProvider == "" {
		cfg.DefaultMessagingProvider = "twilio"
	}
	if cfg.DefaultVirtualNumberProvider == "" {
		cfg.DefaultVirtualNumberProvider = "twilio"
	}
	if cfg.DefaultChatbotProvider == "" {
		cfg.DefaultChatbotProvider = "llm"
	}
	if cfg.WhatsAppStoreURL == "" {
		// Default to main database if not specified
		cfg.WhatsAppStoreURL = cfg.DatabaseURL
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "openai"
	}

	return cfg
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
