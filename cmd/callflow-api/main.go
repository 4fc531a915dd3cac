package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/credit"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/providers"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/handlers"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/models"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/repositories"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/modules/callflow/services"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/shared/database"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/shared/utils"

	_ "github.com/MuhamadAgungGumelar/callflow-be/cmd/callflow-api/docs"
)

// @title Callflow API
// @version 1.0
// @description Missed-call automation: credits, locations, templates, providers and flow orchestration
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel, cfg.Env)
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("🚀 Starting callflow-api")

	db, err := database.NewDB(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect to database")
	}
	defer db.Close()

	if !cfg.IsProduction() {
		// Production schemas come from cmd/migrate.
		all := append(models.All(), &credit.Entry{}, &credit.Purchase{}, &audit.AuditLog{})
		if err := db.GORM.AutoMigrate(all...); err != nil {
			log.Fatal().Err(err).Msg("❌ Auto-migration failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Provider registry
	registry := providers.NewRegistry(cfg.ProviderTimeout)
	wired := registerProviders(ctx, cfg, registry)
	defer wired.close()
	applyDefaults(cfg, registry)

	monitor := providers.NewHealthMonitor(registry, cfg.ProviderHealthSchedule)
	if err := monitor.Start(); err != nil {
		log.Warn().Err(err).Str("schedule", cfg.ProviderHealthSchedule).Msg("⚠️ Provider health monitor disabled")
	}
	defer monitor.Stop()

	// Repositories
	locationRepo := repositories.NewLocationRepo(db.GORM)
	templateRepo := repositories.NewTemplateRepo(db.GORM)
	messageRepo := repositories.NewMessageRepo(db.GORM)
	completionRepo := repositories.NewCompletionRepo(db.GORM)
	phoneNumberRepo := repositories.NewPhoneNumberRepo(db.GORM)

	// Services
	ledger := credit.NewLedger(db.GORM)
	auditService := audit.NewService(db.GORM)
	creditService := services.NewCreditService(ledger, auditService)
	provisioningService := services.NewProvisioningService(ledger, locationRepo, auditService)
	phoneNumberService := services.NewPhoneNumberService(phoneNumberRepo, locationRepo, registry, auditService)
	templateService := services.NewTemplateService(templateRepo, locationRepo, messageRepo, completionRepo, registry)
	flowService := services.NewFlowService(services.FlowDeps{
		Preferences:  repositories.NewPreferenceRepo(db.GORM),
		CallEvents:   repositories.NewCallEventRepo(db.GORM),
		Templates:    templateRepo,
		Locations:    locationRepo,
		PhoneNumbers: phoneNumberRepo,
		Messages:     messageRepo,
		Completions:  completionRepo,
		Gateway:      registry,
	})

	app := fiber.New(fiber.Config{
		AppName: "Callflow API",
	})

	// Middleware
	app.Use(cors.New())

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, handlers.Handlers{
		Credits:   handlers.NewCreditHandler(creditService),
		Locations: handlers.NewLocationHandler(provisioningService, phoneNumberService),
		Templates: handlers.NewTemplateHandler(templateService),
		Flows:     handlers.NewFlowHandler(flowService),
		Providers: handlers.NewProviderHandler(registry),
		Audit:     handlers.NewAuditHandler(auditService),
		WhatsApp:  handlers.NewWhatsAppHandler(wired.pairing),
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("🛑 Shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Msgf("✅ callflow-api running at :%s", cfg.Port)
	log.Info().Msgf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
	log.Info().Msgf("📈 Metrics: http://localhost:%s/metrics", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("❌ Server stopped")
	}
}
