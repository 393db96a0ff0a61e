package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/nathanntongai/plantmaint-backend/internal/handlers"
	"github.com/nathanntongai/plantmaint-backend/internal/middleware"
	"github.com/nathanntongai/plantmaint-backend/internal/services"
	"github.com/nathanntongai/plantmaint-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, authService *services.AuthService) {
	whatsappHandler := handlers.NewWhatsAppHandler(store)
	authHandler := handlers.NewAuthHandler(authService)
	machineHandler := handlers.NewMachineHandler(store)
	breakdownHandler := handlers.NewBreakdownHandler(store)
	maintenanceHandler := handlers.NewMaintenanceHandler(store)

	app.Get("/health", handlers.HealthCheck)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// WhatsApp webhook - signature validation is skipped in development
	// so the flow can be exercised through ngrok
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		webhooks.Post("/whatsapp", whatsappHandler.HandleWebhook)
	} else {
		webhooks.Post("/whatsapp", middleware.ValidateTwilioSignature(), whatsappHandler.HandleWebhook)
	}

	// Test WhatsApp endpoint (for development)
	app.Post("/test/whatsapp", whatsappHandler.HandleTestWebhook)

	// ========== API ROUTES ==========
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.RegisterCompany)
	auth.Post("/login", authHandler.Login)

	// Everything below requires a dashboard token
	protected := api.Group("", middleware.RequireAuth(authService))

	protected.Post("/users", authHandler.CreateUser)

	machines := protected.Group("/machines")
	machines.Get("/", machineHandler.ListMachines)
	machines.Post("/", machineHandler.CreateMachine)
	machines.Get("/:id", machineHandler.GetMachine)
	machines.Put("/:id", machineHandler.UpdateMachine)
	machines.Delete("/:id", machineHandler.DeleteMachine)

	breakdowns := protected.Group("/breakdowns")
	breakdowns.Get("/", breakdownHandler.ListBreakdowns)
	breakdowns.Get("/:id", breakdownHandler.GetBreakdown)
	breakdowns.Put("/:id/status", breakdownHandler.UpdateBreakdownStatus)

	maintenance := protected.Group("/maintenance")
	maintenance.Get("/", maintenanceHandler.ListTasks)
	maintenance.Post("/", maintenanceHandler.CreateTask)
	maintenance.Post("/:id/complete", maintenanceHandler.CompleteTask)
}
