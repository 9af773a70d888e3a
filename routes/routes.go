package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	"proplead/cache"
	controller "proplead/controllers"
	"proplead/middleware"
	"proplead/worker"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, rollup *worker.RollupWorker, catalog cache.CatalogCache) {
	// Initialize controllers with their respective loggers
	leadController := controller.NewLeadController(db, log.New(os.Stdout, "LEAD: ", log.LstdFlags))
	analyticsController := controller.NewAnalyticsController(db, log.New(os.Stdout, "ANALYTICS: ", log.LstdFlags), catalog, rollup)
	salesController := controller.NewSalesController(db, log.New(os.Stdout, "SALES: ", log.LstdFlags))
	reminderController := controller.NewReminderController(db, log.New(os.Stdout, "REMINDER: ", log.LstdFlags))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Action recording is open to anonymous visitors: OptionalAuth resolves
	// either the authenticated user or the client-held anonymous identity.
	actions := app.Group("/api/v1/leads/actions", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}), middleware.OptionalAuth(), middleware.ActionRateLimiter())
	actions.Post("/", leadController.RecordAction)

	// Lister-facing API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Lead routes
	lead := api.Group("/leads")
	lead.Get("/", leadController.GetLeads)
	lead.Get("/by-channel", leadController.GetLeadsByChannel)
	lead.Get("/by-context", leadController.GetLeadsByContext)
	lead.Get("/:id", leadController.GetLead)
	lead.Patch("/:id/status", leadController.UpdateLeadStatus)
	lead.Patch("/:id/notes", leadController.UpdateLeadNotes)

	// Analytics routes
	analytics := api.Group("/analytics")
	analytics.Get("/listings/:id", analyticsController.GetListingAnalytics)
	analytics.Get("/sales", salesController.GetSalesTimeSeries)

	// Reminder routes
	reminder := api.Group("/reminders")
	reminder.Post("/", reminderController.CreateReminder)
	reminder.Get("/", reminderController.GetReminders)
	reminder.Patch("/:id", reminderController.UpdateReminder)

	// Rollup trigger for schedulers, protected by a shared secret header
	// inside the handler rather than a user credential.
	app.Post("/internal/rollup/run", analyticsController.TriggerRollup)

	log.Println("API routes initialized successfully")
}
