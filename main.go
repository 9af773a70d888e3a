package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"proplead/cache"
	"proplead/config"
	"proplead/events"
	"proplead/middleware"
	"proplead/routes"
	"proplead/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "ROLLUP: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Catalog cache and the event source collaborator
	catalog := cache.NewCatalog(config.AppConfig.Redis)
	source := events.NewHTTPSource(config.AppConfig.EventSource)

	// Initialize and start the rollup worker
	rollupWorker := worker.NewRollupWorker(
		worker.NewGormRollupStore(config.DB),
		source,
		logger,
		config.AppConfig.RollupInterval,
		config.AppConfig.RollupListingTimeout,
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rollupWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, rollupWorker, catalog)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
