package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"leadpilot/config"
	"leadpilot/middleware"
	"leadpilot/routes"
	"leadpilot/utils"
	"leadpilot/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "MAIN: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Sentry if a DSN is configured
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Initialize shared clients
	aiClient := utils.NewAIClient(config.AppConfig.AI)
	storageClient := utils.NewStorageClient(config.AppConfig.Storage)
	mailer := utils.NewMailer(config.AppConfig.SMTP, storageClient, log.New(os.Stdout, "MAILER: ", log.LstdFlags))

	// Initialize and start the background reply sync worker
	syncWorker := worker.NewSyncWorker(config.DB, aiClient, config.AppConfig.SyncInterval, log.New(os.Stdout, "WORKER: ", log.LstdFlags))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncWorker.Start(ctx)

	// Setup routes
	routes.SetupRoutes(app, config.DB, routes.Deps{
		AI:      aiClient,
		Mailer:  mailer,
		Storage: storageClient,
	})

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
