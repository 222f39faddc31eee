package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "leadpilot/controllers"
	"leadpilot/middleware"
	"leadpilot/utils"
)

// Deps carries the shared clients controllers are built from
type Deps struct {
	AI      *utils.AIClient
	Mailer  *utils.Mailer
	Storage *utils.StorageClient
}

func SetupRoutes(app *fiber.App, db *gorm.DB, deps Deps) {
	// Initialize controllers with their respective loggers
	leadController := controller.NewLeadController(db, log.New(os.Stdout, "LEAD: ", log.LstdFlags))
	emailController := controller.NewEmailController(db, deps.Mailer, log.New(os.Stdout, "EMAIL: ", log.LstdFlags))
	syncController := controller.NewSyncController(db, deps.AI, log.New(os.Stdout, "SYNC: ", log.LstdFlags))
	replyController := controller.NewReplyController(db, deps.AI, deps.Mailer, deps.Storage, log.New(os.Stdout, "REPLY: ", log.LstdFlags))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Lead routes
	lead := api.Group("/leads")
	lead.Post("/", leadController.CreateLead)
	lead.Get("/", leadController.GetLeads)
	lead.Get("/:id", leadController.GetLead)
	lead.Delete("/:id", leadController.DeleteLead)

	// Email routes
	email := api.Group("/emails")
	email.Post("/send", emailController.SendEmail)
	email.Get("/outbound", emailController.GetOutboundEmails)

	// Sync routes, rate limited since each scan re-reads the inbox window
	sync := api.Group("/sync", middleware.SyncRateLimiter())
	sync.Post("/replies", syncController.SyncReplies)

	// Reply routes; generation endpoints share the sync rate limiter since
	// every forced regeneration is a model call
	reply := api.Group("/replies")
	reply.Get("/", replyController.GetReplies)
	reply.Post("/attachments", replyController.UploadAttachment)
	reply.Post("/:id/next-action", middleware.SyncRateLimiter(), replyController.GenerateNextAction)
	reply.Post("/:id/draft", middleware.SyncRateLimiter(), replyController.GenerateDraft)
	reply.Post("/:id/send", replyController.SendDraft)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})

	log.Println("API routes initialized successfully")
}
