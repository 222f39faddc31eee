package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpilot/models"
	"leadpilot/utils"
)

type EmailController struct {
	db     *gorm.DB
	logger *log.Logger
	mailer *utils.Mailer
}

func NewEmailController(db *gorm.DB, mailer *utils.Mailer, logger *log.Logger) *EmailController {
	return &EmailController{
		db:     db,
		logger: logger,
		mailer: mailer,
	}
}

// SendEmail sends an initial outreach email to a lead. The assigned
// Message-ID is stored so replies can be matched back by threading headers.
func (ec *EmailController) SendEmail(c *fiber.Ctx) error {
	var req struct {
		LeadID  uint   `json:"lead_id" validate:"required"`
		Subject string `json:"subject" validate:"required"`
		Body    string `json:"body" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var lead models.Lead
	if err := ec.db.First(&lead, req.LeadID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lead not found",
		})
	}

	messageID, err := ec.mailer.Send(lead.Email, req.Subject, req.Body)
	if err != nil {
		LogError("email_send_failed", err, map[string]interface{}{
			"lead_id": lead.ID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send email: " + err.Error(),
		})
	}

	now := time.Now()
	email := models.OutboundEmail{
		LeadID:    lead.ID,
		Subject:   req.Subject,
		Body:      req.Body,
		MessageID: messageID,
		EmailType: models.EmailTypeInitial,
		SentAt:    now,
	}
	if err := ec.db.Create(&email).Error; err != nil {
		ec.logger.Printf("Failed to store outbound email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Email sent but failed to store record",
		})
	}

	if err := ec.db.Model(&lead).Updates(map[string]interface{}{
		"status":          models.LeadStatusEmailed,
		"last_emailed_at": now,
	}).Error; err != nil {
		ec.logger.Printf("Failed to update lead status: %v", err)
	}

	LogEvent("email_sent", map[string]interface{}{
		"lead_id":    lead.ID,
		"email_id":   email.ID,
		"message_id": messageID,
	})

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Email sent to " + lead.Email,
		"email_id":   email.ID,
		"message_id": messageID,
	})
}

// GetOutboundEmails lists all sent emails, newest first
func (ec *EmailController) GetOutboundEmails(c *fiber.Ctx) error {
	var emails []models.OutboundEmail
	if err := ec.db.Order("sent_at DESC").Find(&emails).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch emails",
		})
	}
	return c.JSON(emails)
}
