package controller

import (
	"log"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpilot/models"
	"leadpilot/utils"
)

type LeadController struct {
	db     *gorm.DB
	logger *log.Logger
}

func NewLeadController(db *gorm.DB, logger *log.Logger) *LeadController {
	return &LeadController{
		db:     db,
		logger: logger,
	}
}

// CreateLead creates a new lead in NEW status
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"required,email"`
		Company string `json:"company"`
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

	if err := checkmail.ValidateFormat(req.Email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email must be a valid email",
		})
	}

	lead := models.Lead{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Company:      req.Company,
		Status:       models.LeadStatusNew,
		LeadPriority: models.PriorityLow,
	}

	if err := lc.db.Create(&lead).Error; err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") ||
			strings.Contains(strings.ToLower(err.Error()), "unique") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Lead with this email already exists",
			})
		}
		lc.logger.Printf("Failed to create lead: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create lead",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(lead)
}

// GetLeads lists all leads, newest first
func (lc *LeadController) GetLeads(c *fiber.Ctx) error {
	var leads []models.Lead
	if err := lc.db.Order("created_at DESC").Find(&leads).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch leads",
		})
	}
	return c.JSON(leads)
}

// GetLead returns a single lead with its emails and replies
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.db.Preload("OutboundEmails").Preload("InboundReplies").
		First(&lead, leadID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lead not found",
		})
	}
	return c.JSON(lead)
}

// DeleteLead removes a lead and its emails/replies
func (lc *LeadController) DeleteLead(c *fiber.Ctx) error {
	leadID := c.Params("id")

	var lead models.Lead
	if err := lc.db.First(&lead, leadID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lead not found",
		})
	}

	if err := lc.db.Where("lead_id = ?", lead.ID).Delete(&models.InboundReply{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete lead replies",
		})
	}
	if err := lc.db.Where("lead_id = ?", lead.ID).Delete(&models.OutboundEmail{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete lead emails",
		})
	}
	if err := lc.db.Delete(&lead).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete lead",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
