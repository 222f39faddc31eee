package controller

import (
	"io"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpilot/models"
	"leadpilot/utils"
)

type ReplyController struct {
	db      *gorm.DB
	logger  *log.Logger
	ai      *utils.AIClient
	mailer  *utils.Mailer
	storage *utils.StorageClient
}

func NewReplyController(db *gorm.DB, ai *utils.AIClient, mailer *utils.Mailer, storage *utils.StorageClient, logger *log.Logger) *ReplyController {
	return &ReplyController{
		db:      db,
		logger:  logger,
		ai:      ai,
		mailer:  mailer,
		storage: storage,
	}
}

// GetReplies lists inbound replies with their lead and outbound email
func (rc *ReplyController) GetReplies(c *fiber.Ctx) error {
	var replies []models.InboundReply
	if err := rc.db.Preload("Lead").Preload("OutboundEmail").
		Order("received_at DESC").Find(&replies).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch replies",
		})
	}
	return c.JSON(replies)
}

func (rc *ReplyController) loadReplyContext(replyID string) (*models.InboundReply, *models.Lead, *models.OutboundEmail, error) {
	var reply models.InboundReply
	if err := rc.db.First(&reply, replyID).Error; err != nil {
		return nil, nil, nil, err
	}

	var lead models.Lead
	if err := rc.db.First(&lead, reply.LeadID).Error; err != nil {
		return nil, nil, nil, err
	}

	var outbound models.OutboundEmail
	if err := rc.db.First(&outbound, reply.OutboundEmailID).Error; err != nil {
		return nil, nil, nil, err
	}

	return &reply, &lead, &outbound, nil
}

// GenerateNextAction produces (or returns the cached) next-best-action
// suggestion for a reply. Pass force=true to regenerate.
func (rc *ReplyController) GenerateNextAction(c *fiber.Ctx) error {
	replyID := c.Params("id")
	force := c.QueryBool("force", false)

	reply, lead, outbound, err := rc.loadReplyContext(replyID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Reply not found",
		})
	}

	if reply.NextActionGeneratedAt != nil && !force {
		return c.JSON(fiber.Map{
			"next_action_title": reply.NextActionTitle,
			"next_action_steps": reply.NextActionSteps,
			"urgency":           reply.Urgency,
			"followup_days":     reply.FollowupDays,
			"suggested_tone":    reply.SuggestedTone,
			"cached":            true,
		})
	}

	action := utils.GenerateNextAction(rc.ai, utils.NextActionInput{
		ReplyText:       reply.BodyPreview,
		Intent:          reply.Intent,
		Score:           reply.ReplyScore,
		Priority:        reply.Priority,
		LeadName:        lead.Name,
		LeadCompany:     lead.Company,
		OutboundSubject: outbound.Subject,
	})

	now := time.Now()
	if err := rc.db.Model(reply).Updates(map[string]interface{}{
		"next_action_title":        action.Title,
		"next_action_steps":        models.StringList(action.Steps),
		"urgency":                  action.Urgency,
		"followup_days":            action.FollowupDays,
		"suggested_tone":           action.Tone,
		"next_action_generated_at": now,
	}).Error; err != nil {
		rc.logger.Printf("Failed to store next action for reply %s: %v", replyID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store next action",
		})
	}

	// Copy the latest suggestion onto the lead for list views
	if err := rc.db.Model(lead).Updates(map[string]interface{}{
		"next_action_title":      action.Title,
		"next_action_steps":      models.StringList(action.Steps),
		"next_action_updated_at": now,
	}).Error; err != nil {
		rc.logger.Printf("Failed to copy next action to lead %d: %v", lead.ID, err)
	}

	return c.JSON(fiber.Map{
		"next_action_title": action.Title,
		"next_action_steps": action.Steps,
		"urgency":           action.Urgency,
		"followup_days":     action.FollowupDays,
		"suggested_tone":    action.Tone,
		"cached":            false,
	})
}

// GenerateDraft produces (or returns the cached) draft reply for a tone.
// The cache only hits when the stored draft was generated with the same tone.
func (rc *ReplyController) GenerateDraft(c *fiber.Ctx) error {
	replyID := c.Params("id")
	force := c.QueryBool("force", false)

	tone := models.Tone(c.Query("tone", string(models.ToneFriendly)))
	if !tone.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "tone must be one of FORMAL, FRIENDLY, SHORT",
		})
	}

	reply, lead, outbound, err := rc.loadReplyContext(replyID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Reply not found",
		})
	}

	if reply.DraftGeneratedAt != nil && reply.DraftTone == tone && !force {
		return c.JSON(fiber.Map{
			"subject": reply.DraftSubject,
			"body":    reply.DraftBody,
			"tone":    reply.DraftTone,
			"cached":  true,
		})
	}

	draft := utils.GenerateDraftReply(rc.ai, utils.DraftReplyInput{
		LeadName:        lead.Name,
		LeadCompany:     lead.Company,
		ReplyText:       reply.BodyPreview,
		Intent:          reply.Intent,
		NextActionSteps: reply.NextActionSteps,
		Tone:            tone,
		Attachments:     reply.Attachments,
		OriginalSubject: outbound.Subject,
	})

	now := time.Now()
	if err := rc.db.Model(reply).Updates(map[string]interface{}{
		"draft_subject":      draft.Subject,
		"draft_body":         draft.Body,
		"draft_tone":         tone,
		"draft_status":       models.DraftStatusGenerated,
		"draft_generated_at": now,
	}).Error; err != nil {
		rc.logger.Printf("Failed to store draft for reply %s: %v", replyID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store draft",
		})
	}

	return c.JSON(fiber.Map{
		"subject": draft.Subject,
		"body":    draft.Body,
		"tone":    tone,
		"cached":  false,
	})
}

// SendDraft sends the stored (or edited) draft back to the lead with proper
// threading and records the send as a new outbound email
func (rc *ReplyController) SendDraft(c *fiber.Ctx) error {
	replyID := c.Params("id")

	var req struct {
		EditedSubject string                  `json:"edited_subject"`
		EditedBody    string                  `json:"edited_body"`
		Attachments   []models.AttachmentMeta `json:"attachments"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	reply, lead, outbound, err := rc.loadReplyContext(replyID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Reply not found",
		})
	}

	subject := reply.DraftSubject
	if req.EditedSubject != "" {
		subject = req.EditedSubject
	}
	if subject == "" {
		subject = "Re: Your inquiry"
	}
	body := reply.DraftBody
	if req.EditedBody != "" {
		body = req.EditedBody
	}
	if body == "" {
		body = "Thank you for your message."
	}
	attachments := req.Attachments
	if len(attachments) == 0 {
		attachments = reply.Attachments
	}

	threadRoot := outbound.ThreadRootMessageID
	if threadRoot == "" {
		threadRoot = outbound.MessageID
	}

	messageID, err := rc.mailer.SendReply(lead.Email, subject, body, outbound.MessageID, threadRoot, attachments)
	if err != nil {
		LogError("draft_send_failed", err, map[string]interface{}{
			"reply_id": reply.ID,
			"lead_id":  lead.ID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send reply: " + err.Error(),
		})
	}

	sent := models.OutboundEmail{
		LeadID:              lead.ID,
		Subject:             subject,
		Body:                body,
		MessageID:           messageID,
		ThreadRootMessageID: threadRoot,
		EmailType:           models.EmailTypeReply,
		SentAt:              time.Now(),
		Attachments:         attachments,
	}
	if err := rc.db.Create(&sent).Error; err != nil {
		rc.logger.Printf("Reply sent but failed to store record: %v", err)
	}

	draftStatus := models.DraftStatusSent
	if req.EditedSubject != "" || req.EditedBody != "" {
		draftStatus = models.DraftStatusEditedSent
	}
	if err := rc.db.Model(reply).Update("draft_status", draftStatus).Error; err != nil {
		rc.logger.Printf("Failed to update draft status for reply %s: %v", replyID, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "Reply sent to " + lead.Email,
		"sent_email_id": sent.ID,
		"message_id":    messageID,
	})
}

// UploadAttachment stores a multipart file upload for later use in drafts
func (rc *ReplyController) UploadAttachment(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open uploaded file",
		})
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	meta, err := rc.storage.Upload(fileBytes, fileHeader.Filename, contentType)
	if err != nil {
		LogError("attachment_upload_failed", err, map[string]interface{}{
			"file_name": fileHeader.Filename,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload file",
		})
	}

	return c.JSON(meta)
}
