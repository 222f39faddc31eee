package controller

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"leadpilot/config"
	"leadpilot/models"
	"leadpilot/utils"
)

type SyncController struct {
	db     *gorm.DB
	logger *log.Logger
	ai     *utils.AIClient
}

func NewSyncController(db *gorm.DB, ai *utils.AIClient, logger *log.Logger) *SyncController {
	return &SyncController{
		db:     db,
		logger: logger,
		ai:     ai,
	}
}

// SyncReplies scans the inbox for replies to known outbound emails, scores
// each new one and folds the scoring into the owning lead's aggregates
func (sc *SyncController) SyncReplies(c *fiber.Ctx) error {
	found, err := sc.RunSync()
	if err != nil {
		LogError("reply_sync_failed", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error syncing replies: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"replies_found": found,
		"message":       fmt.Sprintf("Found %d new replies", found),
	})
}

// RunSync executes the scan-score-aggregate pipeline and returns the number
// of newly ingested replies. Candidates are processed strictly sequentially;
// scoring never fails (fallback), so one bad reply cannot block the rest.
func (sc *SyncController) RunSync() (int, error) {
	var outbound []models.OutboundEmail
	if err := sc.db.Find(&outbound).Error; err != nil {
		return 0, fmt.Errorf("failed to load outbound emails: %w", err)
	}
	if len(outbound) == 0 {
		return 0, nil
	}

	messageIDMap := make(map[string]*models.OutboundEmail, len(outbound))
	knownIDs := make(map[string]struct{}, len(outbound))
	for i := range outbound {
		messageIDMap[outbound[i].MessageID] = &outbound[i]
		knownIDs[outbound[i].MessageID] = struct{}{}
	}

	candidates, err := utils.ScanInboxForReplies(config.AppConfig.IMAP, knownIDs)
	if err != nil {
		return 0, err
	}

	found := 0
	for _, candidate := range candidates {
		email, ok := messageIDMap[candidate.MatchedMessageID]
		if !ok {
			continue
		}

		// Dedup on (outbound_email_id, from_email): re-scans of the same
		// inbox window must not ingest a reply twice
		var existing models.InboundReply
		err := sc.db.Where("outbound_email_id = ? AND from_email = ?", email.ID, candidate.FromEmail).
			First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			sc.logger.Printf("Dedup check failed for email %d: %v", email.ID, err)
			continue
		}

		scoring := utils.ScoreReply(sc.ai, candidate.BodyPreview)

		reply := models.InboundReply{
			LeadID:          email.LeadID,
			OutboundEmailID: email.ID,
			FromEmail:       candidate.FromEmail,
			Subject:         candidate.Subject,
			BodyPreview:     candidate.BodyPreview,
			ReceivedAt:      candidate.ReceivedAt,
			ReplyScore:      scoring.ReplyScore,
			Priority:        scoring.Priority,
			Intent:          scoring.Intent,
			Confidence:      scoring.Confidence,
			Reasons:         scoring.Reasons,
		}
		if err := sc.db.Create(&reply).Error; err != nil {
			sc.logger.Printf("Failed to store reply for email %d: %v", email.ID, err)
			continue
		}

		if err := sc.db.Model(email).Updates(map[string]interface{}{
			"is_replied":  true,
			"reply_score": scoring.ReplyScore,
			"priority":    scoring.Priority,
			"intent":      scoring.Intent,
			"confidence":  scoring.Confidence,
		}).Error; err != nil {
			sc.logger.Printf("Failed to update outbound email %d: %v", email.ID, err)
		}

		if err := sc.updateLeadScoring(email.LeadID, scoring, candidate); err != nil {
			sc.logger.Printf("Failed to update lead %d scoring: %v", email.LeadID, err)
		}

		found++
	}

	LogEvent("reply_sync_completed", map[string]interface{}{
		"candidates":  len(candidates),
		"new_replies": found,
	})

	return found, nil
}

func (sc *SyncController) updateLeadScoring(leadID uint, scoring models.ReplyScoring, candidate utils.CandidateReply) error {
	var lead models.Lead
	if err := sc.db.First(&lead, leadID).Error; err != nil {
		return err
	}

	lead.ApplyReplyScoring(scoring, candidate.ReceivedAt)

	return sc.db.Model(&lead).Updates(map[string]interface{}{
		"status":            lead.Status,
		"last_replied_at":   lead.LastRepliedAt,
		"lead_score":        lead.LeadScore,
		"lead_priority":     lead.LeadPriority,
		"last_reply_score":  lead.LastReplyScore,
		"last_reply_intent": lead.LastReplyIntent,
	}).Error
}
