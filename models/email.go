package models

import (
	"time"

	"gorm.io/gorm"
)

// EmailType distinguishes the first touch from threaded replies
type EmailType string

const (
	EmailTypeInitial EmailType = "INITIAL"
	EmailTypeReply   EmailType = "REPLY"
)

// DraftStatus tracks what happened to a generated draft
type DraftStatus string

const (
	DraftStatusGenerated  DraftStatus = "GENERATED"
	DraftStatusSent       DraftStatus = "SENT"
	DraftStatusEditedSent DraftStatus = "EDITED_SENT"
)

// OutboundEmail represents a message we sent to a lead.
// MessageID is the RFC 5322 Message-ID (without angle brackets) assigned at
// send time and later matched against In-Reply-To/References headers.
type OutboundEmail struct {
	gorm.Model
	LeadID uint `gorm:"not null;index" json:"lead_id"`

	Subject             string    `gorm:"not null" json:"subject"`
	Body                string    `gorm:"type:text" json:"body"`
	MessageID           string    `gorm:"not null;uniqueIndex" json:"message_id"`
	ThreadRootMessageID string    `json:"thread_root_message_id"`
	EmailType           EmailType `gorm:"default:'INITIAL'" json:"email_type"`
	SentAt              time.Time `gorm:"not null" json:"sent_at"`

	Attachments AttachmentList `gorm:"type:jsonb" json:"attachments"`

	// Reply status, denormalized from the most recent matched reply
	IsReplied  bool      `gorm:"default:false" json:"is_replied"`
	ReplyScore *int      `json:"reply_score"`
	Priority   *Priority `json:"priority"`
	Intent     *Intent   `json:"intent"`
	Confidence *float64  `json:"confidence"`

	// Relations
	Lead Lead `json:"-"`
}

// InboundReply represents a received reply matched to an outbound email.
// The (outbound_email_id, from_email) pair is the dedup key: repeated inbox
// scans must not ingest the same reply twice.
type InboundReply struct {
	gorm.Model
	LeadID          uint `gorm:"not null;index" json:"lead_id"`
	OutboundEmailID uint `gorm:"not null;index:idx_reply_dedup,unique" json:"outbound_email_id"`

	FromEmail   string    `gorm:"not null;index:idx_reply_dedup,unique" json:"from_email"`
	Subject     string    `json:"subject"`
	BodyPreview string    `gorm:"type:text" json:"body_preview"`
	ReceivedAt  time.Time `gorm:"not null" json:"received_at"`

	// AI scoring tuple
	ReplyScore int        `gorm:"default:0" json:"reply_score"`
	Priority   Priority   `gorm:"default:'LOW'" json:"priority"`
	Intent     Intent     `json:"intent"`
	Confidence float64    `json:"confidence"`
	Reasons    StringList `gorm:"type:jsonb" json:"reasons"`

	// Cached next-action suggestion
	NextActionTitle       string     `json:"next_action_title"`
	NextActionSteps       StringList `gorm:"type:jsonb" json:"next_action_steps"`
	Urgency               Urgency    `json:"urgency"`
	FollowupDays          int        `json:"followup_days"`
	SuggestedTone         Tone       `json:"suggested_tone"`
	NextActionGeneratedAt *time.Time `json:"next_action_generated_at"`

	// Cached draft reply
	DraftSubject     string         `json:"draft_subject"`
	DraftBody        string         `gorm:"type:text" json:"draft_body"`
	DraftTone        Tone           `json:"draft_tone"`
	DraftStatus      DraftStatus    `json:"draft_status"`
	DraftGeneratedAt *time.Time     `json:"draft_generated_at"`
	Attachments      AttachmentList `gorm:"type:jsonb" json:"attachments"`

	// Relations
	Lead          Lead          `json:"lead,omitempty"`
	OutboundEmail OutboundEmail `json:"outbound_email,omitempty"`
}
