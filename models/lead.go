package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead represents a prospective contact tracked through the outreach lifecycle
type Lead struct {
	gorm.Model
	Name    string     `gorm:"not null" json:"name"`
	Email   string     `gorm:"not null;uniqueIndex" json:"email"`
	Company string     `json:"company"`
	Status  LeadStatus `gorm:"default:'NEW'" json:"status"`

	// Aggregated scoring across all replies received.
	// LeadScore is a monotonic max, LeadPriority the highest rank ever seen.
	LeadScore    int      `gorm:"default:0" json:"lead_score"`
	LeadPriority Priority `gorm:"default:'LOW'" json:"lead_priority"`

	LastEmailedAt *time.Time `json:"last_emailed_at"`
	LastRepliedAt *time.Time `json:"last_replied_at"`

	// Denormalized copy of the most recent reply's scoring
	LastReplyScore  *int    `json:"last_reply_score"`
	LastReplyIntent *Intent `json:"last_reply_intent"`

	// Latest next-action suggestion, copied from the reply it was generated for
	NextActionTitle     string     `json:"next_action_title"`
	NextActionSteps     StringList `gorm:"type:jsonb" json:"next_action_steps"`
	NextActionUpdatedAt *time.Time `json:"next_action_updated_at"`

	// Relations
	OutboundEmails []OutboundEmail `gorm:"foreignKey:LeadID" json:"outbound_emails,omitempty"`
	InboundReplies []InboundReply  `gorm:"foreignKey:LeadID" json:"inbound_replies,omitempty"`
}

// ApplyReplyScoring folds a new reply's scoring into the lead's aggregates.
// Score is a running max; priority only moves up in rank.
func (l *Lead) ApplyReplyScoring(scoring ReplyScoring, receivedAt time.Time) {
	if scoring.ReplyScore > l.LeadScore {
		l.LeadScore = scoring.ReplyScore
	}
	if scoring.Priority.Rank() > l.LeadPriority.Rank() {
		l.LeadPriority = scoring.Priority
	}
	l.Status = LeadStatusReplied
	l.LastRepliedAt = &receivedAt
	score := scoring.ReplyScore
	intent := scoring.Intent
	l.LastReplyScore = &score
	l.LastReplyIntent = &intent
}
