package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Greater(t, PriorityLow.Rank(), PriorityIgnore.Rank())
	assert.Equal(t, 0, Priority("URGENT").Rank())
	assert.False(t, Priority("URGENT").Valid())
	assert.True(t, PriorityIgnore.Valid())
}

func TestApplyReplyScoring(t *testing.T) {
	now := time.Now()

	t.Run("first reply sets aggregates", func(t *testing.T) {
		lead := Lead{Status: LeadStatusEmailed, LeadPriority: PriorityLow}
		lead.ApplyReplyScoring(ReplyScoring{ReplyScore: 85, Priority: PriorityHigh, Intent: IntentAskingPrice}, now)

		assert.Equal(t, LeadStatusReplied, lead.Status)
		assert.Equal(t, 85, lead.LeadScore)
		assert.Equal(t, PriorityHigh, lead.LeadPriority)
		require.NotNil(t, lead.LastReplyScore)
		assert.Equal(t, 85, *lead.LastReplyScore)
		require.NotNil(t, lead.LastReplyIntent)
		assert.Equal(t, IntentAskingPrice, *lead.LastReplyIntent)
		require.NotNil(t, lead.LastRepliedAt)
		assert.Equal(t, now, *lead.LastRepliedAt)
	})

	t.Run("lower score does not regress aggregates", func(t *testing.T) {
		lead := Lead{Status: LeadStatusReplied, LeadScore: 90, LeadPriority: PriorityHigh}
		lead.ApplyReplyScoring(ReplyScoring{ReplyScore: 25, Priority: PriorityLow, Intent: IntentNotInterested}, now)

		assert.Equal(t, 90, lead.LeadScore)
		assert.Equal(t, PriorityHigh, lead.LeadPriority)
		// Denormalized last-reply fields always track the newest reply
		require.NotNil(t, lead.LastReplyScore)
		assert.Equal(t, 25, *lead.LastReplyScore)
		require.NotNil(t, lead.LastReplyIntent)
		assert.Equal(t, IntentNotInterested, *lead.LastReplyIntent)
	})

	t.Run("higher priority moves lead up", func(t *testing.T) {
		lead := Lead{LeadScore: 50, LeadPriority: PriorityMedium}
		lead.ApplyReplyScoring(ReplyScoring{ReplyScore: 40, Priority: PriorityHigh, Intent: IntentMeeting}, now)

		assert.Equal(t, 50, lead.LeadScore)
		assert.Equal(t, PriorityHigh, lead.LeadPriority)
	})
}
