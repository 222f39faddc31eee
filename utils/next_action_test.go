package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"leadpilot/models"
)

func TestFallbackNextAction(t *testing.T) {
	tests := []struct {
		intent   models.Intent
		title    string
		urgency  models.Urgency
		followup int
		tone     models.Tone
	}{
		{models.IntentAskingPrice, "Send Pricing Information", models.UrgencyNow, 1, models.ToneFormal},
		{models.IntentMeeting, "Schedule Meeting", models.UrgencyNow, 1, models.ToneFriendly},
		{models.IntentInterested, "Provide More Information", models.UrgencyToday, 2, models.ToneFriendly},
		{models.IntentNotInterested, "Close Gracefully", models.UrgencyThisWeek, 7, models.ToneShort},
		{models.IntentUnsubscribe, "Mark Do Not Contact", models.UrgencyNow, 0, models.ToneFormal},
	}
	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			action := FallbackNextAction(tt.intent)
			assert.Equal(t, tt.title, action.Title)
			assert.Equal(t, tt.urgency, action.Urgency)
			assert.Equal(t, tt.followup, action.FollowupDays)
			assert.Equal(t, tt.tone, action.Tone)
			assert.Len(t, action.Steps, 3)
		})
	}
}

func TestFallbackNextActionGeneric(t *testing.T) {
	for _, intent := range []models.Intent{models.IntentSpam, models.IntentOther, models.Intent("")} {
		action := FallbackNextAction(intent)
		assert.Equal(t, "Follow Up", action.Title)
		assert.Equal(t, models.UrgencyToday, action.Urgency)
		assert.Equal(t, 3, action.FollowupDays)
		assert.Equal(t, models.ToneFriendly, action.Tone)
		assert.Len(t, action.Steps, 3)
	}
}

func TestFallbackNextActionDeterministic(t *testing.T) {
	first := FallbackNextAction(models.IntentMeeting)
	second := FallbackNextAction(models.IntentMeeting)
	assert.Equal(t, first, second)
}

func TestGenerateNextActionWithoutClient(t *testing.T) {
	action := GenerateNextAction(nil, NextActionInput{
		ReplyText: "Can we set up a call?",
		Intent:    models.IntentMeeting,
		Score:     90,
		Priority:  models.PriorityHigh,
		LeadName:  "Alex",
	})
	assert.Equal(t, "Schedule Meeting", action.Title)
	assert.True(t, action.Urgency.Valid())
	assert.True(t, action.Tone.Valid())
}
