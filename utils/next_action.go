package utils

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"leadpilot/models"
)

// NextActionInput carries the reply and lead context the generator needs
type NextActionInput struct {
	ReplyText       string
	Intent          models.Intent
	Score           int
	Priority        models.Priority
	LeadName        string
	LeadCompany     string
	OutboundSubject string
}

const nextActionSystemPrompt = `You are a sales action strategist. Based on the email reply analysis, suggest the next best action.

Output Guide:
- next_action_title: Max 60 chars (e.g., "Send Pricing", "Schedule Call")
- next_action_steps: List of 3 specific, actionable steps
- urgency: NOW (hot lead), TODAY (warm), THIS_WEEK (cold/nurture)
- followup_days: 1-7 days
- suggested_tone: FORMAL, FRIENDLY, SHORT

Reply strictly in valid JSON matching the schema.`

// GenerateNextActionWithAI asks the gateway for a next-best-action suggestion
func GenerateNextActionWithAI(client *AIClient, input NextActionInput) (models.NextAction, error) {
	company := input.LeadCompany
	if company == "" {
		company = "Unknown"
	}
	subject := input.OutboundSubject
	if subject == "" {
		subject = "N/A"
	}

	replyText := input.ReplyText
	if len(replyText) > 1000 {
		replyText = replyText[:1000]
	}

	userPrompt := fmt.Sprintf(`Context:
Lead: %s
Company: %s
Intent: %s
Priority: %s
Score: %d/100
Original Subject: %s

Reply Content:
"%s"

Suggest the next best action in JSON.`,
		input.LeadName, company, input.Intent, input.Priority, input.Score, subject, replyText)

	response, err := client.Call(userPrompt, nextActionSystemPrompt, true)
	if err != nil {
		return models.NextAction{}, err
	}

	raw, ok := extractJSONObject(response)
	if !ok {
		return models.NextAction{}, &ParseError{Raw: response, Err: fmt.Errorf("no JSON object in response")}
	}

	var action models.NextAction
	if err := json.Unmarshal([]byte(raw), &action); err != nil {
		return models.NextAction{}, &ParseError{Raw: response, Err: err}
	}

	if action.Title == "" || len(action.Steps) == 0 {
		return models.NextAction{}, &ParseError{Raw: response, Err: fmt.Errorf("missing title or steps")}
	}
	if len(action.Title) > 60 {
		action.Title = action.Title[:60]
	}
	if !action.Urgency.Valid() {
		return models.NextAction{}, &ParseError{Raw: response, Err: fmt.Errorf("invalid urgency %q", action.Urgency)}
	}
	if !action.Tone.Valid() {
		return models.NextAction{}, &ParseError{Raw: response, Err: fmt.Errorf("invalid tone %q", action.Tone)}
	}
	if action.FollowupDays < 0 || action.FollowupDays > 30 {
		return models.NextAction{}, &ParseError{Raw: response, Err: fmt.Errorf("followup_days %d out of range", action.FollowupDays)}
	}

	return action, nil
}

// fallbackNextActions maps each intent to a fixed suggestion
var fallbackNextActions = map[models.Intent]models.NextAction{
	models.IntentAskingPrice: {
		Title: "Send Pricing Information",
		Steps: []string{
			"Prepare pricing document",
			"Ask about budget and timeline",
			"Follow up in 24 hours",
		},
		Urgency:      models.UrgencyNow,
		FollowupDays: 1,
		Tone:         models.ToneFormal,
	},
	models.IntentMeeting: {
		Title: "Schedule Meeting",
		Steps: []string{
			"Share calendar link",
			"Propose time slots",
			"Send meeting agenda",
		},
		Urgency:      models.UrgencyNow,
		FollowupDays: 1,
		Tone:         models.ToneFriendly,
	},
	models.IntentInterested: {
		Title: "Provide More Information",
		Steps: []string{
			"Send product details",
			"Share case studies",
			"Ask qualifying questions",
		},
		Urgency:      models.UrgencyToday,
		FollowupDays: 2,
		Tone:         models.ToneFriendly,
	},
	models.IntentNotInterested: {
		Title: "Close Gracefully",
		Steps: []string{
			"Thank for their time",
			"Ask if may contact in future",
			"Request referrals if appropriate",
		},
		Urgency:      models.UrgencyThisWeek,
		FollowupDays: 7,
		Tone:         models.ToneShort,
	},
	models.IntentUnsubscribe: {
		Title: "Mark Do Not Contact",
		Steps: []string{
			"Remove from email list",
			"Update CRM status",
			"Respect unsubscribe request",
		},
		Urgency:      models.UrgencyNow,
		FollowupDays: 0,
		Tone:         models.ToneFormal,
	},
}

// FallbackNextAction returns the fixed per-intent suggestion, or a generic
// follow-up for intents without one. Fully deterministic.
func FallbackNextAction(intent models.Intent) models.NextAction {
	if action, ok := fallbackNextActions[intent]; ok {
		return action
	}
	return models.NextAction{
		Title: "Follow Up",
		Steps: []string{
			"Review their response",
			"Prepare personalized follow-up",
			"Send within 2-3 days",
		},
		Urgency:      models.UrgencyToday,
		FollowupDays: 3,
		Tone:         models.ToneFriendly,
	}
}

// GenerateNextAction tries the AI path and falls back to the static table.
// Never fails.
func GenerateNextAction(client *AIClient, input NextActionInput) models.NextAction {
	if client != nil && client.Configured() {
		action, err := GenerateNextActionWithAI(client, input)
		if err == nil {
			logrus.WithField("title", action.Title).Info("AI next action generated")
			return action
		}
		logrus.WithError(err).Warn("AI next action failed, using fallback")
	}
	return FallbackNextAction(input.Intent)
}
