package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"leadpilot/models"
)

// DraftReplyInput carries everything the draft generator needs
type DraftReplyInput struct {
	LeadName        string
	LeadCompany     string
	ReplyText       string
	Intent          models.Intent
	NextActionSteps []string
	Tone            models.Tone
	Attachments     []models.AttachmentMeta
	OriginalSubject string
}

// Per-tone writing guidance handed to the model
var toneGuidance = map[models.Tone]string{
	models.ToneFormal:   "Use professional, formal language. Address as Mr./Ms. Be polite and structured.",
	models.ToneFriendly: "Use warm, conversational tone. Be professional but approachable. Use first name.",
	models.ToneShort:    "Be concise and to-the-point. Keep under 8 lines. Direct but polite.",
}

// GenerateDraftWithAI asks the gateway for a subject/body draft
func GenerateDraftWithAI(client *AIClient, input DraftReplyInput) (models.DraftReply, error) {
	company := input.LeadCompany
	if company == "" {
		company = "Unknown"
	}

	guidance, ok := toneGuidance[input.Tone]
	if !ok {
		guidance = toneGuidance[models.ToneFriendly]
	}

	var attachmentText string
	if len(input.Attachments) == 1 {
		attachmentText = fmt.Sprintf("\nMention the attached file: %s", input.Attachments[0].FileName)
	} else if len(input.Attachments) > 1 {
		names := make([]string, len(input.Attachments))
		for i, att := range input.Attachments {
			names[i] = att.FileName
		}
		attachmentText = fmt.Sprintf("\nMention the attached files: %s", strings.Join(names, ", "))
	}

	var actionContext strings.Builder
	if len(input.NextActionSteps) > 0 {
		actionContext.WriteString("\nNext steps to cover:\n")
		steps := input.NextActionSteps
		if len(steps) > 3 {
			steps = steps[:3]
		}
		for _, step := range steps {
			actionContext.WriteString("- " + step + "\n")
		}
	}

	replyText := input.ReplyText
	if len(replyText) > 800 {
		replyText = replyText[:800]
	}

	systemPrompt := fmt.Sprintf(`You are an expert business email writer. Draft a professional reply to the email below.

Context:
Lead: %s
Company: %s
Intent: %s
Tone: %s
%s
Rules:
- Start with greeting
- 5-12 lines max (unless SHORT tone)
- Ask 1-3 relevant questions
- Include {MEETING_LINK} if needing to schedule
- Plain text only

Reply ONLY in JSON format:
{
    "subject": "Re: ...",
    "body": "plain text email body"
}`, input.LeadName, company, input.Intent, guidance, attachmentText)

	userPrompt := fmt.Sprintf("Their message:\n\"%s\"\n%s\nDraft the reply in JSON.", replyText, actionContext.String())

	response, err := client.Call(userPrompt, systemPrompt, true)
	if err != nil {
		return models.DraftReply{}, err
	}

	raw, ok := extractJSONObject(response)
	if !ok {
		return models.DraftReply{}, &ParseError{Raw: response, Err: fmt.Errorf("no JSON object in response")}
	}

	var draft models.DraftReply
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return models.DraftReply{}, &ParseError{Raw: response, Err: err}
	}
	if draft.Subject == "" || draft.Body == "" {
		return models.DraftReply{}, &ParseError{Raw: response, Err: fmt.Errorf("missing subject or body")}
	}

	return draft, nil
}

// FallbackDraft builds a templated reply from intent and tone. The
// {MEETING_LINK} placeholder is left for downstream substitution.
func FallbackDraft(input DraftReplyInput) models.DraftReply {
	greeting := fmt.Sprintf("Dear %s,", input.LeadName)
	if input.Tone == models.ToneFriendly || input.Tone == models.ToneShort {
		greeting = fmt.Sprintf("Hi %s,", input.LeadName)
	}

	var body string
	switch input.Intent {
	case models.IntentAskingPrice:
		body = greeting + `

Thank you for your interest in our solution.

I've attached our pricing information for your review. Our plans are designed to scale with your needs.

Could you share more about your specific requirements and timeline? This will help me recommend the best fit for your team.

Happy to answer any questions you have.

Best regards`
	case models.IntentMeeting:
		body = greeting + `

I'd be happy to schedule a meeting to discuss this further.

You can book a time that works best for you here: {MEETING_LINK}

Alternatively, let me know your availability and I'll send an invite.

Looking forward to connecting!

Best regards`
	case models.IntentInterested:
		body = greeting + `

Thank you for your interest! I'm excited to share more details with you.

I've attached some information that should be helpful. Our solution helps teams streamline their workflow and increase productivity.

What specific challenges are you looking to address? I'd love to tailor the conversation to your needs.

Best regards`
	case models.IntentNotInterested:
		body = greeting + `

Thank you for taking the time to respond.

I completely understand. If your needs change in the future, please don't hesitate to reach out.

If you know anyone who might benefit from our solution, I'd appreciate an introduction.

Best regards`
	default:
		body = greeting + `

Thank you for your message.

I appreciate you taking the time to reply. Let me know if there's anything I can help with or any information you need.

Looking forward to hearing from you.

Best regards`
	}

	// Mention attachments unless the template already does
	if len(input.Attachments) > 0 && !strings.Contains(body, "attached") {
		names := make([]string, len(input.Attachments))
		for i, att := range input.Attachments {
			names[i] = att.FileName
		}
		fileList := names[0]
		if len(names) > 1 {
			fileList = strings.Join(names, ", ")
		}
		body = strings.Replace(body, "Best regards",
			fmt.Sprintf("I've attached %s for your reference.\n\nBest regards", fileList), 1)
	}

	if input.Tone == models.ToneShort {
		var nonEmpty []string
		for _, line := range strings.Split(body, "\n") {
			if strings.TrimSpace(line) != "" {
				nonEmpty = append(nonEmpty, line)
			}
		}
		body = strings.Join(nonEmpty, "\n")
		if len(body) > 300 {
			body = body[:300]
		}
	}

	subject := "Re: Your inquiry"
	if input.OriginalSubject != "" {
		subject = "Re: " + input.OriginalSubject
	}

	return models.DraftReply{Subject: subject, Body: body}
}

// NormalizeDraftSubject rewrites a draft subject to "Re: {original}" when the
// original subject is known and the draft does not already carry the prefix
func NormalizeDraftSubject(draft *models.DraftReply, originalSubject string) {
	if originalSubject != "" && !strings.HasPrefix(draft.Subject, "Re:") {
		draft.Subject = "Re: " + originalSubject
	}
}

// GenerateDraftReply tries the AI path and falls back to templates.
// Never fails; the subject is always normalized against the original.
func GenerateDraftReply(client *AIClient, input DraftReplyInput) models.DraftReply {
	if client != nil && client.Configured() {
		draft, err := GenerateDraftWithAI(client, input)
		if err == nil {
			NormalizeDraftSubject(&draft, input.OriginalSubject)
			logrus.WithField("tone", input.Tone).Info("AI draft generated")
			return draft
		}
		logrus.WithError(err).Warn("AI draft failed, using fallback template")
	}
	return FallbackDraft(input)
}
