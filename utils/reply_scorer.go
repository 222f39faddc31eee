package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"leadpilot/models"
)

const (
	// Cleaned reply text is capped to keep prompts inside token limits
	maxCleanedReplyLen = 2000

	// Extra attempts after the first scoring call fails to parse
	scoringParseRetries = 2
)

var (
	quotedReplyBoundaryRe = regexp.MustCompile(`On .+ wrote:`)
	jsonFencedBlockRe     = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.+?\\})\\s*```")
	jsonObjectRe          = regexp.MustCompile(`\{[\s\S]*\}`)
)

const scoringPrompt = `You are an expert sales assistant. Analyze the following email reply and decide if it is a valuable lead reply.

Return ONLY valid JSON with this schema:
{
"reply_score": number (0-100),
"priority": "HIGH" | "MEDIUM" | "LOW" | "IGNORE",
"intent": "INTERESTED" | "ASKING_PRICE" | "MEETING" | "NOT_INTERESTED" | "UNSUBSCRIBE" | "SPAM" | "OTHER",
"confidence": number (0.0-1.0),
"reasons": string[]
}

Rules:
- HIGH (80-100): wants pricing, demo, meeting, ready to buy, urgent.
- MEDIUM (50-79): asks for details, maybe later, needs follow-up.
- LOW (20-49): vague reply, not clear intent.
- IGNORE (0-19): unsubscribe, spam, abusive, irrelevant.

If the reply contains unsubscribe request → priority must be IGNORE and score <= 10.
If the reply says not interested → priority LOW or IGNORE depending on tone.

Be concise. Reasons must be short bullet-like strings.

Now analyze this email reply:
`

// CleanReplyText strips quoted history and signatures from a raw reply body.
// Quoted lines are dropped, the text is cut at the first "On ... wrote:" line
// or standalone signature separator, and the result is capped at 2000 chars.
func CleanReplyText(replyText string) string {
	lines := strings.Split(replyText, "\n")
	var cleaned []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		if quotedReplyBoundaryRe.MatchString(line) {
			break
		}
		if trimmed == "--" || trimmed == "___" || trimmed == "---" {
			break
		}
		cleaned = append(cleaned, line)
	}

	text := strings.TrimSpace(strings.Join(cleaned, "\n"))
	if len(text) > maxCleanedReplyLen {
		text = text[:maxCleanedReplyLen]
	}
	return text
}

// extractJSONObject pulls a JSON object out of a model response that may wrap
// it in code fences or surrounding prose
func extractJSONObject(responseText string) (string, bool) {
	if m := jsonFencedBlockRe.FindStringSubmatch(responseText); m != nil {
		if json.Valid([]byte(m[1])) {
			return m[1], true
		}
	}
	if m := jsonObjectRe.FindString(responseText); m != "" {
		if json.Valid([]byte(m)) {
			return m, true
		}
	}
	trimmed := strings.TrimSpace(responseText)
	if json.Valid([]byte(trimmed)) {
		return trimmed, true
	}
	return "", false
}

// parseScoring validates a raw model response against the scoring schema.
// IGNORE is clamped to score <= 10: the prompt states the rule but the remote
// model is not trusted to honor it.
func parseScoring(responseText string) (models.ReplyScoring, error) {
	raw, ok := extractJSONObject(responseText)
	if !ok {
		return models.ReplyScoring{}, &ParseError{Raw: responseText, Err: errors.New("no JSON object in response")}
	}

	var scoring models.ReplyScoring
	if err := json.Unmarshal([]byte(raw), &scoring); err != nil {
		return models.ReplyScoring{}, &ParseError{Raw: responseText, Err: err}
	}

	if scoring.ReplyScore < 0 || scoring.ReplyScore > 100 {
		return models.ReplyScoring{}, &ParseError{Raw: responseText, Err: fmt.Errorf("reply_score %d out of range", scoring.ReplyScore)}
	}
	if !scoring.Priority.Valid() {
		return models.ReplyScoring{}, &ParseError{Raw: responseText, Err: fmt.Errorf("invalid priority %q", scoring.Priority)}
	}
	if scoring.Confidence < 0.0 || scoring.Confidence > 1.0 {
		return models.ReplyScoring{}, &ParseError{Raw: responseText, Err: fmt.Errorf("confidence %v out of range", scoring.Confidence)}
	}
	if scoring.Intent == "" {
		scoring.Intent = models.IntentOther
	}

	if scoring.Priority == models.PriorityIgnore && scoring.ReplyScore > 10 {
		scoring.ReplyScore = 10
	}

	return scoring, nil
}

// ScoreReplyWithAI scores a reply through the AI gateway. Parse failures are
// retried up to two extra times; upstream failures are not.
func ScoreReplyWithAI(client *AIClient, replyText string) (models.ReplyScoring, error) {
	cleaned := CleanReplyText(replyText)
	prompt := scoringPrompt + cleaned

	var lastErr error
	for attempt := 0; attempt <= scoringParseRetries; attempt++ {
		response, err := client.CallTimeout(prompt, "", true, ScoringTimeout)
		if err != nil {
			return models.ReplyScoring{}, err
		}

		scoring, err := parseScoring(response)
		if err == nil {
			return scoring, nil
		}
		lastErr = err
		logrus.WithFields(logrus.Fields{
			"attempt": attempt + 1,
			"error":   err,
		}).Warn("Could not parse scoring response")
	}
	return models.ReplyScoring{}, lastErr
}

// Keyword families for the rule-based fallback, checked in priority order.
// First match wins.
var (
	unsubscribeWords   = []string{"unsubscribe", "remove me", "stop emailing", "opt out"}
	spamWords          = []string{"viagra", "casino", "lottery", "nigerian prince"}
	pricingWords       = []string{"pricing", "price", "cost", "quote", "how much"}
	meetingWords       = []string{"meeting", "call", "schedule", "demo", "presentation"}
	interestWords      = []string{"interested", "tell me more", "learn more", "sounds good"}
	notInterestedWords = []string{"not interested", "no thank", "not now", "maybe later"}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// RuleBasedScore is the deterministic fallback used when the AI gateway is
// unavailable or its response cannot be parsed
func RuleBasedScore(replyText string) models.ReplyScoring {
	textLower := strings.ToLower(replyText)

	switch {
	case containsAny(textLower, unsubscribeWords):
		return models.ReplyScoring{
			ReplyScore: 5,
			Priority:   models.PriorityIgnore,
			Intent:     models.IntentUnsubscribe,
			Confidence: 0.95,
			Reasons:    []string{"Contains unsubscribe request"},
		}
	case containsAny(textLower, spamWords):
		return models.ReplyScoring{
			ReplyScore: 0,
			Priority:   models.PriorityIgnore,
			Intent:     models.IntentSpam,
			Confidence: 0.9,
			Reasons:    []string{"Likely spam content"},
		}
	case containsAny(textLower, pricingWords):
		return models.ReplyScoring{
			ReplyScore: 85,
			Priority:   models.PriorityHigh,
			Intent:     models.IntentAskingPrice,
			Confidence: 0.8,
			Reasons:    []string{"Asking about pricing"},
		}
	case containsAny(textLower, meetingWords):
		return models.ReplyScoring{
			ReplyScore: 90,
			Priority:   models.PriorityHigh,
			Intent:     models.IntentMeeting,
			Confidence: 0.85,
			Reasons:    []string{"Requesting meeting or demo"},
		}
	case containsAny(textLower, interestWords):
		return models.ReplyScoring{
			ReplyScore: 75,
			Priority:   models.PriorityMedium,
			Intent:     models.IntentInterested,
			Confidence: 0.7,
			Reasons:    []string{"Expressed interest"},
		}
	case containsAny(textLower, notInterestedWords):
		return models.ReplyScoring{
			ReplyScore: 25,
			Priority:   models.PriorityLow,
			Intent:     models.IntentNotInterested,
			Confidence: 0.75,
			Reasons:    []string{"Indicated not interested"},
		}
	default:
		return models.ReplyScoring{
			ReplyScore: 50,
			Priority:   models.PriorityMedium,
			Intent:     models.IntentOther,
			Confidence: 0.6,
			Reasons:    []string{"Generic reply - unclear intent"},
		}
	}
}

// ScoreReply scores a reply with the AI gateway when possible and falls back
// to keyword rules otherwise. It never fails: callers always get a usable
// scoring tuple.
func ScoreReply(client *AIClient, replyText string) models.ReplyScoring {
	if client != nil && client.Configured() {
		scoring, err := ScoreReplyWithAI(client, replyText)
		if err == nil {
			logrus.WithFields(logrus.Fields{
				"priority": scoring.Priority,
				"score":    scoring.ReplyScore,
			}).Info("AI scoring successful")
			return scoring
		}
		logrus.WithError(err).Warn("AI scoring failed, using rule-based fallback")
	}
	return RuleBasedScore(replyText)
}
