package models

// Priority is the urgency tier attached to a scored reply
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
	PriorityIgnore Priority = "IGNORE"
)

// Rank returns the numeric rank used for lead aggregation (higher wins)
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 4
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 2
	case PriorityIgnore:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Intent classifies what the replier wants
type Intent string

const (
	IntentInterested    Intent = "INTERESTED"
	IntentAskingPrice   Intent = "ASKING_PRICE"
	IntentMeeting       Intent = "MEETING"
	IntentNotInterested Intent = "NOT_INTERESTED"
	IntentUnsubscribe   Intent = "UNSUBSCRIBE"
	IntentSpam          Intent = "SPAM"
	IntentOther         Intent = "OTHER"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentInterested, IntentAskingPrice, IntentMeeting,
		IntentNotInterested, IntentUnsubscribe, IntentSpam, IntentOther:
		return true
	}
	return false
}

// Urgency buckets a next action by how soon it should happen
type Urgency string

const (
	UrgencyNow      Urgency = "NOW"
	UrgencyToday    Urgency = "TODAY"
	UrgencyThisWeek Urgency = "THIS_WEEK"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyNow, UrgencyToday, UrgencyThisWeek:
		return true
	}
	return false
}

// Tone selects the writing style for generated drafts
type Tone string

const (
	ToneFormal   Tone = "FORMAL"
	ToneFriendly Tone = "FRIENDLY"
	ToneShort    Tone = "SHORT"
)

func (t Tone) Valid() bool {
	switch t {
	case ToneFormal, ToneFriendly, ToneShort:
		return true
	}
	return false
}

// LeadStatus tracks the outreach lifecycle of a lead
type LeadStatus string

const (
	LeadStatusNew     LeadStatus = "NEW"
	LeadStatusEmailed LeadStatus = "EMAILED"
	LeadStatusReplied LeadStatus = "REPLIED"
)

// ReplyScoring is the scoring tuple produced for an inbound reply
type ReplyScoring struct {
	ReplyScore int      `json:"reply_score"`
	Priority   Priority `json:"priority"`
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// NextAction is the suggested follow-up produced for a scored reply
type NextAction struct {
	Title        string   `json:"next_action_title"`
	Steps        []string `json:"next_action_steps"`
	Urgency      Urgency  `json:"urgency"`
	FollowupDays int      `json:"followup_days"`
	Tone         Tone     `json:"suggested_tone"`
}

// DraftReply is a generated reply email ready for review
type DraftReply struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// AttachmentMeta describes a stored attachment referenced by drafts and sends
type AttachmentMeta struct {
	FileName    string `json:"file_name"`
	FileURL     string `json:"file_url"`
	MimeType    string `json:"mime_type"`
	Size        int    `json:"size"`
	StoragePath string `json:"storage_path"`
}
