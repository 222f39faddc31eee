package utils

import (
	"crypto/tls"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"

	"leadpilot/config"
)

// Only the most recent messages are examined on each scan. This is a
// bounded-recency window, not a cursor: repeated scans re-check the same
// window and rely on the caller's dedup key.
const scanWindow = 50

const bodyPreviewLen = 500

var (
	messageIDRe = regexp.MustCompile(`<([^>]+)>`)
	htmlTagRe   = regexp.MustCompile(`<[^>]+>`)
)

// CandidateReply is an inbox message matched to a known outbound Message-ID
type CandidateReply struct {
	MatchedMessageID string    `json:"matched_message_id"`
	FromEmail        string    `json:"from_email"`
	Subject          string    `json:"subject"`
	BodyPreview      string    `json:"body_preview"`
	ReceivedAt       time.Time `json:"received_at"`
}

// ExtractMessageIDs pulls all angle-bracketed message IDs out of an
// In-Reply-To or References header value, brackets removed
func ExtractMessageIDs(headerValue string) []string {
	if headerValue == "" {
		return nil
	}
	matches := messageIDRe.FindAllStringSubmatch(headerValue, -1)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m[1])
	}
	return ids
}

// MatchReplyHeaders returns the first referenced message ID that belongs to
// the known outbound set. In-Reply-To IDs are checked before References IDs.
func MatchReplyHeaders(inReplyTo, references string, outboundIDs map[string]struct{}) (string, bool) {
	ids := append(ExtractMessageIDs(inReplyTo), ExtractMessageIDs(references)...)
	for _, id := range ids {
		if _, ok := outboundIDs[id]; ok {
			return id, true
		}
	}
	return "", false
}

// StripHTMLTags is the simple tag-removal pass used when a message has no
// plain-text part
func StripHTMLTags(html string) string {
	return htmlTagRe.ReplaceAllString(html, "")
}

// ScanInboxForReplies connects to the configured mailbox and returns the
// recent messages whose threading headers reference a known outbound
// Message-ID. Connection, login and mailbox-select failures abort the scan;
// malformed individual messages are skipped. Candidates are not deduplicated
// here - that is the caller's job.
func ScanInboxForReplies(cfg config.IMAPConfig, outboundIDs map[string]struct{}) ([]CandidateReply, error) {
	imapAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	imapClient, err := client.DialTLS(imapAddr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer imapClient.Logout()

	if err := imapClient.Login(cfg.Username, cfg.Password); err != nil {
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := imapClient.Select(mailbox, true); err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	ids, err := imapClient.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > scanWindow {
		ids = ids[len(ids)-scanWindow:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)

	go func() {
		done <- imapClient.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var replies []CandidateReply
	for msg := range messages {
		candidate, ok, err := matchMessage(msg, section, outboundIDs)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"seq_num": msg.SeqNum,
				"error":   err,
			}).Warn("Skipping malformed message")
			continue
		}
		if ok {
			replies = append(replies, candidate)
		}
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("error during fetch: %w", err)
	}

	return replies, nil
}

func matchMessage(msg *imap.Message, section *imap.BodySectionName, outboundIDs map[string]struct{}) (CandidateReply, bool, error) {
	literal := msg.GetBody(section)
	if literal == nil {
		return CandidateReply{}, false, fmt.Errorf("message body not found")
	}

	mr, err := mail.CreateReader(literal)
	if err != nil {
		return CandidateReply{}, false, fmt.Errorf("failed to create message reader: %w", err)
	}

	header := mr.Header
	matchedID, ok := MatchReplyHeaders(header.Get("In-Reply-To"), header.Get("References"), outboundIDs)
	if !ok {
		return CandidateReply{}, false, nil
	}

	fromEmail := header.Get("From")
	if addrs, err := header.AddressList("From"); err == nil && len(addrs) > 0 {
		fromEmail = addrs[0].Address
	}

	subject, _ := header.Subject()

	receivedAt, err := header.Date()
	if err != nil || receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	return CandidateReply{
		MatchedMessageID: matchedID,
		FromEmail:        fromEmail,
		Subject:          subject,
		BodyPreview:      extractPlainText(mr),
		ReceivedAt:       receivedAt,
	}, true, nil
}

// extractPlainText walks the message parts preferring text/plain, falling
// back to tag-stripped text/html, and skipping attachments. The result is
// truncated to a 500-char preview.
func extractPlainText(mr *mail.Reader) string {
	var body string

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			// Unreadable part, keep whatever we have
			break
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			b, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			if strings.Contains(contentType, "text/plain") {
				// First plain-text part wins
				body = strings.TrimSpace(string(b))
				if body != "" {
					return truncatePreview(body)
				}
			} else if strings.Contains(contentType, "text/html") && body == "" {
				body = StripHTMLTags(string(b))
			}
		case *mail.AttachmentHeader:
			continue
		}
	}

	return truncatePreview(strings.TrimSpace(body))
}

func truncatePreview(body string) string {
	if len(body) > bodyPreviewLen {
		return body[:bodyPreviewLen]
	}
	return body
}
