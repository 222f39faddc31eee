package utils

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"leadpilot/config"
	"leadpilot/models"
)

// Mailer sends outbound emails over SMTP with threading headers for reply
// tracking
type Mailer struct {
	cfg     config.SMTPConfig
	storage *StorageClient
	logger  *log.Logger
}

func NewMailer(cfg config.SMTPConfig, storage *StorageClient, logger *log.Logger) *Mailer {
	return &Mailer{
		cfg:     cfg,
		storage: storage,
		logger:  logger,
	}
}

// GenerateMessageID builds a globally unique Message-ID scoped to the
// sender's domain, returned without angle brackets
func (m *Mailer) GenerateMessageID() string {
	domain := "localhost"
	if parts := strings.SplitN(m.cfg.FromEmail, "@", 2); len(parts) == 2 {
		domain = parts[1]
	}
	return fmt.Sprintf("%s@%s", uuid.NewString(), domain)
}

func (m *Mailer) fromHeader() string {
	if m.cfg.FromName != "" {
		return fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail)
	}
	return m.cfg.FromEmail
}

// Send delivers a plain-text email and returns the Message-ID assigned to it
func (m *Mailer) Send(to, subject, body string) (string, error) {
	messageID := m.GenerateMessageID()

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.fromHeader())
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s>", messageID))
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Printf("Email sent to %s (message id %s)", to, messageID)
	return messageID, nil
}

// SendReply delivers a threaded reply. In-Reply-To points at the immediate
// parent and References carries the thread chain, both angle-bracketed.
// Attachments are downloaded from storage; one failing attachment is logged
// and skipped, the send continues.
func (m *Mailer) SendReply(to, subject, body, inReplyTo, references string, attachments []models.AttachmentMeta) (string, error) {
	messageID := m.GenerateMessageID()

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.fromHeader())
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s>", messageID))
	msg.SetHeader("In-Reply-To", fmt.Sprintf("<%s>", inReplyTo))
	if references != "" && references != inReplyTo {
		msg.SetHeader("References", fmt.Sprintf("<%s> <%s>", references, inReplyTo))
	} else {
		msg.SetHeader("References", fmt.Sprintf("<%s>", inReplyTo))
	}
	msg.SetBody("text/plain", body)

	for _, att := range attachments {
		if att.FileURL == "" {
			m.logger.Printf("Skipping attachment %s: no file URL", att.FileName)
			continue
		}
		data, err := m.storage.Download(att.FileURL)
		if err != nil {
			m.logger.Printf("Failed to attach %s: %v", att.FileName, err)
			continue
		}

		fileName := att.FileName
		if fileName == "" {
			fileName = "attachment"
		}
		mimeType := att.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		msg.Attach(fileName,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {mimeType}}),
		)
	}

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("failed to send reply email: %w", err)
	}

	m.logger.Printf("Reply sent to %s with %d attachment(s) (message id %s)", to, len(attachments), messageID)
	return messageID, nil
}
