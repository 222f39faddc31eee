package utils

import (
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"leadpilot/config"
)

func testMailer(fromEmail string) *Mailer {
	return NewMailer(config.SMTPConfig{
		Host:      "smtp.example.com",
		Port:      587,
		FromEmail: fromEmail,
		FromName:  "LeadPilot",
	}, nil, log.New(os.Stdout, "TEST: ", log.LstdFlags))
}

func TestGenerateMessageID(t *testing.T) {
	t.Run("scoped to sender domain", func(t *testing.T) {
		m := testMailer("sales@acme.com")
		id := m.GenerateMessageID()
		assert.True(t, strings.HasSuffix(id, "@acme.com"))
		assert.False(t, strings.ContainsAny(id, "<>"))
	})

	t.Run("falls back to localhost without a sender", func(t *testing.T) {
		m := testMailer("")
		assert.True(t, strings.HasSuffix(m.GenerateMessageID(), "@localhost"))
	})

	t.Run("unique per call", func(t *testing.T) {
		m := testMailer("sales@acme.com")
		assert.NotEqual(t, m.GenerateMessageID(), m.GenerateMessageID())
	})
}

func TestFromHeader(t *testing.T) {
	t.Run("with display name", func(t *testing.T) {
		m := testMailer("sales@acme.com")
		assert.Equal(t, "LeadPilot <sales@acme.com>", m.fromHeader())
	})

	t.Run("bare address", func(t *testing.T) {
		m := NewMailer(config.SMTPConfig{FromEmail: "sales@acme.com"}, nil, log.New(os.Stdout, "", 0))
		assert.Equal(t, "sales@acme.com", m.fromHeader())
	})
}
