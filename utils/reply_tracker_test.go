package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMessageIDs(t *testing.T) {
	t.Run("single id", func(t *testing.T) {
		ids := ExtractMessageIDs("<abc123@mail.example.com>")
		assert.Equal(t, []string{"abc123@mail.example.com"}, ids)
	})

	t.Run("multiple ids in references", func(t *testing.T) {
		ids := ExtractMessageIDs("<first@a.com> <second@b.com> <third@c.com>")
		assert.Equal(t, []string{"first@a.com", "second@b.com", "third@c.com"}, ids)
	})

	t.Run("empty header", func(t *testing.T) {
		assert.Nil(t, ExtractMessageIDs(""))
	})

	t.Run("no brackets", func(t *testing.T) {
		assert.Empty(t, ExtractMessageIDs("abc123@mail.example.com"))
	})
}

func TestMatchReplyHeaders(t *testing.T) {
	outbound := map[string]struct{}{
		"root@leadpilot.io": {},
		"mid@leadpilot.io":  {},
	}

	t.Run("matches via in-reply-to", func(t *testing.T) {
		id, ok := MatchReplyHeaders("<mid@leadpilot.io>", "", outbound)
		assert.True(t, ok)
		assert.Equal(t, "mid@leadpilot.io", id)
	})

	t.Run("falls back to references", func(t *testing.T) {
		id, ok := MatchReplyHeaders("<unknown@other.com>", "<root@leadpilot.io> <unknown@other.com>", outbound)
		assert.True(t, ok)
		assert.Equal(t, "root@leadpilot.io", id)
	})

	t.Run("in-reply-to wins over references", func(t *testing.T) {
		id, ok := MatchReplyHeaders("<mid@leadpilot.io>", "<root@leadpilot.io>", outbound)
		assert.True(t, ok)
		assert.Equal(t, "mid@leadpilot.io", id)
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := MatchReplyHeaders("<x@y.com>", "<a@b.com>", outbound)
		assert.False(t, ok)
	})

	t.Run("empty headers", func(t *testing.T) {
		_, ok := MatchReplyHeaders("", "", outbound)
		assert.False(t, ok)
	})
}

func TestStripHTMLTags(t *testing.T) {
	html := "<html><body><p>Hello <b>there</b></p><br/></body></html>"
	assert.Equal(t, "Hello there", StripHTMLTags(html))
}

func TestTruncatePreview(t *testing.T) {
	t.Run("short body untouched", func(t *testing.T) {
		assert.Equal(t, "hello", truncatePreview("hello"))
	})

	t.Run("long body capped", func(t *testing.T) {
		body := strings.Repeat("x", 1000)
		assert.Len(t, truncatePreview(body), bodyPreviewLen)
	})
}
