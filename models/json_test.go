package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList(t *testing.T) {
	t.Run("nil marshals to empty array", func(t *testing.T) {
		var l StringList
		v, err := l.Value()
		require.NoError(t, err)
		assert.Equal(t, "[]", v)
	})

	t.Run("round trip through bytes", func(t *testing.T) {
		original := StringList{"one", "two"}
		v, err := original.Value()
		require.NoError(t, err)

		var scanned StringList
		require.NoError(t, scanned.Scan([]byte(v.(string))))
		assert.Equal(t, original, scanned)
	})

	t.Run("scan nil clears the list", func(t *testing.T) {
		l := StringList{"stale"}
		require.NoError(t, l.Scan(nil))
		assert.Nil(t, l)
	})

	t.Run("unsupported type errors", func(t *testing.T) {
		var l StringList
		assert.Error(t, l.Scan(42))
	})
}

func TestAttachmentList(t *testing.T) {
	original := AttachmentList{{
		FileName:    "deck.pdf",
		FileURL:     "https://storage.example.com/deck.pdf",
		MimeType:    "application/pdf",
		Size:        1024,
		StoragePath: "1756000000000_deck.pdf",
	}}

	v, err := original.Value()
	require.NoError(t, err)

	var scanned AttachmentList
	require.NoError(t, scanned.Scan(v.(string)))
	assert.Equal(t, original, scanned)
}
