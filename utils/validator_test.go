package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createLeadPayload struct {
	Name  string `validate:"required,min=2"`
	Email string `validate:"required,email"`
	Tone  string `validate:"omitempty,oneof=FORMAL FRIENDLY SHORT"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(createLeadPayload{Name: "Alex", Email: "alex@acme.com"}))
	})

	t.Run("missing required fields", func(t *testing.T) {
		err := ValidateStruct(createLeadPayload{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
		assert.Contains(t, err.Error(), "email is required")
	})

	t.Run("bad email", func(t *testing.T) {
		err := ValidateStruct(createLeadPayload{Name: "Alex", Email: "not-an-email"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email must be a valid email")
	})

	t.Run("oneof violation", func(t *testing.T) {
		err := ValidateStruct(createLeadPayload{Name: "Alex", Email: "alex@acme.com", Tone: "CASUAL"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tone must be one of FORMAL FRIENDLY SHORT")
	})
}

func TestGenerateRateLimitKey(t *testing.T) {
	assert.Equal(t, "rl:10.0.0.1:/api/v1/sync/replies", GenerateRateLimitKey("10.0.0.1", "/api/v1/sync/replies"))
}

func TestPointer(t *testing.T) {
	p := Pointer(42)
	require.NotNil(t, p)
	assert.Equal(t, 42, *p)
}
