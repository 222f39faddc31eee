package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpilot/config"
)

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripJSONFences(tt.input))
		})
	}
}

func newTestClient(baseURL, apiKey string) *AIClient {
	return NewAIClient(config.AIConfig{
		APIKey:  apiKey,
		Model:   "test-model",
		BaseURL: baseURL,
	})
}

func chatReply(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestAIClientCall(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		client := newTestClient("http://localhost", "")
		assert.False(t, client.Configured())
		_, err := client.Call("prompt", "", false)
		assert.True(t, errors.Is(err, ErrAPIKeyMissing))
	})

	t.Run("successful call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req["model"])

			w.Write([]byte(chatReply("hello")))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, "test-key")
		got, err := client.Call("prompt", "", false)
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("json mode strips fences and sets response format", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			rf, ok := req["response_format"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "json_object", rf["type"])

			w.Write([]byte(chatReply("```json\n{\"a\":1}\n```")))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, "test-key")
		got, err := client.Call("prompt", "", true)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, got)
	})

	t.Run("non-200 is an upstream error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limited"}`))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, "test-key")
		_, err := client.Call("prompt", "", false)
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	})

	t.Run("empty choices is a parse error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		client := newTestClient(srv.URL, "test-key")
		_, err := client.Call("prompt", "", false)
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
	})
}
