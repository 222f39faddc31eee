package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"leadpilot/config"
)

const (
	// Generation calls (next action, draft) get the long timeout,
	// scoring calls run on the sync path and get the short one.
	GenerationTimeout = 60 * time.Second
	ScoringTimeout    = 10 * time.Second
)

var (
	fenceOpenRe  = regexp.MustCompile("(?m)^```(?:json)?\\s*")
	fenceCloseRe = regexp.MustCompile("(?m)\\s*```$")
)

// AIClient is a thin client for an OpenRouter-compatible chat completion API.
// No retries happen here; retry policy belongs to the caller.
type AIClient struct {
	cfg    config.AIConfig
	client *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewAIClient(cfg config.AIConfig) *AIClient {
	return &AIClient{
		cfg:    cfg,
		client: &http.Client{},
	}
}

// Configured reports whether a credential is available
func (a *AIClient) Configured() bool {
	return a.cfg.APIKey != ""
}

// Call invokes the chat completion endpoint with the generation timeout
func (a *AIClient) Call(prompt, systemMessage string, jsonMode bool) (string, error) {
	return a.CallTimeout(prompt, systemMessage, jsonMode, GenerationTimeout)
}

// CallTimeout invokes the chat completion endpoint and returns the raw content
// of the first choice. When jsonMode is set, the system message demands raw
// JSON and markdown code fences are stripped from the response, since models
// add them despite instructions.
func (a *AIClient) CallTimeout(prompt, systemMessage string, jsonMode bool, timeout time.Duration) (string, error) {
	if !a.Configured() {
		return "", ErrAPIKeyMissing
	}

	if systemMessage == "" {
		systemMessage = "You are a helpful AI assistant."
	}
	if jsonMode {
		systemMessage += " You MUST reply with valid JSON only. Do not wrap in markdown code blocks."
	}

	reqBody := chatRequest{
		Model: a.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2, // low temperature for consistent formatting
	}
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, a.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "LeadPilot")

	logrus.WithField("model", a.cfg.Model).Debug("Calling AI gateway")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"model":  a.cfg.Model,
		}).Error("AI gateway returned non-200")
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ParseError{Raw: string(body), Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &ParseError{Raw: string(body), Err: fmt.Errorf("response contains no choices")}
	}

	content := parsed.Choices[0].Message.Content
	if jsonMode {
		content = StripJSONFences(content)
	}
	return content, nil
}

// StripJSONFences removes leading/trailing markdown code fence markers
// (``` or ```json) from a model response
func StripJSONFences(text string) string {
	text = fenceOpenRe.ReplaceAllString(text, "")
	text = fenceCloseRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
