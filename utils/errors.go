package utils

import (
	"errors"
	"fmt"
)

// ErrAPIKeyMissing is returned when the AI gateway is called without a
// configured credential. There is no fallback at the gateway layer.
var ErrAPIKeyMissing = errors.New("OPENROUTER_API_KEY not configured")

// UpstreamError is a failed remote call: non-200 status or a transport error
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream call failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ParseError is a response that came back but did not match the expected schema
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
