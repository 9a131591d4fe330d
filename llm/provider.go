// Package llm defines the provider contract for the optional report
// commentary, and the reviewer that drives it under a retry/timeout
// policy. Provider failures degrade the report; they never fail the
// comparison.
package llm

import (
	"context"
	"net/http"
	"time"
)

// ErrorCode classifies provider failures for retry decisions.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "PROVIDER_INVALID_REQUEST"
	ErrUnauthorized    ErrorCode = "PROVIDER_UNAUTHORIZED"
	ErrRateLimited     ErrorCode = "PROVIDER_RATE_LIMITED"
	ErrUpstreamTimeout ErrorCode = "PROVIDER_UPSTREAM_TIMEOUT"
	ErrUpstreamError   ErrorCode = "PROVIDER_UPSTREAM_ERROR"
)

// Error is the structured provider error. Retryable marks transient
// failures (timeouts, server errors, rate limits); permanent failures
// (authentication, malformed requests) are not retried.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
}

func (e *Error) Error() string { return e.Message }

// CompletionRequest is a single-prompt completion call.
type CompletionRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Prompt      string        `json:"prompt"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
}

// CompletionResponse is the provider's text answer.
type CompletionResponse struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model"`
	Text     string `json:"text"`
}

// Provider is the uniform LLM adapter interface.
type Provider interface {
	// Complete issues a synchronous completion request.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider's unique identifier.
	Name() string
}

// IsRetryable reports whether a provider error is transient.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// NewHTTPClient builds the provider HTTP client with the shared
// transport settings.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
