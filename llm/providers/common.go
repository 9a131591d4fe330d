// Package providers holds the HTTP plumbing shared by the concrete
// LLM provider implementations.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/quackverse/tokenscope/llm"
)

// Limiter is the shared client-side rate limiter for outbound provider
// calls. Commentary is a single call per comparison; the limiter only
// matters when many comparisons run back to back.
var Limiter = rate.NewLimiter(rate.Limit(2), 4)

// WaitLimiter blocks until the shared limiter admits the call, or the
// context is cancelled.
func WaitLimiter(ctx context.Context, provider string) error {
	if err := Limiter.Wait(ctx); err != nil {
		return &llm.Error{
			Code:      llm.ErrUpstreamTimeout,
			Message:   fmt.Sprintf("rate limiter wait cancelled: %v", err),
			Retryable: false,
			Provider:  provider,
		}
	}
	return nil
}

// MapHTTPError maps an HTTP status to an llm.Error with the proper
// retryable marker. Shared by every provider.
func MapHTTPError(status int, msg string, provider string) *llm.Error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llm.Error{
			Code:       llm.ErrUnauthorized,
			Message:    msg,
			HTTPStatus: status,
			Provider:   provider,
		}
	case http.StatusTooManyRequests:
		return &llm.Error{
			Code:       llm.ErrRateLimited,
			Message:    msg,
			HTTPStatus: status,
			Retryable:  true,
			Provider:   provider,
		}
	case http.StatusBadRequest:
		return &llm.Error{
			Code:       llm.ErrInvalidRequest,
			Message:    msg,
			HTTPStatus: status,
			Provider:   provider,
		}
	case http.StatusGatewayTimeout:
		return &llm.Error{
			Code:       llm.ErrUpstreamTimeout,
			Message:    msg,
			HTTPStatus: status,
			Retryable:  true,
			Provider:   provider,
		}
	default:
		return &llm.Error{
			Code:       llm.ErrUpstreamError,
			Message:    msg,
			HTTPStatus: status,
			Retryable:  status >= 500,
			Provider:   provider,
		}
	}
}

// WrapTransportError converts a transport-level failure into an
// llm.Error, distinguishing timeouts from other network errors.
func WrapTransportError(err error, provider string) *llm.Error {
	if ctxErr := contextCause(err); ctxErr != "" {
		return &llm.Error{
			Code:       llm.ErrUpstreamTimeout,
			Message:    ctxErr,
			HTTPStatus: http.StatusGatewayTimeout,
			Retryable:  true,
			Provider:   provider,
		}
	}
	return &llm.Error{
		Code:       llm.ErrUpstreamError,
		Message:    err.Error(),
		HTTPStatus: http.StatusBadGateway,
		Retryable:  true,
		Provider:   provider,
	}
}

func contextCause(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "Client.Timeout exceeded") {
		return msg
	}
	return ""
}

// ReadErrorMessage extracts the error message from a provider error
// body, falling back to the raw text.
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}
	return string(data)
}

// ChooseModel picks the request model, then the configured default.
func ChooseModel(requested, configured, fallback string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return fallback
}
