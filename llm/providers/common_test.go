package providers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quackverse/tokenscope/llm"
)

func TestMapHTTPError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status    int
		code      llm.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, llm.ErrUnauthorized, false},
		{http.StatusForbidden, llm.ErrUnauthorized, false},
		{http.StatusTooManyRequests, llm.ErrRateLimited, true},
		{http.StatusBadRequest, llm.ErrInvalidRequest, false},
		{http.StatusGatewayTimeout, llm.ErrUpstreamTimeout, true},
		{http.StatusInternalServerError, llm.ErrUpstreamError, true},
		{http.StatusBadGateway, llm.ErrUpstreamError, true},
		{http.StatusTeapot, llm.ErrUpstreamError, false},
	}

	for _, tc := range cases {
		err := MapHTTPError(tc.status, "boom", "openai")
		assert.Equal(t, tc.code, err.Code, "status %d", tc.status)
		assert.Equal(t, tc.retryable, err.Retryable, "status %d", tc.status)
		assert.Equal(t, tc.status, err.HTTPStatus)
		assert.Equal(t, "openai", err.Provider)
	}
}

func TestWrapTransportError(t *testing.T) {
	t.Parallel()

	timeout := WrapTransportError(
		assert.AnError, "anthropic")
	assert.Equal(t, llm.ErrUpstreamError, timeout.Code)
	assert.True(t, timeout.Retryable)

	deadline := WrapTransportError(
		&timeoutErr{"Post: context deadline exceeded"}, "anthropic")
	assert.Equal(t, llm.ErrUpstreamTimeout, deadline.Code)
	assert.True(t, deadline.Retryable)
	assert.Equal(t, http.StatusGatewayTimeout, deadline.HTTPStatus)
}

type timeoutErr struct{ msg string }

func (e *timeoutErr) Error() string { return e.msg }

func TestReadErrorMessage(t *testing.T) {
	t.Parallel()

	msg := ReadErrorMessage(strings.NewReader(
		`{"error": {"message": "invalid api key", "type": "auth_error"}}`))
	assert.Equal(t, "invalid api key (type: auth_error)", msg)

	msg = ReadErrorMessage(strings.NewReader(`{"error": {"message": "rate limited"}}`))
	assert.Equal(t, "rate limited", msg)

	msg = ReadErrorMessage(strings.NewReader("plain text failure"))
	assert.Equal(t, "plain text failure", msg)
}

func TestChooseModel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "req", ChooseModel("req", "cfg", "fallback"))
	assert.Equal(t, "cfg", ChooseModel("", "cfg", "fallback"))
	assert.Equal(t, "fallback", ChooseModel("", "", "fallback"))
}

func TestLimiterConfigured(t *testing.T) {
	t.Parallel()

	require.NotNil(t, Limiter)
	assert.Equal(t, 4, Limiter.Burst())
}
