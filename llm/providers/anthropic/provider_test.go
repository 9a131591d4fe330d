package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/llm"
)

func TestComplete(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey, gotVersion string
	var gotBody messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-3-5-haiku-latest",
			"content": []map[string]string{
				{"type": "text", "text": "first part. "},
				{"type": "text", "text": "second part."},
			},
		})
	}))
	defer srv.Close()

	p := New(Config{APIKey: "sk-ant", BaseURL: srv.URL}, zap.NewNop())
	resp, err := p.Complete(context.Background(), &llm.CompletionRequest{
		System: "you are a reviewer",
		Prompt: "compare these",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "sk-ant", gotKey)
	assert.Equal(t, apiVersion, gotVersion)
	assert.Equal(t, "claude-3-5-haiku-latest", gotBody.Model)
	assert.Equal(t, "you are a reviewer", gotBody.System)
	// The messages API demands an explicit token cap.
	assert.Equal(t, 1024, gotBody.MaxTokens)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)

	assert.Equal(t, "anthropic", resp.Provider)
	assert.Equal(t, "first part. second part.", resp.Text)
}

func TestComplete_ExplicitMaxTokens(t *testing.T) {
	t.Parallel()

	var gotBody messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "claude-3-5-haiku-latest",
			"content": []map[string]string{{"type": "text", "text": "ok"}},
		})
	}))
	defer srv.Close()

	p := New(Config{APIKey: "sk-ant", BaseURL: srv.URL}, zap.NewNop())
	_, err := p.Complete(context.Background(), &llm.CompletionRequest{
		Prompt:    "compare these",
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 256, gotBody.MaxTokens)
}

func TestComplete_Unauthorized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid x-api-key"}}`))
	}))
	defer srv.Close()

	p := New(Config{APIKey: "bad", BaseURL: srv.URL}, zap.NewNop())
	_, err := p.Complete(context.Background(), &llm.CompletionRequest{Prompt: "x"})
	require.Error(t, err)

	var provErr *llm.Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, llm.ErrUnauthorized, provErr.Code)
	assert.False(t, provErr.Retryable)
}

func TestComplete_ServerErrorIsRetryable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded"}}`))
	}))
	defer srv.Close()

	p := New(Config{APIKey: "sk-ant", BaseURL: srv.URL}, zap.NewNop())
	_, err := p.Complete(context.Background(), &llm.CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, llm.IsRetryable(err))
}
