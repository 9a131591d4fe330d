package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokenscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"tiktoken", "bpe_offline", "wordpiece"}, cfg.Tokenizers)
	assert.False(t, cfg.UseMockTokenizers)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 50, cfg.MaxTokensToDisplay)
	assert.Equal(t, 10, cfg.TopFrequencies)
	assert.Equal(t, "openai", cfg.LLM.DefaultProvider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.RetryCount)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
tokenizers:
  - mock_whitespace
  - mock_char
use_mock_tokenizers: true
output_format: csv
max_tokens_to_display: 7
llm:
  default_provider: anthropic
  retry_count: 1
  timeout: 5s
  anthropic:
    api_key: sk-ant-test
`)

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"mock_whitespace", "mock_char"}, cfg.Tokenizers)
	assert.True(t, cfg.UseMockTokenizers)
	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, 7, cfg.MaxTokensToDisplay)
	assert.Equal(t, "anthropic", cfg.LLM.DefaultProvider)
	assert.Equal(t, 1, cfg.LLM.RetryCount)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "sk-ant-test", cfg.LLM.Anthropic.APIKey)
	// Untouched keys keep their defaults.
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.DefaultModel)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "tokenizers: [unclosed")
	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TOKENSCOPE_OUTPUT_FORMAT", "xlsx")
	t.Setenv("TOKENSCOPE_MAX_TOKENS_TO_DISPLAY", "5")
	t.Setenv("TOKENSCOPE_USE_MOCK_TOKENIZERS", "true")
	t.Setenv("TOKENSCOPE_TOKENIZERS", "mock_whitespace, mock_char")
	t.Setenv("TOKENSCOPE_LLM_TIMEOUT", "10s")
	t.Setenv("TOKENSCOPE_LLM_OPENAI_API_KEY", "sk-from-env")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "xlsx", cfg.OutputFormat)
	assert.Equal(t, 5, cfg.MaxTokensToDisplay)
	assert.True(t, cfg.UseMockTokenizers)
	assert.Equal(t, []string{"mock_whitespace", "mock_char"}, cfg.Tokenizers)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "sk-from-env", cfg.LLM.OpenAI.APIKey)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "output_format: csv\n")
	t.Setenv("TOKENSCOPE_OUTPUT_FORMAT", "xlsx")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "xlsx", cfg.OutputFormat)
}

func TestLoad_CustomEnvPrefix(t *testing.T) {
	t.Setenv("QUACK_OUTPUT_FORMAT", "csv")

	cfg, err := NewLoader().WithEnvPrefix("QUACK").Load()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.OutputFormat)
}

func TestLoad_ValidatorRejects(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewLoader().WithValidator(func(*Config) error { return boom }).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	empty := DefaultConfig()
	empty.Tokenizers = nil
	require.Error(t, Validate(empty))

	bad := DefaultConfig()
	bad.OutputFormat = "pdf"
	require.Error(t, Validate(bad))

	clamped := DefaultConfig()
	clamped.MaxTokensToDisplay = -1
	clamped.LLM.RetryCount = -2
	clamped.LLM.Timeout = 0
	require.NoError(t, Validate(clamped))
	assert.Equal(t, 0, clamped.MaxTokensToDisplay)
	assert.Equal(t, 0, clamped.LLM.RetryCount)
	assert.Equal(t, 30*time.Second, clamped.LLM.Timeout)
}
