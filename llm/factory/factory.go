// Package factory resolves the configured provider name to a concrete
// llm.Provider, validating credentials up front.
package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/llm"
	"github.com/quackverse/tokenscope/llm/providers/anthropic"
	"github.com/quackverse/tokenscope/llm/providers/openai"
	"github.com/quackverse/tokenscope/types"
)

// NewProvider builds the provider named by cfg.DefaultProvider.
// A missing API key is a configuration error, raised here before any
// comparison starts.
func NewProvider(cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	switch cfg.DefaultProvider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, missingKey("openai")
		}
		return openai.New(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.DefaultModel,
			Timeout: cfg.Timeout,
		}, logger), nil

	case "anthropic":
		if cfg.Anthropic.APIKey == "" {
			return nil, missingKey("anthropic")
		}
		return anthropic.New(anthropic.Config{
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: cfg.Anthropic.BaseURL,
			Model:   cfg.Anthropic.DefaultModel,
			Timeout: cfg.Timeout,
		}, logger), nil

	default:
		return nil, types.NewError(types.ErrInvalidConfig,
			fmt.Sprintf("unknown LLM provider %q", cfg.DefaultProvider))
	}
}

// DefaultModel returns the configured model for the selected provider.
func DefaultModel(cfg config.LLMConfig) string {
	switch cfg.DefaultProvider {
	case "openai":
		return cfg.OpenAI.DefaultModel
	case "anthropic":
		return cfg.Anthropic.DefaultModel
	}
	return ""
}

func missingKey(provider string) *types.Error {
	return types.NewError(types.ErrMissingCredentials,
		fmt.Sprintf("no API key configured for provider %q", provider)).
		WithProvider(provider)
}
