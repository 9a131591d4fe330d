package config

import "time"

// DefaultConfig returns sensible defaults for every configuration
// item.
func DefaultConfig() *Config {
	return &Config{
		Tokenizers:         []string{"tiktoken", "bpe_offline", "wordpiece"},
		UseMockTokenizers:  false,
		OutputFormat:       "json",
		MaxTokensToDisplay: 50,
		TopFrequencies:     10,
		LLM:                DefaultLLMConfig(),
		Log:                DefaultLogConfig(),
	}
}

// DefaultLLMConfig returns the default reviewer configuration.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		DefaultProvider: "openai",
		Timeout:         30 * time.Second,
		RetryCount:      3,
		OpenAI: ProviderConfig{
			DefaultModel: "gpt-4o-mini",
			BaseURL:      "https://api.openai.com",
		},
		Anthropic: ProviderConfig{
			DefaultModel: "claude-3-5-haiku-latest",
			BaseURL:      "https://api.anthropic.com",
		},
	}
}

// DefaultLogConfig returns the default log configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "console",
	}
}

// Validate checks cross-field consistency. It is registered as the
// default validator by the CLI.
func Validate(cfg *Config) error {
	if len(cfg.Tokenizers) == 0 {
		return errEmptyTokenizers
	}
	switch cfg.OutputFormat {
	case "json", "csv", "xlsx":
	default:
		return errBadOutputFormat(cfg.OutputFormat)
	}
	if cfg.MaxTokensToDisplay < 0 {
		cfg.MaxTokensToDisplay = 0
	}
	if cfg.LLM.RetryCount < 0 {
		cfg.LLM.RetryCount = 0
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	return nil
}
