// Package config provides the TokenScope configuration surface:
// defaults, YAML file loading, and environment variable overrides.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("tokenscope.yaml").
//	    WithEnvPrefix("TOKENSCOPE").
//	    Load()
//
// Precedence: defaults -> YAML file -> environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete TokenScope configuration.
type Config struct {
	// Tokenizers is the ordered default tokenizer selection.
	Tokenizers []string `yaml:"tokenizers" env:"TOKENIZERS"`

	// UseMockTokenizers substitutes deterministic mocks for every
	// backend, so no network or model loading occurs.
	UseMockTokenizers bool `yaml:"use_mock_tokenizers" env:"USE_MOCK_TOKENIZERS"`

	// WordpieceVocab is the vocab.txt path for the wordpiece backend.
	// The backend reports itself unavailable when empty.
	WordpieceVocab string `yaml:"wordpiece_vocab" env:"WORDPIECE_VOCAB"`

	// OutputFormat selects the export writer: json, csv, or xlsx.
	OutputFormat string `yaml:"output_format" env:"OUTPUT_FORMAT"`

	// MaxTokensToDisplay caps human-readable token previews.
	MaxTokensToDisplay int `yaml:"max_tokens_to_display" env:"MAX_TOKENS_TO_DISPLAY"`

	// TopFrequencies is the number of token-frequency rows kept per
	// adapter; 0 disables frequency tables.
	TopFrequencies int `yaml:"top_frequencies" env:"TOP_FREQUENCIES"`

	// CostModel prices token counts against this model's rates; empty
	// disables cost estimates.
	CostModel string `yaml:"cost_model" env:"COST_MODEL"`

	// AssumedOutputTokens is added to cost estimates as completion
	// tokens.
	AssumedOutputTokens int `yaml:"assumed_output_tokens" env:"ASSUMED_OUTPUT_TOKENS"`

	// EnableReview requests LLM commentary on every comparison.
	EnableReview bool `yaml:"enable_review" env:"ENABLE_REVIEW"`

	LLM LLMConfig `yaml:"llm" env:"LLM"`
	Log LogConfig `yaml:"log" env:"LOG"`
}

// LLMConfig configures the optional commentary reviewer.
type LLMConfig struct {
	// DefaultProvider names the provider used for commentary.
	DefaultProvider string `yaml:"default_provider" env:"DEFAULT_PROVIDER"`
	// Timeout bounds a single provider call.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// RetryCount is the number of retries after the first attempt.
	RetryCount int `yaml:"retry_count" env:"RETRY_COUNT"`

	OpenAI    ProviderConfig `yaml:"openai" env:"OPENAI"`
	Anthropic ProviderConfig `yaml:"anthropic" env:"ANTHROPIC"`
}

// ProviderConfig holds one provider's credentials and defaults.
type ProviderConfig struct {
	APIKey       string `yaml:"api_key" env:"API_KEY"`
	DefaultModel string `yaml:"default_model" env:"DEFAULT_MODEL"`
	BaseURL      string `yaml:"base_url" env:"BASE_URL"`
}

// LogConfig configures zap.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json or console.
	Format string `yaml:"format" env:"FORMAT"`
}

// Loader loads configuration (builder pattern).
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "TOKENSCOPE",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator appends a config validator.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load loads the configuration.
// Precedence: defaults -> YAML file -> environment variables.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile loads the YAML file; a missing file falls back to
// defaults.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv walks struct fields recursively, overriding from
// PREFIX_TAG environment variables.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// Comma-separated string slices.
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads the configuration, panicking on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}
