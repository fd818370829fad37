package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/retitle/internal/common"
	"github.com/Veraticus/retitle/internal/llm"
)

// llmConfig builds the model client configuration from viper.
func llmConfig() (llm.Config, error) {
	provider := viper.GetString("llm.provider")
	if provider == "" {
		provider = llm.ProviderOllama
	}

	cfg := llm.Config{
		Provider:       provider,
		Model:          viper.GetString("llm.model"),
		BaseURL:        viper.GetString("llm.base_url"),
		APIKey:         viper.GetString("llm.api_key"),
		ClaudeCodePath: viper.GetString("llm.claude_code_path"),
		Temperature:    viper.GetFloat64("llm.temperature"),
		MaxTokens:      viper.GetInt("llm.max_tokens"),
		MaxRetries:     viper.GetInt("llm.max_retries"),
		RetryDelay:     viper.GetDuration("llm.retry_delay"),
		Timeout:        viper.GetDuration("llm.timeout"),
		RateLimit:      viper.GetInt("llm.rate_limit"),
	}

	// Provider-specific environment variables are the fallback for keys.
	switch provider {
	case llm.ProviderOpenAI:
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return llm.Config{}, common.NewUserError(
				"OpenAI API key not found in config, --api-key or OPENAI_API_KEY",
				common.ErrMissingConfig)
		}
	case llm.ProviderAnthropic:
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.APIKey == "" {
			return llm.Config{}, common.NewUserError(
				"Anthropic API key not found in config, --api-key or ANTHROPIC_API_KEY",
				common.ErrMissingConfig)
		}
	case llm.ProviderOllama, llm.ProviderClaudeCode:
	default:
		return llm.Config{}, fmt.Errorf("%w: unsupported model provider: %s", common.ErrInvalidConfig, provider)
	}

	return cfg, nil
}

// createNamer creates the rate-limited, retrying model client.
func createNamer() (*llm.Namer, error) {
	cfg, err := llmConfig()
	if err != nil {
		return nil, err
	}

	namer, err := llm.NewNamer(cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}
	return namer, nil
}
