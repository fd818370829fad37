package llm

import (
	"context"
	"time"
)

// Client defines the interface for model providers.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is a single naming request. Images are file paths that the
// provider encodes itself.
type Request struct {
	System string
	Prompt string
	Images []string
}

// Provider names.
const (
	ProviderOllama     = "ollama"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderClaudeCode = "claudecode"
)

// Config holds configuration for model clients.
type Config struct {
	Provider       string
	APIKey         string
	Model          string
	BaseURL        string
	ClaudeCodePath string
	MaxRetries     int
	RetryDelay     time.Duration
	Timeout        time.Duration
	RateLimit      int
	Temperature    float64
	MaxTokens      int
}

func (cfg Config) timeout() time.Duration {
	if cfg.Timeout <= 0 {
		return 2 * time.Minute
	}
	return cfg.Timeout
}

func (cfg Config) temperature() float64 {
	if cfg.Temperature == 0 {
		return 0.3
	}
	return cfg.Temperature
}

func (cfg Config) maxTokens() int {
	if cfg.MaxTokens == 0 {
		return 100
	}
	return cfg.MaxTokens
}
