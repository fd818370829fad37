package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/retitle/internal/common"
)

// NewClient creates a raw model client based on the provided configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOllama:
		return newOllamaClient(cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	case ProviderClaudeCode:
		return newClaudeCodeClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported model provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
}
