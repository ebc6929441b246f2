package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/quizguard/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel builds the provider config for name from model.LLMConfig
func ConfigFromModel(llmConfig model.LLMConfig, name string) Config {
	cfg := Config{
		Provider:    name,
		Timeout:     llmConfig.Timeout,
		MaxTokens:   llmConfig.MaxTokens,
		Temperature: llmConfig.Temperature,
		HTTPProxy:   llmConfig.HTTPProxy,
		HTTPSProxy:  llmConfig.HTTPSProxy,
		NoProxy:     llmConfig.NoProxy,
	}

	var pc model.ProviderConfig
	switch strings.ToLower(name) {
	case "openai":
		pc = llmConfig.OpenAI
	case "anthropic", "claude":
		pc = llmConfig.Anthropic
	case "ollama":
		pc = llmConfig.Ollama
	}
	cfg.APIKey = pc.APIKey
	cfg.BaseURL = pc.BaseURL
	return cfg
}
