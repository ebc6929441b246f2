package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a completion for the prompt
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one completion
type GenerateRequest struct {
	// Prompt is the user prompt
	Prompt string

	// System overrides DefaultSystemPrompt when set
	System string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the model's output
type GenerateResponse struct {
	// Text is the generated text
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name used when a request names none
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling; quiz generation favours low values
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:     30,
		MaxTokens:   2000,
		Temperature: 0.3,
	}
}

// DefaultSystemPrompt asks for machine-readable quiz output
const DefaultSystemPrompt = `You write quiz questions for learners.
Respond with a JSON array only. Each element has the fields:
"id", "stem", "options" (for mcq), "answer", "type" ("mcq", "true_false" or "fill_blank"), "topic" and "language".
Prefer conceptual questions over exact dates, counts and names. Do not invent facts.`

func systemPrompt(req GenerateRequest) string {
	if strings.TrimSpace(req.System) != "" {
		return req.System
	}
	return DefaultSystemPrompt
}

func resolveModel(req GenerateRequest, config Config, fallback string) string {
	if req.Model != "" {
		return req.Model
	}
	if config.Model != "" {
		return config.Model
	}
	return fallback
}

func resolveMaxTokens(req GenerateRequest, config Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if config.MaxTokens > 0 {
		return config.MaxTokens
	}
	return 2000
}

// ParseModelID splits "provider:model" into its parts
func ParseModelID(id string) (provider, model string, err error) {
	provider, model, ok := strings.Cut(id, ":")
	if !ok || provider == "" || model == "" {
		return "", "", fmt.Errorf("invalid model id %q (want provider:model)", id)
	}
	return strings.ToLower(provider), model, nil
}
