package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/worker"
)

// Registry routes "provider:model" ids to providers. Providers are built
// on first use from the LLM configuration and every model id gets its own
// rate limit bucket.
type Registry struct {
	config    model.LLMConfig
	limiter   *worker.Limiter
	mu        sync.Mutex
	providers map[string]Provider
}

// NewRegistry creates a registry for the given LLM settings
func NewRegistry(config model.LLMConfig) *Registry {
	return &Registry{
		config:    config,
		limiter:   worker.NewLimiter(config.RequestsPerSecond, config.Burst),
		providers: make(map[string]Provider),
	}
}

// Register makes p serve every model id with its name as prefix
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Provider returns the provider for name, creating it if needed
func (r *Registry) Provider(name string) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "claude" {
		name = "anthropic"
	}
	if p, ok := r.providers[name]; ok {
		return p, nil
	}

	p, err := NewProvider(ConfigFromModel(r.config, name))
	if err != nil {
		return nil, err
	}
	r.providers[name] = p
	return p, nil
}

// Generate runs prompt on modelID, waiting for the model's rate limit first
func (r *Registry) Generate(ctx context.Context, prompt, modelID string) (string, error) {
	providerName, modelName, err := ParseModelID(modelID)
	if err != nil {
		return "", err
	}

	p, err := r.Provider(providerName)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", modelID, err)
	}

	if err := r.limiter.Wait(ctx, modelID); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := p.Generate(ctx, GenerateRequest{Prompt: prompt, Model: modelName})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
