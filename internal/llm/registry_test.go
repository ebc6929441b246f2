package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	calls []GenerateRequest
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &GenerateResponse{Text: s.text, Model: req.Model}, nil
}

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func TestParseModelID(t *testing.T) {
	provider, name, err := ParseModelID("OpenAI:gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai", provider)
	assert.Equal(t, "gpt-4o-mini", name)

	// Ollama tags carry their own colon
	provider, name, err = ParseModelID("ollama:llama3.1:8b")
	require.NoError(t, err)
	assert.Equal(t, "ollama", provider)
	assert.Equal(t, "llama3.1:8b", name)

	for _, bad := range []string{"", "gpt-4o", ":gpt-4o", "openai:"} {
		_, _, err := ParseModelID(bad)
		assert.Error(t, err, bad)
	}
}

func TestRegistry_RegisteredProvider(t *testing.T) {
	stub := &stubProvider{name: "stub", text: "answer"}
	r := NewRegistry(model.LLMConfig{})
	r.Register(stub)

	text, err := r.Generate(context.Background(), "prompt", "stub:m1")
	require.NoError(t, err)
	assert.Equal(t, "answer", text)
	require.Len(t, stub.calls, 1)
	assert.Equal(t, "m1", stub.calls[0].Model)
	assert.Equal(t, "prompt", stub.calls[0].Prompt)
}

func TestRegistry_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(model.LLMConfig{})
	r.Register(&stubProvider{name: "stub", err: boom})

	_, err := r.Generate(context.Background(), "prompt", "stub:m1")
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_UnknownProvider(t *testing.T) {
	r := NewRegistry(model.LLMConfig{})

	_, err := r.Generate(context.Background(), "prompt", "nope:m1")
	assert.Error(t, err)

	_, err = r.Generate(context.Background(), "prompt", "no-colon")
	assert.Error(t, err)
}

func TestRegistry_BuildsProviderFromConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: req.Model, Response: "from " + req.Model, Done: true})
	}))
	defer server.Close()

	cfg := model.LLMConfig{
		Timeout: 5,
		Ollama:  model.ProviderConfig{BaseURL: server.URL},
	}
	r := NewRegistry(cfg)

	text, err := r.Generate(context.Background(), "prompt", "ollama:mistral")
	require.NoError(t, err)
	assert.Equal(t, "from mistral", text)

	// The provider is reused for later calls
	p1, err := r.Provider("ollama")
	require.NoError(t, err)
	p2, err := r.Provider("ollama")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
}

func TestRegistry_MissingCredentials(t *testing.T) {
	r := NewRegistry(model.LLMConfig{})

	_, err := r.Generate(context.Background(), "prompt", "openai:gpt-4o-mini")
	assert.Error(t, err)
}

func TestRegistry_RateLimitHonoursContext(t *testing.T) {
	r := NewRegistry(model.LLMConfig{RequestsPerSecond: 0.001, Burst: 1})
	r.Register(&stubProvider{name: "stub", text: "ok"})

	_, err := r.Generate(context.Background(), "prompt", "stub:m1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Generate(ctx, "prompt", "stub:m1")
	assert.Error(t, err)
}
