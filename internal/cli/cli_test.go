package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/pipeline"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	got := flatten("", map[string]interface{}{
		"audit": map[string]interface{}{"backend": "file", "buffer_size": 64},
		"top":   "x",
	})
	assert.Equal(t, map[string]interface{}{
		"audit.backend":     "file",
		"audit.buffer_size": 64,
		"top":               "x",
	}, got)
}

func TestLoadSettings_DefaultsAndEnv(t *testing.T) {
	t.Setenv("QUIZGUARD_CONSENSUS_MIN_AGREEMENT", "0.9")
	t.Setenv("QUIZGUARD_AUDIT_BACKEND", "postgres")

	v := viper.New()
	require.NoError(t, setDefaults(v, model.DefaultConfig()))
	v.SetEnvPrefix("QUIZGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := loadSettings(v)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Consensus.MinAgreement)
	assert.Equal(t, "postgres", cfg.Audit.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Cache.MemoryTTL)
	assert.Equal(t, []model.SignalKind{model.SignalDomainRisk, model.SignalTemporal}, cfg.Scoring.MediumFloorKinds)
	assert.Equal(t, 0.75, cfg.Scoring.LowAtOrAbove)
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	err := writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadSettings(v)
	require.NoError(t, err)

	want := model.DefaultConfig()
	assert.Equal(t, want.Scoring.HighBelow, cfg.Scoring.HighBelow)
	assert.Equal(t, want.Review.HighRiskDomains, cfg.Review.HighRiskDomains)
	assert.Equal(t, want.Consensus.CallTimeout, cfg.Consensus.CallTimeout)
	assert.Equal(t, want.Cache.DiskTTL, cfg.Cache.DiskTTL)
	assert.Equal(t, want.LLM.Ollama.BaseURL, cfg.LLM.Ollama.BaseURL)
}

func TestMasked(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.OpenAI.APIKey = "sk-secret"
	cfg.Postgres.DSN = "postgres://u:p@db/quiz"

	out := masked(cfg)
	assert.Equal(t, "****", out.LLM.OpenAI.APIKey)
	assert.Equal(t, "****", out.Postgres.DSN)
	assert.Empty(t, out.LLM.Anthropic.APIKey)

	// The original is untouched
	assert.Equal(t, "sk-secret", cfg.LLM.OpenAI.APIKey)
}

func TestReadPrompt(t *testing.T) {
	defer func() { promptFile, promptText = "", "" }()

	promptFile, promptText = "", "  "
	_, err := readPrompt()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("Five questions on tides\n"), 0644))
	promptFile, promptText = path, ""
	got, err := readPrompt()
	require.NoError(t, err)
	assert.Equal(t, "Five questions on tides", got)

	promptFile, promptText = path, "inline"
	_, err = readPrompt()
	assert.Error(t, err)
}

const batchJSON = `{"questions": [
  {"id": "q1", "stem": "Which gas do plants absorb from the air?", "options": ["Oxygen", "Carbon dioxide"], "answer": "Carbon dioxide", "language": "en"},
  {"id": "q3", "stem": "Pick the even number", "options": ["1", "3"], "answer": "2", "language": "en"}
]}`

func TestValidateThenReleasable(t *testing.T) {
	dir := t.TempDir()
	questions := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(questions, []byte(batchJSON), 0644))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := fmt.Sprintf("audit:\n  backend: file\n  file_path: %s\ncache:\n  enabled: false\n", filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0644))

	outcomePath := filepath.Join(dir, "outcome.json")
	common := []string{"--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env")}

	_, err := execute(t, append([]string{"validate", questions, "--json", outcomePath}, common...)...)
	require.NoError(t, err)

	data, err := os.ReadFile(outcomePath)
	require.NoError(t, err)
	var outcome pipeline.Outcome
	require.NoError(t, json.Unmarshal(data, &outcome))

	assert.Equal(t, 2, outcome.Summary.TotalQuestions)
	assert.Equal(t, model.StateApproved, outcome.States["q1"])
	assert.Equal(t, model.StateRejected, outcome.States["q3"])

	out, err := execute(t, append([]string{"audit", "releasable", "q1"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "q1 is releasable")

	_, err = execute(t, append([]string{"audit", "releasable", "q3"}, common...)...)
	assert.Error(t, err)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestExplain(t *testing.T) {
	dir := t.TempDir()
	questions := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(questions, []byte(`[{"id": "q2", "stem": "Which treatment is used for a mild fever?", "options": ["Rest", "Surgery"], "answer": "Rest", "language": "en"}]`), 0644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cache:\n  enabled: false\n"), 0644))

	out, err := execute(t, "explain", questions, "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Contains(t, out, "q2  confidence 0.600  risk medium")
	assert.Contains(t, out, "(medicine)")
	assert.Contains(t, out, "domain_risk: 2 signal(s), -0.400")
}

func TestMemoryQueueWarning(t *testing.T) {
	cfg := model.DefaultConfig()
	assert.Empty(t, memoryQueueWarning(cfg, 0))

	warning := memoryQueueWarning(cfg, 2)
	assert.Contains(t, warning, "2 review item(s)")
	assert.Contains(t, warning, "review.backend: redis")

	cfg.Review.Backend = ""
	assert.NotEmpty(t, memoryQueueWarning(cfg, 1))

	cfg.Review.Backend = "redis"
	assert.Empty(t, memoryQueueWarning(cfg, 1))
}

func TestValidateWarnsAboutMemoryQueue(t *testing.T) {
	dir := t.TempDir()
	questions := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(questions, []byte(`[{"id": "q2", "stem": "Which treatment is used for a mild fever?", "options": ["Rest", "Surgery"], "answer": "Rest", "language": "en"}]`), 0644))
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := fmt.Sprintf("audit:\n  backend: file\n  file_path: %s\ncache:\n  enabled: false\n", filepath.Join(dir, "audit.jsonl"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0644))

	var stderr bytes.Buffer
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"validate", questions, "--json", filepath.Join(dir, "outcome.json"), "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env")})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, stderr.String(), "1 review item(s) are held in the in-memory queue")
}
