package model

import "time"

// Config is the complete quizguard configuration.
// Hierarchy: CLI flags > QUIZGUARD_* env > config file > DefaultConfig.
type Config struct {
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
	Rules         RulesConfig         `mapstructure:"rules" yaml:"rules"`
	Scoring       ScoringConfig       `mapstructure:"scoring" yaml:"scoring"`
	Contradiction ContradictionConfig `mapstructure:"contradiction" yaml:"contradiction"`
	Consensus     ConsensusConfig     `mapstructure:"consensus" yaml:"consensus"`
	Review        ReviewConfig        `mapstructure:"review" yaml:"review"`
	Audit         AuditConfig         `mapstructure:"audit" yaml:"audit"`
	Redis         RedisConfig         `mapstructure:"redis" yaml:"redis"`
	Postgres      PostgresConfig      `mapstructure:"postgres" yaml:"postgres"`
	Cache         CacheConfig         `mapstructure:"cache" yaml:"cache"`
	LLM           LLMConfig           `mapstructure:"llm" yaml:"llm"`
	Concurrency   ConcurrencyConfig   `mapstructure:"concurrency" yaml:"concurrency"`
}

// LoggingConfig selects the zap level and encoding
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // json, console
}

// RulesConfig points at an optional rule table overriding the embedded defaults
type RulesConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ScoringConfig holds the risk classification thresholds
type ScoringConfig struct {
	HighBelow          float64      `mapstructure:"high_below" yaml:"high_below"`           // score < this -> high
	LowAtOrAbove       float64      `mapstructure:"low_at_or_above" yaml:"low_at_or_above"` // score >= this -> low
	MinValidConfidence float64      `mapstructure:"min_valid_confidence" yaml:"min_valid_confidence"`
	MediumFloorKinds   []SignalKind `mapstructure:"medium_floor_kinds" yaml:"medium_floor_kinds"` // domain_risk always floors; these add kinds
}

// ContradictionConfig bounds and tunes pairwise contradiction detection
type ContradictionConfig struct {
	MaxBatch            int     `mapstructure:"max_batch" yaml:"max_batch"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold"` // numeric facts
	SameStemThreshold   float64 `mapstructure:"same_stem_threshold" yaml:"same_stem_threshold"`   // polarity and answer checks
}

// ConsensusConfig controls multi-model reconciliation
type ConsensusConfig struct {
	Models       []string      `mapstructure:"models" yaml:"models"` // provider:model ids
	MinAgreement float64       `mapstructure:"min_agreement" yaml:"min_agreement"`
	MinSuccesses int           `mapstructure:"min_successes" yaml:"min_successes"`
	Quorum       int           `mapstructure:"quorum" yaml:"quorum"` // stop after this many successes; 0 waits for all
	CallTimeout  time.Duration `mapstructure:"call_timeout" yaml:"call_timeout"`
	Concurrency  int           `mapstructure:"concurrency" yaml:"concurrency"`
	Similarity   string        `mapstructure:"similarity" yaml:"similarity"` // jaccard, cosine
}

// ReviewConfig controls routing to the human review queue
type ReviewConfig struct {
	Backend         string   `mapstructure:"backend" yaml:"backend"` // memory, redis
	HighRiskDomains []string `mapstructure:"high_risk_domains" yaml:"high_risk_domains"`
}

// AuditConfig selects the append-only audit store
type AuditConfig struct {
	Backend    string `mapstructure:"backend" yaml:"backend"` // memory, file, redis, postgres
	FilePath   string `mapstructure:"file_path" yaml:"file_path"`
	BufferSize int    `mapstructure:"buffer_size" yaml:"buffer_size"`
}

// RedisConfig configures the Redis audit stream and review queue
type RedisConfig struct {
	Address   string `mapstructure:"address" yaml:"address"`
	Password  string `mapstructure:"password" yaml:"password"`
	DB        int    `mapstructure:"db" yaml:"db"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
}

// PostgresConfig configures the PostgreSQL audit store
type PostgresConfig struct {
	DSN            string `mapstructure:"dsn" yaml:"dsn"`
	Table          string `mapstructure:"table" yaml:"table"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
}

// CacheConfig controls the validation result cache
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskDir   string        `mapstructure:"disk_dir" yaml:"disk_dir"` // empty disables the disk layer
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// LLMConfig configures the model adapters
type LLMConfig struct {
	Timeout           int     `mapstructure:"timeout" yaml:"timeout"` // seconds
	MaxTokens         int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature       float32 `mapstructure:"temperature" yaml:"temperature"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`

	OpenAI    ProviderConfig `mapstructure:"openai" yaml:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic" yaml:"anthropic"`
	Ollama    ProviderConfig `mapstructure:"ollama" yaml:"ollama"`

	HTTPProxy  string `mapstructure:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy string `mapstructure:"https_proxy" yaml:"https_proxy"`
	NoProxy    string `mapstructure:"no_proxy" yaml:"no_proxy"`
}

// ProviderConfig holds credentials and endpoint for one provider
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// ConcurrencyConfig sizes the batch validation worker pool
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Scoring: ScoringConfig{
			HighBelow:          0.5,
			LowAtOrAbove:       0.75,
			MinValidConfidence: 0.6,
			MediumFloorKinds:   []SignalKind{SignalDomainRisk, SignalTemporal},
		},
		Contradiction: ContradictionConfig{
			MaxBatch:            1000,
			SimilarityThreshold: 0.5,
			SameStemThreshold:   0.8,
		},
		Consensus: ConsensusConfig{
			MinAgreement: 0.8,
			MinSuccesses: 2,
			CallTimeout:  60 * time.Second,
			Concurrency:  4,
			Similarity:   "jaccard",
		},
		Review: ReviewConfig{
			Backend:         "memory",
			HighRiskDomains: []string{"medicine", "law", "finance"},
		},
		Audit: AuditConfig{
			Backend:    "file",
			FilePath:   "quizguard-audit.jsonl",
			BufferSize: 64,
		},
		Redis: RedisConfig{
			Address:   "localhost:6379",
			KeyPrefix: "quizguard",
		},
		Postgres: PostgresConfig{
			Table:          "audit_entries",
			MaxConnections: 5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		LLM: LLMConfig{
			Timeout:           60,
			MaxTokens:         2000,
			Temperature:       0.3,
			RequestsPerSecond: 2,
			Burst:             2,
			Ollama:            ProviderConfig{BaseURL: "http://localhost:11434"},
		},
		Concurrency: ConcurrencyConfig{Workers: 8},
	}
}
