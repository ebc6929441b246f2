package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/ppiankov/quizguard/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// New builds the cache described by cfg. It returns nil when caching is disabled.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.DiskDir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.DiskDir, cfg.DiskTTL)
}

// ResultKey identifies the validation of q under one configuration.
// namespace must change whenever rules or scoring thresholds change.
func ResultKey(namespace string, q model.Question) string {
	data, _ := json.Marshal(q) // Question has only plain fields
	h := sha256.New()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write(data)
	return "quizguard:v1:" + hex.EncodeToString(h.Sum(nil))
}

// Namespace combines the rule fingerprint and scoring thresholds
func Namespace(rulesFingerprint string, scoring model.ScoringConfig) string {
	data, _ := json.Marshal(scoring)
	sum := sha256.Sum256(data)
	return rulesFingerprint + ":" + hex.EncodeToString(sum[:8])
}
