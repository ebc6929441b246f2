package cache

import (
	"encoding/json"
	"time"

	"github.com/ppiankov/quizguard/internal/logging"
	"github.com/ppiankov/quizguard/internal/metrics"
	"github.com/ppiankov/quizguard/internal/model"
	"go.uber.org/zap"
)

// Validator validates a single question
type Validator interface {
	Validate(q model.Question) model.ValidationResult
}

// CachingValidator serves repeat validations from a cache. Validation is
// deterministic, so a cached result is identical to a fresh one.
type CachingValidator struct {
	inner     Validator
	cache     Cache
	namespace string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewCachingValidator wraps inner. A nil cache disables caching.
func NewCachingValidator(inner Validator, c Cache, namespace string, ttl time.Duration, logger *zap.Logger) *CachingValidator {
	return &CachingValidator{
		inner:     inner,
		cache:     c,
		namespace: namespace,
		ttl:       ttl,
		logger:    logging.OrNop(logger),
	}
}

// Validate returns the cached result for q or computes and stores it
func (v *CachingValidator) Validate(q model.Question) model.ValidationResult {
	if v.cache == nil {
		return v.inner.Validate(q)
	}

	key := ResultKey(v.namespace, q)
	if data, ok := v.cache.Get(key); ok {
		var result model.ValidationResult
		if err := json.Unmarshal(data, &result); err == nil {
			metrics.ValidationCacheHits.Inc()
			return result
		}
		v.logger.Warn("discarding unreadable cache entry", zap.String("question_id", q.ID))
		_ = v.cache.Delete(key)
	}

	result := v.inner.Validate(q)

	data, err := json.Marshal(result)
	if err != nil {
		return result
	}
	if err := v.cache.Set(key, data, v.ttl); err != nil {
		v.logger.Warn("cache write failed", zap.String("question_id", q.ID), zap.Error(err))
	}
	return result
}
