package cache

import (
	"testing"
	"time"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type countingValidator struct {
	calls int
}

func (c *countingValidator) Validate(q model.Question) model.ValidationResult {
	c.calls++
	return model.ValidationResult{
		QuestionID:      q.ID,
		ConfidenceScore: 0.85,
		RiskLevel:       model.RiskLow,
		Valid:           true,
		Issues:          []model.Issue{{Category: model.IssueClaim, Message: "References named entities: \"Paris\""}},
		Suggestions:     []string{"Check names against the source material"},
	}
}

func TestCachingValidator_ServesRepeats(t *testing.T) {
	inner := &countingValidator{}
	v := NewCachingValidator(inner, NewMemoryCache(time.Minute, time.Minute), "ns", 0, zaptest.NewLogger(t))

	q := model.Question{ID: "q1", Stem: "Which city is in France?", Type: model.QuestionTypeMCQ}
	first := v.Validate(q)
	second := v.Validate(q)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
}

func TestCachingValidator_NamespaceIsolation(t *testing.T) {
	inner := &countingValidator{}
	shared := NewMemoryCache(time.Minute, time.Minute)
	q := model.Question{ID: "q1", Stem: "s"}

	NewCachingValidator(inner, shared, "rules-a", 0, nil).Validate(q)
	NewCachingValidator(inner, shared, "rules-b", 0, nil).Validate(q)

	assert.Equal(t, 2, inner.calls)
}

func TestCachingValidator_NilCache(t *testing.T) {
	inner := &countingValidator{}
	v := NewCachingValidator(inner, nil, "ns", 0, nil)

	q := model.Question{ID: "q1"}
	v.Validate(q)
	v.Validate(q)

	assert.Equal(t, 2, inner.calls)
}

func TestCachingValidator_CorruptEntry(t *testing.T) {
	inner := &countingValidator{}
	c := NewMemoryCache(time.Minute, time.Minute)
	q := model.Question{ID: "q1"}
	_ = c.Set(ResultKey("ns", q), []byte("{broken"), 0)

	v := NewCachingValidator(inner, c, "ns", 0, zaptest.NewLogger(t))
	result := v.Validate(q)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "q1", result.QuestionID)

	// The recomputed result replaced the corrupt entry
	v.Validate(q)
	assert.Equal(t, 1, inner.calls)
}
