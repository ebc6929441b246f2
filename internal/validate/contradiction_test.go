package validate

import (
	"errors"
	"testing"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	v, rules := newTestValidator(t)
	return NewDetector(v, rules, model.DefaultConfig().Contradiction)
}

func TestDetector_DifferentCountsForSameEvent(t *testing.T) {
	d := newTestDetector(t)

	contradictions, err := d.Detect([]model.Question{
		{
			ID:     "q2",
			Stem:   "Exactly ___ soldiers fought at the Battle of Thermopylae in 480 BC.",
			Answer: "7000",
			Type:   model.QuestionTypeFillBlank,
			Topic:  "history",
		},
		{
			ID:      "q1",
			Stem:    "How many soldiers fought at the Battle of Thermopylae in 480 BC?",
			Options: []string{"300", "7000"},
			Answer:  "300",
			Type:    model.QuestionTypeMCQ,
			Topic:   "history",
		},
	})
	require.NoError(t, err)
	require.Len(t, contradictions, 1)

	c := contradictions[0]
	assert.Equal(t, "q1", c.Question1)
	assert.Equal(t, "q2", c.Question2)
	assert.Equal(t, model.ContradictionNumeric, c.Kind)
	assert.Contains(t, c.Description, "300 vs 7000")
}

func TestDetector_TrueStatementsWithDifferentCounts(t *testing.T) {
	d := newTestDetector(t)

	contradictions, err := d.Detect([]model.Question{
		{ID: "a", Stem: "Exactly 300 soldiers fought at Thermopylae in 480 BC.", Answer: "true", Type: model.QuestionTypeTrueFalse},
		{ID: "b", Stem: "Exactly 7,000 soldiers fought at Thermopylae in 480 BC.", Answer: "True", Type: model.QuestionTypeTrueFalse},
		{ID: "c", Stem: "Exactly 5000 soldiers fought at Thermopylae in 480 BC.", Answer: "false", Type: model.QuestionTypeTrueFalse},
	})
	require.NoError(t, err)
	require.Len(t, contradictions, 1)
	assert.Equal(t, "a", contradictions[0].Question1)
	assert.Equal(t, "b", contradictions[0].Question2)
}

func TestDetector_DifferentYearsAreDifferentFacts(t *testing.T) {
	d := newTestDetector(t)

	contradictions, err := d.Detect([]model.Question{
		{ID: "a", Stem: "How many people lived in the city in 1900?", Answer: "5000", Type: model.QuestionTypeFillBlank},
		{ID: "b", Stem: "How many people lived in the city in 2000?", Answer: "90000", Type: model.QuestionTypeFillBlank},
	})
	require.NoError(t, err)
	assert.Empty(t, contradictions)
}

func TestDetector_Polarity(t *testing.T) {
	d := newTestDetector(t)

	contradictions, err := d.Detect([]model.Question{
		{ID: "a", Stem: "The Great Wall of China is visible from space.", Answer: "true", Type: model.QuestionTypeTrueFalse},
		{ID: "b", Stem: "The Great Wall of China is visible from space.", Answer: "false", Type: model.QuestionTypeTrueFalse},
	})
	require.NoError(t, err)
	require.Len(t, contradictions, 1)
	assert.Equal(t, model.ContradictionPolarity, contradictions[0].Kind)

	contradictions, err = d.Detect([]model.Question{
		{ID: "a", Stem: "The Great Wall of China is visible from space.", Answer: "true", Type: model.QuestionTypeTrueFalse},
		{ID: "b", Stem: "The Great Wall of China isn't visible from space.", Answer: "true", Type: model.QuestionTypeTrueFalse},
	})
	require.NoError(t, err)
	require.Len(t, contradictions, 1)
	assert.Equal(t, model.ContradictionPolarity, contradictions[0].Kind)

	contradictions, err = d.Detect([]model.Question{
		{ID: "a", Stem: "The Great Wall of China is visible from space.", Answer: "true", Type: model.QuestionTypeTrueFalse},
		{ID: "b", Stem: "The Great Wall of China is not visible from space.", Answer: "false", Type: model.QuestionTypeTrueFalse},
	})
	require.NoError(t, err)
	assert.Empty(t, contradictions)
}

func TestDetector_DifferentAnswers(t *testing.T) {
	d := newTestDetector(t)

	contradictions, err := d.Detect([]model.Question{
		{ID: "a", Stem: "What is the capital of Australia?", Options: []string{"Sydney", "Canberra"}, Answer: "Canberra", Type: model.QuestionTypeMCQ},
		{ID: "b", Stem: "The capital of Australia is ___.", Answer: "Sydney", Type: model.QuestionTypeFillBlank},
	})
	require.NoError(t, err)
	require.Len(t, contradictions, 1)
	assert.Equal(t, model.ContradictionAnswer, contradictions[0].Kind)
}

func TestDetector_TopicMismatchSkipsPair(t *testing.T) {
	d := newTestDetector(t)

	contradictions, err := d.Detect([]model.Question{
		{ID: "a", Stem: "The Great Wall of China is visible from space.", Answer: "true", Type: model.QuestionTypeTrueFalse, Topic: "history"},
		{ID: "b", Stem: "The Great Wall of China is visible from space.", Answer: "false", Type: model.QuestionTypeTrueFalse, Topic: "astronomy"},
	})
	require.NoError(t, err)
	assert.Empty(t, contradictions)
}

func TestDetector_UnrelatedQuestions(t *testing.T) {
	d := newTestDetector(t)

	contradictions, err := d.Detect([]model.Question{
		{ID: "a", Stem: "How many legs does a spider have?", Answer: "8", Type: model.QuestionTypeFillBlank},
		{ID: "b", Stem: "How many soldiers fought at Thermopylae in 480 BC?", Answer: "300", Type: model.QuestionTypeFillBlank},
	})
	require.NoError(t, err)
	assert.Empty(t, contradictions)
}

func TestDetector_BatchTooLarge(t *testing.T) {
	v, rules := newTestValidator(t)
	d := NewDetector(v, rules, model.ContradictionConfig{MaxBatch: 2, SimilarityThreshold: 0.5, SameStemThreshold: 0.8})

	_, err := d.Detect(make([]model.Question, 3))
	assert.True(t, errors.Is(err, model.ErrBatchTooLarge))
}

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "7000", normalizeNumber("7,000"))
	assert.Equal(t, "7000", normalizeNumber("7.000"))
	assert.Equal(t, "3.5", normalizeNumber("3,5"))
	assert.Equal(t, "1945", normalizeNumber("1945"))
}
