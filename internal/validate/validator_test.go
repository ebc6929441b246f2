package validate

import (
	"errors"
	"testing"

	"github.com/ppiankov/quizguard/internal/extract"
	"github.com/ppiankov/quizguard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) (*Validator, *model.RuleSet) {
	t.Helper()
	rules, err := extract.DefaultRules()
	require.NoError(t, err)
	v, err := NewValidator(rules, model.DefaultConfig().Scoring)
	require.NoError(t, err)
	return v, rules
}

func TestValidator_YearAndCountIsMedium(t *testing.T) {
	v, _ := newTestValidator(t)

	result := v.Validate(model.Question{
		ID:       "q1",
		Stem:     "Vào năm 1945, có bao nhiêu người tham gia?",
		Options:  []string{"Hàng trăm", "Hàng nghìn"},
		Answer:   "Hàng nghìn",
		Type:     model.QuestionTypeMCQ,
		Language: "vi",
	})

	assert.Equal(t, 0.75, result.ConfidenceScore)
	assert.Equal(t, model.RiskMedium, result.RiskLevel)
	assert.True(t, result.Valid)
	assert.False(t, result.HasStructuralIssue())
	require.Len(t, result.Issues, 2)
	assert.Contains(t, result.Issues[0].Message, "time-sensitive")
	assert.Contains(t, result.Issues[1].Message, "numerical")
	assert.Contains(t, result.Suggestions, "Consider using conceptual questions instead of specific facts")
}

func TestValidator_AnswerNotInOptions(t *testing.T) {
	v, _ := newTestValidator(t)
	q := model.Question{
		ID:      "q2",
		Stem:    "Which letter comes first?",
		Options: []string{"A", "B", "C", "D"},
		Answer:  "E",
		Type:    model.QuestionTypeMCQ,
	}

	err := v.Checker().Verify(q)
	var structErr *model.StructuralError
	require.True(t, errors.As(err, &structErr))
	assert.Equal(t, "q2", structErr.QuestionID)

	result := v.Validate(q)
	assert.Equal(t, 1.0, result.ConfidenceScore)
	assert.Equal(t, model.RiskHigh, result.RiskLevel)
	assert.False(t, result.Valid)
	assert.True(t, result.HasStructuralIssue())
	assert.Contains(t, result.Suggestions, "Verify that the correct answer matches one of the provided options")
}

func TestValidator_DomainFloor(t *testing.T) {
	v, _ := newTestValidator(t)

	result := v.Validate(model.Question{
		ID:     "q3",
		Stem:   "What is the usual dosage of aspirin for adults?",
		Answer: "true",
		Type:   model.QuestionTypeTrueFalse,
	})

	assert.Equal(t, 0.8, result.ConfidenceScore)
	assert.Equal(t, model.RiskMedium, result.RiskLevel)
	assert.Equal(t, []string{"medicine"}, result.Domains)
}

func TestValidator_CleanQuestionIsLow(t *testing.T) {
	v, _ := newTestValidator(t)

	result := v.Validate(model.Question{
		ID:      "q4",
		Stem:    "Which gas do plants absorb?",
		Options: []string{"Oxygen", "Carbon dioxide"},
		Answer:  "Carbon dioxide",
		Type:    model.QuestionTypeMCQ,
	})

	assert.Equal(t, 1.0, result.ConfidenceScore)
	assert.Equal(t, model.RiskLow, result.RiskLevel)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)
}

func TestValidator_Deterministic(t *testing.T) {
	v, _ := newTestValidator(t)
	q := model.Question{
		ID:      "q5",
		Stem:    "In 1969, how many astronauts from NASA walked on the Moon?",
		Options: []string{"2", "3"},
		Answer:  "2",
		Type:    model.QuestionTypeMCQ,
	}

	first := v.Validate(q)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, v.Validate(q))
	}
}

func TestValidator_Explain(t *testing.T) {
	v, _ := newTestValidator(t)

	signals, penalties := v.Explain(model.Question{ID: "q6", Stem: "How many moons does Mars have?", Answer: "2", Type: model.QuestionTypeFillBlank})
	assert.NotEmpty(t, signals)
	require.NotEmpty(t, penalties)
	assert.Equal(t, model.SignalNumeric, penalties[0].Kind)
}

func TestChecker_Structural(t *testing.T) {
	_, rules := newTestValidator(t)
	c := NewChecker(rules)

	tests := []struct {
		name string
		q    model.Question
		want string
	}{
		{"empty stem", model.Question{Stem: " ", Answer: "x ___", Type: model.QuestionTypeFillBlank}, "stem is empty"},
		{"unknown type", model.Question{Stem: "Pick one", Type: "essay"}, "Unknown question type"},
		{"one option", model.Question{Stem: "Pick", Options: []string{"a"}, Answer: "a", Type: model.QuestionTypeMCQ}, "at least 2 options"},
		{"blank option", model.Question{Stem: "Pick", Options: []string{"a", " "}, Answer: "a", Type: model.QuestionTypeMCQ}, "Option 2 is blank"},
		{"bad true/false", model.Question{Stem: "Sky is blue", Answer: "yes", Type: model.QuestionTypeTrueFalse}, "invalid answer format"},
		{"wrong language pair", model.Question{Stem: "Sky is blue", Answer: "đúng", Type: model.QuestionTypeTrueFalse, Language: "en"}, "invalid answer format"},
		{"empty fill answer", model.Question{Stem: "Water boils at ___", Answer: "  ", Type: model.QuestionTypeFillBlank}, "empty answer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Verify(tt.q)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestChecker_TrueFalsePairs(t *testing.T) {
	_, rules := newTestValidator(t)
	c := NewChecker(rules)

	assert.NoError(t, c.Verify(model.Question{Stem: "Trời xanh", Answer: "Đúng", Type: model.QuestionTypeTrueFalse, Language: "vi"}))
	assert.NoError(t, c.Verify(model.Question{Stem: "Sky is green", Answer: "False", Type: model.QuestionTypeTrueFalse, Language: "en"}))
	assert.NoError(t, c.Verify(model.Question{Stem: "Trời xanh", Answer: "sai", Type: model.QuestionTypeTrueFalse}))

	truth, ok := c.TruthValue(model.Question{Answer: "Sai"})
	assert.True(t, ok)
	assert.False(t, truth)

	_, ok = c.TruthValue(model.Question{Answer: "maybe"})
	assert.False(t, ok)
}

func TestChecker_QualityIssues(t *testing.T) {
	_, rules := newTestValidator(t)
	c := NewChecker(rules)

	issues := c.Check(model.Question{
		Stem:    "Pick the odd one",
		Options: []string{"cat", "Cat", "dog"},
		Answer:  "dog",
		Type:    model.QuestionTypeMCQ,
	})
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueQuality, issues[0].Category)

	issues = c.Check(model.Question{
		Stem:    "Pick one",
		Options: []string{"a", "an extremely long and verbose option"},
		Answer:  "a",
		Type:    model.QuestionTypeMCQ,
	})
	require.Len(t, issues, 1)
	assert.Equal(t, "Options appear inconsistent or confusing", issues[0].Message)

	issues = c.Check(model.Question{Stem: "Water boils at what temperature?", Answer: "100", Type: model.QuestionTypeFillBlank})
	require.Len(t, issues, 1)
	assert.Equal(t, "Fill-in-blank question missing blank indicator", issues[0].Message)
	assert.NoError(t, c.Verify(model.Question{Stem: "Water boils at what temperature?", Answer: "100", Type: model.QuestionTypeFillBlank}))
}
