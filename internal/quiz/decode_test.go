package quiz

import (
	"errors"
	"testing"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Array(t *testing.T) {
	data := []byte(`[
		{"id": "q1", "stem": "What is 2+2?", "options": ["3", "4"], "answer": "4", "type": "multiple_choice", "topic": "math"},
		{"stem": "Water boils at 100C at sea level", "correct_answer": true, "type": "tf", "language": "EN"},
		{"id": 7, "stem": "The capital of France is ___", "answer": "Paris", "type": "fill_in_blank"}
	]`)

	qs, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, qs, 3)

	assert.Equal(t, model.Question{
		ID: "q1", Stem: "What is 2+2?", Options: []string{"3", "4"}, Answer: "4",
		Type: model.QuestionTypeMCQ, Topic: "math",
	}, qs[0])

	assert.Equal(t, "q2", qs[1].ID)
	assert.Equal(t, "true", qs[1].Answer)
	assert.Equal(t, model.QuestionTypeTrueFalse, qs[1].Type)
	assert.Equal(t, "en", qs[1].Language)

	assert.Equal(t, "7", qs[2].ID)
	assert.Equal(t, model.QuestionTypeFillBlank, qs[2].Type)
}

func TestDecode_DefaultsTypeAndNumericOptions(t *testing.T) {
	qs, err := Decode([]byte(`[{"stem": "How many legs does a spider have?", "options": [6, 8], "answer": 8}]`))
	require.NoError(t, err)
	require.Len(t, qs, 1)

	assert.Equal(t, model.QuestionTypeMCQ, qs[0].Type)
	assert.Equal(t, []string{"6", "8"}, qs[0].Options)
	assert.Equal(t, "8", qs[0].Answer)
}

func TestDecode_Wrappers(t *testing.T) {
	qs, err := Decode([]byte(`{"questions": [{"stem": "a"}, {"stem": "b"}]}`))
	require.NoError(t, err)
	assert.Len(t, qs, 2)

	qs, err = Decode([]byte(`{"id": "solo", "stem": "a"}`))
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "solo", qs[0].ID)
}

func TestDecode_SchemaViolation(t *testing.T) {
	_, err := Decode([]byte(`[{"stem": 42}, {"answer": "x"}, "not an object"]`))
	require.Error(t, err)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.GreaterOrEqual(t, len(schemaErr.Violations), 3)
}

func TestDecode_NotJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`"just a string"`))
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{
			name: "bare array",
			text: `[{"stem":"a"}]`,
			want: `[{"stem":"a"}]`,
			ok:   true,
		},
		{
			name: "prose around array",
			text: "Here are your questions:\n[{\"stem\":\"a\"}]\nGood luck!",
			want: `[{"stem":"a"}]`,
			ok:   true,
		},
		{
			name: "fenced block",
			text: "```json\n[{\"stem\":\"b\"}]\n```\nTrailing [note]",
			want: `[{"stem":"b"}]`,
			ok:   true,
		},
		{
			name: "brackets inside strings",
			text: `[{"stem":"Pick ] or [ carefully", "answer":"\"}"}] tail`,
			want: `[{"stem":"Pick ] or [ carefully", "answer":"\"}"}]`,
			ok:   true,
		},
		{
			name: "no json",
			text: "I cannot help with that.",
			ok:   false,
		},
		{
			name: "unbalanced",
			text: `[{"stem":"a"}`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	qs, err := DecodeResponse("Sure!\n```\n[{\"id\":\"q1\",\"stem\":\"Đâu là thủ đô của Việt Nam?\",\"options\":[\"Hà Nội\",\"Huế\"],\"answer\":\"Hà Nội\",\"language\":\"vi\"}]\n```")
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "vi", qs[0].Language)
	assert.Equal(t, "Hà Nội", qs[0].Answer)

	_, err = DecodeResponse("no questions today")
	assert.ErrorIs(t, err, ErrNoJSON)
}
