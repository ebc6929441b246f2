// Package quiz decodes generated quiz questions from files and model output.
package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/xeipuuv/gojsonschema"
)

// ErrNoJSON is returned when the text contains no JSON value
var ErrNoJSON = errors.New("no JSON found in text")

var fence = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

var questionSchema = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"stem"},
		"properties": map[string]interface{}{
			"id":             map[string]interface{}{"type": []interface{}{"string", "integer"}},
			"stem":           map[string]interface{}{"type": "string"},
			"type":           map[string]interface{}{"type": "string"},
			"topic":          map[string]interface{}{"type": "string"},
			"language":       map[string]interface{}{"type": "string"},
			"answer":         map[string]interface{}{"type": []interface{}{"string", "boolean", "number", "null"}},
			"correct_answer": map[string]interface{}{"type": []interface{}{"string", "boolean", "number", "null"}},
			"options": map[string]interface{}{
				"type":  []interface{}{"array", "null"},
				"items": map[string]interface{}{"type": []interface{}{"string", "number"}},
			},
		},
	},
}

// SchemaError lists every schema violation in a decoded document
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "questions do not match schema: " + strings.Join(e.Violations, "; ")
}

// Decode parses a JSON array of questions. A single object or an object
// with a "questions" array is accepted too.
func Decode(data []byte) ([]model.Question, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}

	items, err := normalize(doc)
	if err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(questionSchema), gojsonschema.NewGoLoader(items))
	if err != nil {
		return nil, fmt.Errorf("validate questions: %w", err)
	}
	if !result.Valid() {
		violations := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			violations = append(violations, desc.String())
		}
		return nil, &SchemaError{Violations: violations}
	}

	questions := make([]model.Question, 0, len(items))
	for i, raw := range items {
		obj := raw.(map[string]interface{})
		fillDefaults(obj, i)

		encoded, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		var q model.Question
		if err := json.Unmarshal(encoded, &q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// DecodeResponse extracts the first JSON value from model output, which may
// wrap it in prose or a fenced code block, and decodes it.
func DecodeResponse(text string) ([]model.Question, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return nil, ErrNoJSON
	}
	return Decode([]byte(raw))
}

// ExtractJSON returns the first balanced JSON array or object in text
func ExtractJSON(text string) (string, bool) {
	if m := fence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return "", false
	}

	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[':
			stack = append(stack, ']')
		case '{':
			stack = append(stack, '}')
		case ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func normalize(doc interface{}) ([]interface{}, error) {
	switch v := doc.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		if qs, ok := v["questions"].([]interface{}); ok {
			return qs, nil
		}
		return []interface{}{v}, nil
	default:
		return nil, fmt.Errorf("expected a JSON array of questions, got %T", doc)
	}
}

// fillDefaults applies the generator's conventions: ids default to q1, q2, ...,
// the type defaults to mcq, and scalar answers and options become strings.
func fillDefaults(obj map[string]interface{}, index int) {
	switch id := obj["id"].(type) {
	case string:
		if strings.TrimSpace(id) == "" {
			obj["id"] = fmt.Sprintf("q%d", index+1)
		}
	case float64:
		obj["id"] = strconv.FormatFloat(id, 'f', -1, 64)
	default:
		obj["id"] = fmt.Sprintf("q%d", index+1)
	}

	if t, ok := obj["type"].(string); !ok || strings.TrimSpace(t) == "" {
		obj["type"] = string(model.QuestionTypeMCQ)
	}

	for _, key := range []string{"answer", "correct_answer"} {
		if v, ok := obj[key]; ok {
			obj[key] = scalarString(v)
		}
	}

	if opts, ok := obj["options"].([]interface{}); ok {
		out := make([]interface{}, len(opts))
		for i, o := range opts {
			out[i] = scalarString(o)
		}
		obj["options"] = out
	}
}

func scalarString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
