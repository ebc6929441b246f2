package model

import (
	"encoding/json"
	"strings"
)

// QuestionType is the answer shape of a quiz question
type QuestionType string

const (
	QuestionTypeMCQ       QuestionType = "mcq"
	QuestionTypeTrueFalse QuestionType = "true_false"
	QuestionTypeFillBlank QuestionType = "fill_blank"
)

// ParseQuestionType normalizes the type names produced by the quiz generator.
// Unknown names are returned lowercased so the consistency checker can report them.
func ParseQuestionType(s string) QuestionType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mcq", "multiple_choice", "multiple-choice":
		return QuestionTypeMCQ
	case "tf", "true_false", "true-false", "truefalse":
		return QuestionTypeTrueFalse
	case "fill_blank", "fill_in_blank", "fill-in-blank", "fill_in_the_blank":
		return QuestionTypeFillBlank
	default:
		return QuestionType(strings.ToLower(strings.TrimSpace(s)))
	}
}

// Valid reports whether t is one of the supported question types
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMCQ, QuestionTypeTrueFalse, QuestionTypeFillBlank:
		return true
	}
	return false
}

// Question is a generated quiz question handed to validation.
// It is treated as immutable once validation starts.
type Question struct {
	ID       string       `json:"id"`
	Stem     string       `json:"stem"`
	Options  []string     `json:"options,omitempty"`
	Answer   string       `json:"answer"`
	Type     QuestionType `json:"type"`
	Topic    string       `json:"topic,omitempty"`
	Language string       `json:"language,omitempty"` // "en", "vi"; empty means any configured language
}

// UnmarshalJSON accepts the generator's aliases ("correct_answer", "tf", ...)
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            string   `json:"id"`
		Stem          string   `json:"stem"`
		Options       []string `json:"options"`
		Answer        string   `json:"answer"`
		CorrectAnswer string   `json:"correct_answer"`
		Type          string   `json:"type"`
		Topic         string   `json:"topic"`
		Language      string   `json:"language"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	answer := raw.Answer
	if answer == "" {
		answer = raw.CorrectAnswer
	}

	*q = Question{
		ID:       raw.ID,
		Stem:     raw.Stem,
		Options:  raw.Options,
		Answer:   answer,
		Type:     ParseQuestionType(raw.Type),
		Topic:    raw.Topic,
		Language: strings.ToLower(strings.TrimSpace(raw.Language)),
	}
	return nil
}
