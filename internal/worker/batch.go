package worker

import (
	"context"
	"fmt"
	"sort"

	"github.com/ppiankov/quizguard/internal/model"
	"go.uber.org/zap"
)

// QuestionValidator validates a single question
type QuestionValidator interface {
	Validate(q model.Question) model.ValidationResult
}

// ValidationJob validates one question of a batch
type ValidationJob struct {
	Index     int
	Question  model.Question
	Validator QuestionValidator
}

// Execute executes the validation job
func (j *ValidationJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &QuestionResult{Index: j.Index, Question: j.Question, Error: err}
	}
	return &QuestionResult{
		Index:    j.Index,
		Question: j.Question,
		Result:   j.Validator.Validate(j.Question),
	}
}

// QuestionResult pairs a question with its validation result
type QuestionResult struct {
	Index    int // Position in the submitted batch
	Question model.Question
	Result   model.ValidationResult
	Error    error
}

// GetError returns the error from the validation
func (r *QuestionResult) GetError() error {
	return r.Error
}

// BatchProcessor validates the questions of a batch concurrently
type BatchProcessor struct {
	validator   QuestionValidator
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(validator QuestionValidator, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		validator:   validator,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessQuestions validates every question and returns the results sorted
// by question id, ties kept in submission order.
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []model.Question) ([]*QuestionResult, error) {
	if len(questions) == 0 {
		return []*QuestionResult{}, nil
	}

	jobs := make([]Job, len(questions))
	for i, q := range questions {
		jobs[i] = &ValidationJob{Index: i, Question: q, Validator: b.validator}
	}

	pool := NewPool(b.concurrency)
	b.logger.Debug("validating batch",
		zap.Int("questions", len(questions)),
		zap.Int("workers", pool.Workers()))

	results := pool.Run(ctx, jobs)

	out := make([]*QuestionResult, 0, len(results))
	for _, r := range results {
		qr := r.(*QuestionResult)
		if qr.Error != nil {
			continue
		}
		out = append(out, qr)
	}
	if len(out) != len(questions) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("batch validation interrupted after %d of %d questions: %w", len(out), len(questions), err)
		}
		return nil, fmt.Errorf("batch validation returned %d of %d results", len(out), len(questions))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Question.ID != out[j].Question.ID {
			return out[i].Question.ID < out[j].Question.ID
		}
		return out[i].Index < out[j].Index
	})
	return out, nil
}
