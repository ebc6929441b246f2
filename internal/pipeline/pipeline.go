package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/quizguard/internal/audit"
	"github.com/ppiankov/quizguard/internal/cache"
	"github.com/ppiankov/quizguard/internal/consensus"
	"github.com/ppiankov/quizguard/internal/extract"
	"github.com/ppiankov/quizguard/internal/logging"
	"github.com/ppiankov/quizguard/internal/metrics"
	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/quiz"
	"github.com/ppiankov/quizguard/internal/review"
	"github.com/ppiankov/quizguard/internal/util"
	"github.com/ppiankov/quizguard/internal/validate"
	"github.com/ppiankov/quizguard/internal/worker"
	"go.uber.org/zap"
)

// Deps are the collaborators a Pipeline is built from
type Deps struct {
	Settings *model.Config
	Rules    *model.RuleSet
	Queue    review.Queue
	Audit    *audit.Logger

	// Optional
	Cache   cache.Cache
	Adapter consensus.ModelAdapter
	Logger  *zap.Logger
}

// Pipeline orchestrates validation, review routing and auditing of quiz batches
type Pipeline struct {
	validator  *validate.Validator
	detector   *validate.Detector
	batch      *worker.BatchProcessor
	router     *review.Router
	audit      *audit.Logger
	aggregator *consensus.Aggregator // nil without a model adapter
	logger     *zap.Logger
}

// Meta describes where a batch came from
type Meta struct {
	BatchID   string
	ModelUsed string
	Prompt    string
}

// Outcome is everything produced for one batch
type Outcome struct {
	BatchID     string                         `json:"batch_id"`
	Results     []model.ValidationResult       `json:"results"`
	Summary     model.ValidationSummary        `json:"summary"`
	ReviewItems []model.ReviewQueueItem        `json:"review_items"`
	States      map[string]model.QuestionState `json:"states"`
	Consensus   *model.ConsensusBatch          `json:"consensus,omitempty"`
	Warnings    []string                       `json:"warnings,omitempty"`
}

// New creates a pipeline
func New(deps Deps) (*Pipeline, error) {
	if deps.Settings == nil || deps.Rules == nil {
		return nil, fmt.Errorf("pipeline requires settings and rules")
	}
	if deps.Queue == nil || deps.Audit == nil {
		return nil, fmt.Errorf("pipeline requires a review queue and an audit logger")
	}
	cfg := deps.Settings
	logger := logging.OrNop(deps.Logger)

	validator, err := validate.NewValidator(deps.Rules, cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("create validator: %w", err)
	}

	namespace := cache.Namespace(extract.Fingerprint(deps.Rules), cfg.Scoring)
	cached := cache.NewCachingValidator(validator, deps.Cache, namespace, cfg.Cache.MemoryTTL, logger)

	p := &Pipeline{
		validator: validator,
		detector:  validate.NewDetector(validator, deps.Rules, cfg.Contradiction),
		batch:     worker.NewBatchProcessor(cached, cfg.Concurrency.Workers, logger),
		router:    review.NewRouter(deps.Queue, cfg.Review, cfg.Scoring, logger),
		audit:     deps.Audit,
		logger:    logger,
	}

	if deps.Adapter != nil {
		similarity, err := consensus.SimilarityByName(cfg.Consensus.Similarity)
		if err != nil {
			return nil, err
		}
		p.aggregator = consensus.NewAggregator(deps.Adapter, cfg.Consensus, similarity, logger)
	}

	return p, nil
}

// Validator returns the per-question validator
func (p *Pipeline) Validator() *validate.Validator {
	return p.validator
}

// ValidateBatch validates every question, detects contradictions across the
// batch once all results are in, routes risky questions to review and writes
// one audit entry per question.
//
// An outcome with a summary is returned whenever validation itself ran.
// Persistence failures are joined into the returned error alongside it.
func (p *Pipeline) ValidateBatch(ctx context.Context, questions []model.Question, meta Meta) (*Outcome, error) {
	start := time.Now()
	if meta.BatchID == "" {
		meta.BatchID = uuid.NewString()
	}

	processed, err := p.batch.ProcessQuestions(ctx, questions)
	if err != nil {
		return nil, fmt.Errorf("validate batch %s: %w", meta.BatchID, err)
	}

	ordered := make([]model.Question, len(processed))
	results := make([]model.ValidationResult, len(processed))
	for i, qr := range processed {
		ordered[i] = qr.Question
		results[i] = qr.Result.Clone()
	}

	outcome := &Outcome{
		BatchID:     meta.BatchID,
		ReviewItems: []model.ReviewQueueItem{},
		States:      make(map[string]model.QuestionState, len(ordered)),
	}

	contradictions, err := p.detector.Detect(ordered)
	if err != nil {
		// Per-question results still stand without the cross-check
		p.logger.Warn("contradiction detection skipped", zap.String("batch_id", meta.BatchID), zap.Error(err))
		outcome.Warnings = append(outcome.Warnings, err.Error())
	}
	attachContradictions(results, contradictions)

	var errs []error
	for i, q := range ordered {
		state, item, err := p.settle(ctx, q, results[i], meta)
		if err != nil {
			errs = append(errs, err)
		}
		outcome.States[q.ID] = state
		if item != nil {
			outcome.ReviewItems = append(outcome.ReviewItems, *item)
		}
		metrics.QuestionsValidated.WithLabelValues(string(results[i].RiskLevel)).Inc()
	}
	for _, c := range contradictions {
		metrics.ContradictionsFound.WithLabelValues(string(c.Kind)).Inc()
	}

	outcome.Results = results
	outcome.Summary = p.validator.Summarize(results, contradictions)
	metrics.BatchDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("batch validated",
		zap.String("batch_id", meta.BatchID),
		zap.Int("questions", len(results)),
		zap.Int("valid", outcome.Summary.ValidQuestions),
		zap.Int("high_risk", outcome.Summary.HighRiskCount),
		zap.Int("contradictions", len(contradictions)),
		zap.Int("review_items", len(outcome.ReviewItems)))

	return outcome, errors.Join(errs...)
}

// settle audits one result and routes it, returning the question's state
func (p *Pipeline) settle(ctx context.Context, q model.Question, result model.ValidationResult, meta Meta) (model.QuestionState, *model.ReviewQueueItem, error) {
	state, err := model.Walk(model.StateGenerated, model.StateValidated)
	if err != nil {
		return state, nil, err
	}

	entry := model.AuditEntry{
		ContentID:         q.ID,
		BatchID:           meta.BatchID,
		ModelUsed:         meta.ModelUsed,
		PromptHash:        hashPrompt(meta.Prompt),
		ConfidenceScore:   result.ConfidenceScore,
		ValidationResults: []model.ValidationResult{result},
	}

	switch {
	case result.HasStructuralIssue():
		entry.ReviewStatus = model.ReviewFailed
		if verr := p.validator.Checker().Verify(q); verr != nil {
			entry.Error = verr.Error()
		}
		state, _ = model.Transition(state, model.StateRejected)
		_, err := p.audit.Append(ctx, entry)
		return state, nil, wrapAudit(q.ID, err)

	case p.router.NeedsReview(result):
		entry.ReviewStatus = model.ReviewPending
		state, _ = model.Transition(state, model.StateFlaggedForReview)
		stored, aerr := p.audit.Append(ctx, entry)
		item, rerr := p.router.Route(ctx, result, stored.ID)
		return state, item, errors.Join(wrapAudit(q.ID, aerr), rerr)

	default:
		entry.ReviewStatus = model.ReviewAutoApproved
		state, _ = model.Transition(state, model.StateApproved)
		_, err := p.audit.Append(ctx, entry)
		return state, nil, wrapAudit(q.ID, err)
	}
}

// GenerateAndValidate asks every model for a quiz, merges the outputs by
// consensus and validates the merged quiz. When consensus fails the returned
// outcome carries only the consensus batch (if any) and the error.
func (p *Pipeline) GenerateAndValidate(ctx context.Context, prompt string, models []string) (*Outcome, error) {
	if p.aggregator == nil {
		return nil, fmt.Errorf("generation requires a model adapter")
	}

	batchID := uuid.NewString()
	batch, failures, err := p.aggregator.Aggregate(ctx, prompt, models)

	var errs []error
	for _, f := range failures {
		errs = append(errs, p.fail(ctx, batchID, f.ModelID, prompt, f))
	}

	if err != nil {
		errs = append(errs, p.fail(ctx, batchID, "", prompt, err))
		return &Outcome{BatchID: batchID, Consensus: batch}, errors.Join(append([]error{err}, errs...)...)
	}

	questions, err := quiz.DecodeResponse(batch.Merged)
	if err != nil {
		err = fmt.Errorf("decode merged output of %s: %w", batch.MergedModel, err)
		errs = append(errs, p.fail(ctx, batchID, batch.MergedModel, prompt, err))
		return &Outcome{BatchID: batchID, Consensus: batch}, errors.Join(append([]error{err}, errs...)...)
	}

	outcome, err := p.ValidateBatch(ctx, questions, Meta{BatchID: batchID, ModelUsed: batch.MergedModel, Prompt: prompt})
	if outcome != nil {
		outcome.Consensus = batch
		for _, f := range failures {
			outcome.Warnings = append(outcome.Warnings, f.Error())
		}
	}
	return outcome, errors.Join(append([]error{err}, errs...)...)
}

// fail records an error occurrence in the audit trail under the batch id
func (p *Pipeline) fail(ctx context.Context, batchID, modelID, prompt string, cause error) error {
	_, err := p.audit.Append(ctx, model.AuditEntry{
		ContentID:    batchID,
		BatchID:      batchID,
		ModelUsed:    modelID,
		PromptHash:   hashPrompt(prompt),
		ReviewStatus: model.ReviewFailed,
		Error:        cause.Error(),
	})
	return wrapAudit(batchID, err)
}

// ResolveReview records a reviewer's decision. The new audit entry
// supersedes the entry that flagged the question.
func (p *Pipeline) ResolveReview(ctx context.Context, itemID string, approve bool, reviewer string) (*model.ReviewQueueItem, error) {
	item, err := p.router.Queue().Resolve(ctx, itemID, approve, reviewer)
	if err != nil {
		return nil, fmt.Errorf("resolve review %s: %w", itemID, err)
	}

	final := model.StateRejected
	if approve {
		final = model.StateApproved
	}
	if _, err := model.Walk(model.StateFlaggedForReview, model.StateReviewed, final); err != nil {
		return nil, err
	}

	entry := model.AuditEntry{
		ContentID:       item.ContentRef,
		ConfidenceScore: item.ConfidenceScore,
		ReviewStatus:    item.Status,
		Supersedes:      item.AuditRef,
		Reviewer:        reviewer,
	}
	if prior, err := p.audit.Latest(ctx, item.ContentRef); err == nil && prior != nil {
		if entry.Supersedes == "" {
			entry.Supersedes = prior.ID
		}
		entry.BatchID = prior.BatchID
		entry.ModelUsed = prior.ModelUsed
		entry.PromptHash = prior.PromptHash
		entry.ValidationResults = prior.ValidationResults
	}

	if _, err := p.audit.Append(ctx, entry); err != nil {
		return item, wrapAudit(item.ContentRef, err)
	}

	p.logger.Info("review resolved",
		zap.String("item_id", item.ID),
		zap.String("question_id", item.ContentRef),
		zap.String("status", string(item.Status)),
		zap.String("reviewer", reviewer))
	return item, nil
}

// PendingReviews lists the review queue
func (p *Pipeline) PendingReviews(ctx context.Context) ([]model.ReviewQueueItem, error) {
	return p.router.Queue().Pending(ctx)
}

// Releasable reports whether a question may be shown to learners
func (p *Pipeline) Releasable(ctx context.Context, questionID string) (bool, error) {
	return p.audit.Releasable(ctx, questionID)
}

// History returns the audit trail of one question or batch
func (p *Pipeline) History(ctx context.Context, contentID string) ([]model.AuditEntry, error) {
	return p.audit.Entries(ctx, contentID)
}

// attachContradictions adds a contradiction issue to both questions of each pair
func attachContradictions(results []model.ValidationResult, contradictions []model.Contradiction) {
	if len(contradictions) == 0 {
		return
	}
	index := make(map[string][]int, len(results))
	for i, r := range results {
		index[r.QuestionID] = append(index[r.QuestionID], i)
	}

	const suggestion = "Reconcile the conflicting questions before release"
	add := func(id, other string, c model.Contradiction) {
		for _, i := range index[id] {
			results[i].Issues = append(results[i].Issues, model.Issue{
				Category:   model.IssueContradiction,
				Message:    fmt.Sprintf("Contradicts question %s (%s): %s", other, c.Kind, c.Description),
				Suggestion: suggestion,
			})
			if !contains(results[i].Suggestions, suggestion) {
				results[i].Suggestions = append(results[i].Suggestions, suggestion)
			}
		}
	}
	for _, c := range contradictions {
		add(c.Question1, c.Question2, c)
		add(c.Question2, c.Question1, c)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func hashPrompt(prompt string) string {
	if prompt == "" {
		return ""
	}
	return util.HashPrompt(prompt)
}

func wrapAudit(contentID string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("audit %s: %w", contentID, err)
}
