package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/quizguard/internal/logging"
	"github.com/ppiankov/quizguard/internal/metrics"
	"github.com/ppiankov/quizguard/internal/model"
	"github.com/ppiankov/quizguard/internal/score"
	"go.uber.org/zap"
)

// Router decides which validated questions need a human reviewer
type Router struct {
	queue           Queue
	highRiskDomains map[string]bool
	highBelow       float64
	logger          *zap.Logger
	now             func() time.Time
}

// NewRouter creates a router that enqueues onto queue
func NewRouter(queue Queue, review model.ReviewConfig, scoring model.ScoringConfig, logger *zap.Logger) *Router {
	domains := make(map[string]bool, len(review.HighRiskDomains))
	for _, d := range review.HighRiskDomains {
		domains[d] = true
	}
	highBelow := scoring.HighBelow
	if highBelow <= 0 {
		highBelow = 0.5
	}
	return &Router{
		queue:           queue,
		highRiskDomains: domains,
		highBelow:       highBelow,
		logger:          logging.OrNop(logger),
		now:             time.Now,
	}
}

// Queue returns the queue items are routed to
func (r *Router) Queue() Queue {
	return r.queue
}

// NeedsReview reports whether result must wait for a human. Structurally
// broken questions are rejected outright and never reviewed.
func (r *Router) NeedsReview(result model.ValidationResult) bool {
	if result.HasStructuralIssue() {
		return false
	}
	switch result.RiskLevel {
	case model.RiskHigh:
		return true
	case model.RiskMedium:
		for _, d := range result.Domains {
			if r.highRiskDomains[d] {
				return true
			}
		}
	}
	return false
}

// Priority is high for confidence below the high-risk threshold
func (r *Router) Priority(result model.ValidationResult) model.ReviewPriority {
	if result.ConfidenceScore < r.highBelow {
		return model.PriorityHigh
	}
	return model.PriorityMedium
}

// Route enqueues result when it needs review and returns the new item,
// or nil when the question can be released without review.
func (r *Router) Route(ctx context.Context, result model.ValidationResult, auditRef string) (*model.ReviewQueueItem, error) {
	if !r.NeedsReview(result) {
		return nil, nil
	}

	item := model.ReviewQueueItem{
		ID:              uuid.NewString(),
		ContentRef:      result.QuestionID,
		RiskScore:       score.Round3(1 - result.ConfidenceScore),
		ConfidenceScore: result.ConfidenceScore,
		Priority:        r.Priority(result),
		Reasons:         reasons(result),
		CreatedAt:       r.now().UTC(),
		Status:          model.ReviewPending,
		AuditRef:        auditRef,
	}

	if err := r.queue.Enqueue(ctx, item); err != nil {
		return nil, fmt.Errorf("enqueue review for %s: %w", result.QuestionID, err)
	}

	metrics.ReviewItemsQueued.WithLabelValues(string(item.Priority)).Inc()
	r.logger.Info("question routed to review",
		zap.String("question_id", item.ContentRef),
		zap.String("item_id", item.ID),
		zap.String("priority", string(item.Priority)),
		zap.Float64("confidence", item.ConfidenceScore))

	return &item, nil
}

func reasons(result model.ValidationResult) []string {
	out := []string{fmt.Sprintf("Risk level %s (confidence %.3f)", result.RiskLevel, result.ConfidenceScore)}
	for _, issue := range result.Issues {
		out = append(out, issue.Message)
	}
	return out
}
