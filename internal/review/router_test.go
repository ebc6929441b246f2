package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRouter(t *testing.T, queue Queue) *Router {
	cfg := model.DefaultConfig()
	r := NewRouter(queue, cfg.Review, cfg.Scoring, zaptest.NewLogger(t))
	r.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r
}

func TestRouter_NeedsReview(t *testing.T) {
	r := newTestRouter(t, NewMemoryQueue())

	tests := []struct {
		name   string
		result model.ValidationResult
		want   bool
	}{
		{
			name:   "low risk",
			result: model.ValidationResult{RiskLevel: model.RiskLow, ConfidenceScore: 0.95},
			want:   false,
		},
		{
			name:   "high risk",
			result: model.ValidationResult{RiskLevel: model.RiskHigh, ConfidenceScore: 0.4},
			want:   true,
		},
		{
			name:   "medium outside high-risk domains",
			result: model.ValidationResult{RiskLevel: model.RiskMedium, ConfidenceScore: 0.7, Domains: []string{"current_events"}},
			want:   false,
		},
		{
			name:   "medium in medicine",
			result: model.ValidationResult{RiskLevel: model.RiskMedium, ConfidenceScore: 0.7, Domains: []string{"medicine"}},
			want:   true,
		},
		{
			name: "structural failure is rejected, not reviewed",
			result: model.ValidationResult{
				RiskLevel: model.RiskHigh,
				Issues:    []model.Issue{{Category: model.IssueStructural, Message: "Question stem is empty"}},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.NeedsReview(tt.result))
		})
	}
}

func TestRouter_Route(t *testing.T) {
	queue := NewMemoryQueue()
	r := newTestRouter(t, queue)

	result := model.ValidationResult{
		QuestionID:      "q1",
		ConfidenceScore: 0.45,
		RiskLevel:       model.RiskHigh,
		Issues:          []model.Issue{{Category: model.IssueClaim, Message: "Content in high-risk domain: medicine"}},
		Domains:         []string{"medicine"},
	}

	item, err := r.Route(context.Background(), result, "audit-1")
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "q1", item.ContentRef)
	assert.Equal(t, 0.55, item.RiskScore)
	assert.Equal(t, model.PriorityHigh, item.Priority)
	assert.Equal(t, model.ReviewPending, item.Status)
	assert.Equal(t, "audit-1", item.AuditRef)
	assert.Equal(t, []string{"Risk level high (confidence 0.450)", "Content in high-risk domain: medicine"}, item.Reasons)

	pending, err := queue.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, item.ID, pending[0].ID)
}

func TestRouter_RouteMediumPriority(t *testing.T) {
	r := newTestRouter(t, NewMemoryQueue())

	item, err := r.Route(context.Background(), model.ValidationResult{
		QuestionID:      "q2",
		ConfidenceScore: 0.7,
		RiskLevel:       model.RiskMedium,
		Domains:         []string{"law"},
	}, "")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, model.PriorityMedium, item.Priority)
	assert.Equal(t, 0.3, item.RiskScore)
}

func TestRouter_RouteSkipsLowRisk(t *testing.T) {
	queue := NewMemoryQueue()
	r := newTestRouter(t, queue)

	item, err := r.Route(context.Background(), model.ValidationResult{QuestionID: "q3", ConfidenceScore: 1, RiskLevel: model.RiskLow}, "")
	require.NoError(t, err)
	assert.Nil(t, item)

	pending, err := queue.Pending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

type failingQueue struct{ MemoryQueue }

func (f *failingQueue) Enqueue(ctx context.Context, item model.ReviewQueueItem) error {
	return errors.New("queue down")
}

func TestRouter_RouteEnqueueError(t *testing.T) {
	r := newTestRouter(t, &failingQueue{})

	_, err := r.Route(context.Background(), model.ValidationResult{QuestionID: "q4", RiskLevel: model.RiskHigh}, "")
	assert.Error(t, err)
}
