package review

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ppiankov/quizguard/internal/model"
)

// Queue holds questions waiting for a human decision
type Queue interface {
	// Enqueue adds a pending item
	Enqueue(ctx context.Context, item model.ReviewQueueItem) error

	// Pending lists unresolved items, high priority first, oldest first
	Pending(ctx context.Context) ([]model.ReviewQueueItem, error)

	// Get returns one item by id
	Get(ctx context.Context, id string) (*model.ReviewQueueItem, error)

	// Resolve records the reviewer's decision. Resolving twice fails with
	// model.ErrAlreadyResolved.
	Resolve(ctx context.Context, id string, approve bool, reviewer string) (*model.ReviewQueueItem, error)
}

// MemoryQueue is an in-process Queue
type MemoryQueue struct {
	mu    sync.Mutex
	items map[string]model.ReviewQueueItem
	now   func() time.Time
}

// NewMemoryQueue creates an empty in-memory queue
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		items: make(map[string]model.ReviewQueueItem),
		now:   time.Now,
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, item model.ReviewQueueItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items[item.ID] = cloneItem(item)
	return nil
}

func (q *MemoryQueue) Pending(ctx context.Context) ([]model.ReviewQueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []model.ReviewQueueItem
	for _, item := range q.items {
		if item.Status == model.ReviewPending {
			out = append(out, cloneItem(item))
		}
	}
	sortPending(out)
	return out, nil
}

func (q *MemoryQueue) Get(ctx context.Context, id string) (*model.ReviewQueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[id]
	if !ok {
		return nil, model.ErrReviewNotFound
	}
	item = cloneItem(item)
	return &item, nil
}

func (q *MemoryQueue) Resolve(ctx context.Context, id string, approve bool, reviewer string) (*model.ReviewQueueItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[id]
	if !ok {
		return nil, model.ErrReviewNotFound
	}
	if item.Status != model.ReviewPending {
		return nil, model.ErrAlreadyResolved
	}

	resolve(&item, approve, reviewer, q.now())
	q.items[id] = item

	out := cloneItem(item)
	return &out, nil
}

func resolve(item *model.ReviewQueueItem, approve bool, reviewer string, at time.Time) {
	item.Status = model.ReviewRejected
	if approve {
		item.Status = model.ReviewApproved
	}
	item.Reviewer = reviewer
	resolvedAt := at.UTC()
	item.ResolvedAt = &resolvedAt
}

func cloneItem(item model.ReviewQueueItem) model.ReviewQueueItem {
	out := item
	if item.Reasons != nil {
		out.Reasons = append([]string(nil), item.Reasons...)
	}
	if item.ResolvedAt != nil {
		t := *item.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}

func sortPending(items []model.ReviewQueueItem) {
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := items[i].Priority == model.PriorityHigh, items[j].Priority == model.PriorityHigh
		if pi != pj {
			return pi
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
