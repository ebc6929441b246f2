package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisQueue stores items in a hash and tracks pending ids in a sorted set
// scored by creation time. Removing an id from the set is the claim that
// makes Resolve safe across processes.
type RedisQueue struct {
	client     *redis.Client
	itemsKey   string
	pendingKey string
	now        func() time.Time
}

// NewRedisQueue creates a queue under keyPrefix
func NewRedisQueue(client *redis.Client, keyPrefix string) *RedisQueue {
	if keyPrefix == "" {
		keyPrefix = "quizguard"
	}
	return &RedisQueue{
		client:     client,
		itemsKey:   keyPrefix + ":review:items",
		pendingKey: keyPrefix + ":review:pending",
		now:        time.Now,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, item model.ReviewQueueItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal review item: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.HSet(ctx, q.itemsKey, item.ID, data)
	pipe.ZAdd(ctx, q.pendingKey, redis.Z{Score: float64(item.CreatedAt.UnixNano()), Member: item.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis enqueue: %w", err)
	}
	return nil
}

func (q *RedisQueue) Pending(ctx context.Context) ([]model.ReviewQueueItem, error) {
	ids, err := q.client.ZRange(ctx, q.pendingKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis pending ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	values, err := q.client.HMGet(ctx, q.itemsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis pending items: %w", err)
	}

	items := make([]model.ReviewQueueItem, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("review item %s missing from %s", ids[i], q.itemsKey)
		}
		var item model.ReviewQueueItem
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			return nil, fmt.Errorf("unmarshal review item %s: %w", ids[i], err)
		}
		items = append(items, item)
	}
	sortPending(items)
	return items, nil
}

func (q *RedisQueue) Get(ctx context.Context, id string) (*model.ReviewQueueItem, error) {
	data, err := q.client.HGet(ctx, q.itemsKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get review item: %w", err)
	}

	var item model.ReviewQueueItem
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, fmt.Errorf("unmarshal review item %s: %w", id, err)
	}
	return &item, nil
}

func (q *RedisQueue) Resolve(ctx context.Context, id string, approve bool, reviewer string) (*model.ReviewQueueItem, error) {
	item, err := q.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	removed, err := q.client.ZRem(ctx, q.pendingKey, id).Result()
	if err != nil {
		return nil, fmt.Errorf("redis claim review item: %w", err)
	}
	if removed == 0 {
		return nil, model.ErrAlreadyResolved
	}

	resolve(item, approve, reviewer, q.now())

	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("marshal review item: %w", err)
	}
	if err := q.client.HSet(ctx, q.itemsKey, id, data).Err(); err != nil {
		return nil, fmt.Errorf("redis store resolution: %w", err)
	}
	return item, nil
}
