package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ppiankov/quizguard/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisStore appends entries to a Redis stream. Streams only grow through
// XADD, which matches the append-only contract.
type RedisStore struct {
	client *redis.Client
	stream string
}

// NewRedisStore creates a store on the stream keyPrefix:audit
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "quizguard"
	}
	return &RedisStore{client: client, stream: keyPrefix + ":audit"}
}

func (s *RedisStore) Append(ctx context.Context, entry model.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"content_id": entry.ContentID,
			"sequence":   entry.Sequence,
			"entry":      string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd: %w", err)
	}
	return nil
}

func (s *RedisStore) Entries(ctx context.Context, contentID string) ([]model.AuditEntry, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return filterContent(all, contentID), nil
}

func (s *RedisStore) All(ctx context.Context) ([]model.AuditEntry, error) {
	msgs, err := s.client.XRange(ctx, s.stream, "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("redis xrange: %w", err)
	}

	out := make([]model.AuditEntry, 0, len(msgs))
	for _, msg := range msgs {
		entry, err := decodeMessage(msg)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	sortBySequence(out)
	return out, nil
}

func (s *RedisStore) LastSequence(ctx context.Context) (int64, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis xrevrange: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	entry, err := decodeMessage(msgs[0])
	if err != nil {
		return 0, err
	}
	return entry.Sequence, nil
}

func decodeMessage(msg redis.XMessage) (model.AuditEntry, error) {
	var entry model.AuditEntry
	raw, ok := msg.Values["entry"].(string)
	if !ok {
		return entry, fmt.Errorf("audit stream message %s has no entry", msg.ID)
	}
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return entry, fmt.Errorf("unmarshal audit message %s: %w", msg.ID, err)
	}
	return entry, nil
}
