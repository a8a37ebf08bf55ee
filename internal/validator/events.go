package validator

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/tensorplex-labs/prompting/internal/utils/redis"
)

type EventStore interface {
	Append(ctx context.Context, event *StepEvent) error
}

var _ EventStore = (*RedisEventStore)(nil)

// RedisEventStore keeps step events as JSON in a capped Redis list.
type RedisEventStore struct {
	Redis  redis.RedisInterface
	Key    string
	MaxLen int64
}

func NewRedisEventStore(r redis.RedisInterface, key string, maxLen int64) *RedisEventStore {
	return &RedisEventStore{Redis: r, Key: key, MaxLen: maxLen}
}

func (s *RedisEventStore) Append(ctx context.Context, event *StepEvent) error {
	data, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal step event: %w", err)
	}
	if err := s.Redis.RPush(ctx, s.Key, s.MaxLen, string(data)); err != nil {
		return fmt.Errorf("append step event: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest events, oldest first.
func (s *RedisEventStore) Recent(ctx context.Context, n int64) ([]StepEvent, error) {
	if n <= 0 {
		return []StepEvent{}, nil
	}
	raw, err := s.Redis.LRange(ctx, s.Key, -n, -1)
	if err != nil {
		return nil, fmt.Errorf("read step events: %w", err)
	}
	events := make([]StepEvent, 0, len(raw))
	for _, r := range raw {
		var ev StepEvent
		if err := sonic.UnmarshalString(r, &ev); err != nil {
			return nil, fmt.Errorf("decode step event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *RedisEventStore) Len(ctx context.Context) (int64, error) {
	return s.Redis.LLen(ctx, s.Key)
}
