package violations

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"response-guard/internal/response"

	"github.com/redis/go-redis/v9"
)

const (
	handlersKey   = "violations:handlers"
	handlerPrefix = "violations:handler:"
)

// Store keeps the most recent violations per handler in Redis lists. Each
// list is capped at maxPerHandler entries and expires ttl after its last
// write.
type Store struct {
	client        *redis.Client
	maxPerHandler int64
	ttl           time.Duration
}

func NewStore(client *redis.Client, maxPerHandler int, ttl time.Duration) *Store {
	return &Store{
		client:        client,
		maxPerHandler: int64(maxPerHandler),
		ttl:           ttl,
	}
}

func handlerKey(handlerID string) string {
	return handlerPrefix + handlerID
}

func (s *Store) Save(ctx context.Context, v response.Violation) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal violation: %w", err)
	}

	key := handlerKey(v.HandlerID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, s.maxPerHandler-1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		pipe.SAdd(ctx, handlersKey, v.HandlerID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save violation for %s: %w", v.HandlerID, err)
	}
	return nil
}

// Recent returns up to limit violations for handlerID, newest first. A
// non-positive limit returns everything kept.
func (s *Store) Recent(ctx context.Context, handlerID string, limit int) ([]response.Violation, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	raw, err := s.client.LRange(ctx, handlerKey(handlerID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read violations for %s: %w", handlerID, err)
	}

	out := make([]response.Violation, 0, len(raw))
	for _, item := range raw {
		var v response.Violation
		if err := json.Unmarshal([]byte(item), &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Handlers lists every handler that has recorded a violation, sorted.
func (s *Store) Handlers(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, handlersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list violating handlers: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
