package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each session's history as a JSON array under a
// namespaced key with a TTL that resets on every write.
type RedisStore struct {
	client *redis.Client
	window int
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, window int, ttl time.Duration) *RedisStore {
	if window <= 0 {
		window = 20
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, window: window, ttl: ttl}
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	turns, err := s.Load(ctx, sessionID)
	if err != nil {
		// Start a fresh window rather than failing the write.
		turns = nil
	}

	turns = append(turns, turn)
	if len(turns) > s.window {
		turns = turns[len(turns)-s.window:]
	}

	payload, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("marshal conversation history: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("write conversation history: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]Turn, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read conversation history: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		return nil, fmt.Errorf("decode conversation history: %w", err)
	}
	return turns, nil
}

var _ Store = (*RedisStore)(nil)
