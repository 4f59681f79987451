package memory

import (
	"context"
	"sync"
	"time"
)

type session struct {
	turns     []Turn
	expiresAt time.Time
}

// InMemoryStore mirrors the Redis semantics (window truncation, session
// TTL reset on write) without an external service. Used by tests and
// store-less deployments.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]session
	window   int
	ttl      time.Duration
	now      func() time.Time
}

func NewInMemoryStore(window int, ttl time.Duration) *InMemoryStore {
	if window <= 0 {
		window = 20
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InMemoryStore{
		sessions: make(map[string]session),
		window:   window,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *InMemoryStore) Append(_ context.Context, sessionID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(sessionID)
	existing := s.sessions[key]
	turns := existing.turns
	if !existing.expiresAt.IsZero() && s.now().After(existing.expiresAt) {
		turns = nil
	}

	turns = append(turns, turn)
	if len(turns) > s.window {
		turns = turns[len(turns)-s.window:]
	}

	s.sessions[key] = session{turns: turns, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, sessionID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(sessionID)
	existing, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}
	if s.now().After(existing.expiresAt) {
		delete(s.sessions, key)
		return nil, nil
	}

	out := make([]Turn, len(existing.turns))
	copy(out, existing.turns)
	return out, nil
}

var _ Store = (*InMemoryStore)(nil)
