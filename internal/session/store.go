package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/workflow"
)

// Store holds wizard session state keyed by session id. Implementations
// must return workflow.ErrSessionNotFound for unknown ids.
type Store interface {
	Get(ctx context.Context, id string) (*workflow.State, error)
	Save(ctx context.Context, state *workflow.State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory. It is the default backend;
// state is lost on restart, which matches the throwaway nature of a wizard
// session.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*workflow.State
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*workflow.State),
		ttl:      ttl,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*workflow.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[id]
	if !ok {
		return nil, workflow.ErrSessionNotFound
	}
	if s.expired(state, time.Now()) {
		return nil, workflow.ErrSessionNotFound
	}
	return state, nil
}

func (s *MemoryStore) Save(ctx context.Context, state *workflow.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[state.ID] = state
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Purge drops sessions idle for longer than the store TTL and returns the
// ids it removed so the caller can clean up their working directories.
func (s *MemoryStore) Purge(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, state := range s.sessions {
		if s.expired(state, now) {
			delete(s.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (s *MemoryStore) expired(state *workflow.State, now time.Time) bool {
	return s.ttl > 0 && now.Sub(state.UpdatedAt) > s.ttl
}

// RedisStore keeps sessions as JSON blobs in Redis so several instances can
// share them. Expiry is delegated to the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*workflow.State, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, workflow.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var state workflow.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	// Reading counts as activity; push the expiry out.
	s.client.Expire(ctx, sessionKey(id), s.ttl)
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *workflow.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(state.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
