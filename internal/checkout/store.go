package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptStore holds at most one checkout attempt per session.
type AttemptStore interface {
	// Begin stores the attempt only if the session has none. Returns false
	// when an attempt is already in flight.
	Begin(ctx context.Context, a *Attempt) (bool, error)
	Get(ctx context.Context, sessionID string) (*Attempt, error)
	// Update overwrites the stored attempt, keeping its remaining TTL.
	Update(ctx context.Context, a *Attempt) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisAttemptStore keeps attempts in Redis under a TTL so abandoned
// checkouts unlock themselves.
type RedisAttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAttemptStore(client *redis.Client, ttl time.Duration) *RedisAttemptStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisAttemptStore{client: client, ttl: ttl}
}

func attemptKey(sessionID string) string {
	return "checkout:attempt:" + sessionID
}

func (s *RedisAttemptStore) Begin(ctx context.Context, a *Attempt) (bool, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return false, fmt.Errorf("marshal attempt: %w", err)
	}

	ok, err := s.client.SetNX(ctx, attemptKey(a.SessionID), raw, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("store attempt: %w", err)
	}
	return ok, nil
}

func (s *RedisAttemptStore) Get(ctx context.Context, sessionID string) (*Attempt, error) {
	raw, err := s.client.Get(ctx, attemptKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load attempt: %w", err)
	}

	var a Attempt
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return &a, nil
}

func (s *RedisAttemptStore) Update(ctx context.Context, a *Attempt) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	if err := s.client.Set(ctx, attemptKey(a.SessionID), raw, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	return nil
}

func (s *RedisAttemptStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, attemptKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	return nil
}
