// Package session persists serialized conversation state between turns so a
// dialogue survives stateless HTTP requests and WebSocket reconnects.
//
// Concurrency note: overlapping turns on the same (user, session) pair are
// not serialized; save-after-load is last-writer-wins and overlapping turns
// produce undefined ordering. One user is expected to drive one conversation
// at a time.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aurasense/aurasense-server/internal/model"
)

// Store keeps conversation state in Redis with a sliding TTL: every save
// refreshes the expiry, so an idle conversation eventually evicts itself.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// Open parses a redis URL, verifies connectivity, and returns a session store.
func Open(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(rdb, ttl), nil
}

// New wraps an existing client; used by tests with miniredis.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(userID, sessionID string) string {
	return "onboarding:session:" + userID + ":" + sessionID
}

// Save serializes and stores the state, refreshing the TTL.
func (s *Store) Save(ctx context.Context, userID, sessionID string, st *model.ConversationState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal conversation state: %w", err)
	}
	if err := s.rdb.Set(ctx, key(userID, sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored state, or (nil, nil) when the session does not
// exist. A missing session is not an error: callers start a fresh
// conversation seeded from the durable record.
func (s *Store) Load(ctx context.Context, userID, sessionID string) (*model.ConversationState, error) {
	data, err := s.rdb.Get(ctx, key(userID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var st model.ConversationState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("unmarshal conversation state: %w", err)
	}
	return &st, nil
}

// Delete removes the session. Deleting a missing session is a no-op.
func (s *Store) Delete(ctx context.Context, userID, sessionID string) error {
	if err := s.rdb.Del(ctx, key(userID, sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// HealthPing implements health.HealthPinger for the session cache.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error { return s.rdb.Close() }
