package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Live attempts stay in a local table so their countdown and observers keep
// running in process; every recorded snapshot is mirrored to Redis with a
// TTL so results survive the attempt and can be read from any instance.
// A live attempt left idle for the TTL is expired like its Redis key.
type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration
	live   *app.LiveAttempts
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client: client,
		ttl:    ttl,
		live:   app.NewLiveAttempts(ttl, time.Now),
	}
}

func (s *AttemptStore) Add(attempt *app.Attempt) {
	s.live.Add(attempt)
}

func (s *AttemptStore) Get(id string) (*app.Attempt, bool) {
	return s.live.Get(id)
}

func (s *AttemptStore) Remove(id string) {
	s.live.Remove(id)
}

func (s *AttemptStore) Record(ctx context.Context, snap domain.AttemptSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.live.Touch(snap.ID)
	return s.client.Set(ctx, s.key(snap.ID), raw, s.ttl).Err()
}

func (s *AttemptStore) Snapshot(ctx context.Context, id string) (domain.AttemptSnapshot, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.AttemptSnapshot{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	var snap domain.AttemptSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.AttemptSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (s *AttemptStore) key(id string) string {
	return "attempt:" + id
}
