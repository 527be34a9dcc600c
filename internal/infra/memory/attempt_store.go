package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
// Snapshots outlive the live attempt until their TTL runs out; a live attempt
// left idle for the TTL is expired.
type AttemptStore struct {
	ttl   time.Duration
	clock func() time.Time
	rnd   *rand.Rand
	live  *app.LiveAttempts

	mu        sync.RWMutex
	snapshots map[string]recordedSnapshot
}

type recordedSnapshot struct {
	snap      domain.AttemptSnapshot
	expiresAt time.Time
}

func NewAttemptStore(ttl time.Duration) *AttemptStore {
	s := &AttemptStore{
		ttl:       ttl,
		clock:     time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		snapshots: make(map[string]recordedSnapshot),
	}
	s.live = app.NewLiveAttempts(ttl, func() time.Time { return s.clock() })
	return s
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

func (s *AttemptStore) Record(_ context.Context, snap domain.AttemptSnapshot) error {
	now := s.clock()
	s.mu.Lock()
	s.snapshots[snap.ID] = recordedSnapshot{snap: snap, expiresAt: now.Add(s.ttlWithJitter())}
	s.sweepLocked(now)
	s.mu.Unlock()

	s.live.Touch(snap.ID)
	return nil
}

func (s *AttemptStore) Snapshot(_ context.Context, id string) (domain.AttemptSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.snapshots[id]
	if !ok || s.expired(entry, s.clock()) {
		return domain.AttemptSnapshot{}, domain.ErrAttemptNotFound
	}
	return entry.snap, nil
}

// sweepLocked drops expired snapshots.
func (s *AttemptStore) sweepLocked(now time.Time) {
	for id, entry := range s.snapshots {
		if s.expired(entry, now) {
			delete(s.snapshots, id)
		}
	}
}

// expired is always false without a TTL.
func (s *AttemptStore) expired(entry recordedSnapshot, now time.Time) bool {
	return s.ttl > 0 && !entry.expiresAt.After(now)
}

func (s *AttemptStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
