package app

import (
	"sync"
	"time"
)

// LiveAttempts is the in-process table of attempts behind an attempt store.
// An attempt with no activity for the idle period is unlinked and expired,
// unless its countdown is still running. Sweeps happen on every call.
type LiveAttempts struct {
	idle  time.Duration
	clock func() time.Time

	mu       sync.Mutex
	attempts map[string]liveAttempt
}

type liveAttempt struct {
	attempt  *Attempt
	lastSeen time.Time
}

// NewLiveAttempts creates a table. A non-positive idle period keeps attempts
// until they are removed.
func NewLiveAttempts(idle time.Duration, clock func() time.Time) *LiveAttempts {
	if clock == nil {
		clock = time.Now
	}
	return &LiveAttempts{
		idle:     idle,
		clock:    clock,
		attempts: make(map[string]liveAttempt),
	}
}

func (l *LiveAttempts) Add(attempt *Attempt) {
	now := l.clock()
	l.mu.Lock()
	l.attempts[attempt.ID()] = liveAttempt{attempt: attempt, lastSeen: now}
	idle := l.sweepLocked(now)
	l.mu.Unlock()
	expire(idle)
}

func (l *LiveAttempts) Get(id string) (*Attempt, bool) {
	now := l.clock()
	l.mu.Lock()
	idle := l.sweepLocked(now)
	entry, ok := l.attempts[id]
	l.mu.Unlock()
	expire(idle)
	return entry.attempt, ok
}

func (l *LiveAttempts) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, id)
}

// Touch marks id as active. Unknown ids are ignored.
func (l *LiveAttempts) Touch(id string) {
	now := l.clock()
	l.mu.Lock()
	if entry, ok := l.attempts[id]; ok {
		entry.lastSeen = now
		l.attempts[id] = entry
	}
	idle := l.sweepLocked(now)
	l.mu.Unlock()
	expire(idle)
}

// Len reports how many attempts are live.
func (l *LiveAttempts) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

func (l *LiveAttempts) sweepLocked(now time.Time) []*Attempt {
	if l.idle <= 0 {
		return nil
	}
	var idle []*Attempt
	for id, entry := range l.attempts {
		if now.Sub(entry.lastSeen) < l.idle || !entry.attempt.Expirable() {
			continue
		}
		delete(l.attempts, id)
		idle = append(idle, entry.attempt)
	}
	return idle
}

func expire(attempts []*Attempt) {
	for _, attempt := range attempts {
		attempt.Expire()
	}
}
