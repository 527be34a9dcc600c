package memory

import (
	"context"
	"sync"
	"time"
)

// Revoker keeps revoked token ids in process until they expire.
type Revoker struct {
	clock func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewRevoker() *Revoker {
	return &Revoker{clock: time.Now, revoked: make(map[string]time.Time)}
}

func (r *Revoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock()
	for id, exp := range r.revoked {
		if !exp.After(now) {
			delete(r.revoked, id)
		}
	}
	r.revoked[tokenID] = until
	return nil
}

func (r *Revoker) Revoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.revoked[tokenID]
	return ok && exp.After(r.clock()), nil
}
