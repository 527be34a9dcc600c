package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker stores revoked token ids with a TTL matching the token's expiry.
type Revoker struct {
	client *redis.Client
	now    func() time.Time
}

func NewRevoker(client *redis.Client) *Revoker {
	return &Revoker{client: client, now: time.Now}
}

func (r *Revoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.key(tokenID), "1", ttl).Err()
}

func (r *Revoker) Revoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Revoker) key(tokenID string) string {
	return "auth:revoked:" + tokenID
}
