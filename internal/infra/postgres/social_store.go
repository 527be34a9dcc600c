package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

type friendRequestRow struct {
	bun.BaseModel `bun:"table:friend_requests"`

	ID        string    `bun:"id,pk"`
	FromID    string    `bun:"from_id,notnull"`
	FromName  string    `bun:"from_name,notnull"`
	ToID      string    `bun:"to_id,notnull"`
	ToName    string    `bun:"to_name,notnull"`
	Status    string    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (r friendRequestRow) toDomain() domain.FriendRequest {
	return domain.FriendRequest{
		ID:        r.ID,
		FromID:    r.FromID,
		FromName:  r.FromName,
		ToID:      r.ToID,
		ToName:    r.ToName,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

// SocialStore is the relational app.RequestStore over the friend_requests table.
type SocialStore struct {
	db *bun.DB
}

func NewSocialStore(db *bun.DB) *SocialStore {
	return &SocialStore{db: db}
}

func (s *SocialStore) Create(ctx context.Context, req domain.FriendRequest) (domain.FriendRequest, error) {
	row := friendRequestRow{
		ID:        uuid.NewString(),
		FromID:    req.FromID,
		FromName:  req.FromName,
		ToID:      req.ToID,
		ToName:    req.ToName,
		Status:    req.Status,
		CreatedAt: req.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.FriendRequest{}, fmt.Errorf("insert friend request: %w", err)
	}
	return row.toDomain(), nil
}

func (s *SocialStore) Get(ctx context.Context, id string) (domain.FriendRequest, error) {
	var row friendRequestRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FriendRequest{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.FriendRequest{}, fmt.Errorf("get friend request: %w", err)
	}
	return row.toDomain(), nil
}

func (s *SocialStore) Pending(ctx context.Context, filter app.RequestFilter) ([]domain.FriendRequest, error) {
	var rows []friendRequestRow
	q := s.db.NewSelect().Model(&rows).Where("status = ?", domain.RequestPending)
	if filter.FromID != "" {
		q = q.Where("from_id = ?", filter.FromID)
	}
	if filter.ToID != "" {
		q = q.Where("to_id = ?", filter.ToID)
	}
	if err := q.Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}
	out := make([]domain.FriendRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *SocialStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*friendRequestRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
