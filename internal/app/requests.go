package app

import (
	"context"
	"sort"
	"time"

	"student-analyzer/internal/domain"
)

// DocumentRequests keeps friend requests in the document store.
type DocumentRequests struct {
	store DocumentStore
}

func NewDocumentRequests(store DocumentStore) *DocumentRequests {
	return &DocumentRequests{store: store}
}

func (r *DocumentRequests) Create(ctx context.Context, req domain.FriendRequest) (domain.FriendRequest, error) {
	id, err := r.store.Add(ctx, CollectionRequests, map[string]any{
		"fromId":    req.FromID,
		"fromName":  req.FromName,
		"toId":      req.ToID,
		"toName":    req.ToName,
		"status":    req.Status,
		"timestamp": req.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return domain.FriendRequest{}, err
	}
	req.ID = id
	return req, nil
}

func (r *DocumentRequests) Get(ctx context.Context, id string) (domain.FriendRequest, error) {
	doc, err := r.store.Get(ctx, CollectionRequests, id)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	return RequestFromDocument(doc), nil
}

// Pending returns matching pending requests, oldest first.
func (r *DocumentRequests) Pending(ctx context.Context, filter RequestFilter) ([]domain.FriendRequest, error) {
	filters := []Filter{Where("status", domain.RequestPending)}
	if filter.FromID != "" {
		filters = append(filters, Where("fromId", filter.FromID))
	}
	if filter.ToID != "" {
		filters = append(filters, Where("toId", filter.ToID))
	}
	docs, err := r.store.Query(ctx, CollectionRequests, filters...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FriendRequest, 0, len(docs))
	for _, doc := range docs {
		out = append(out, RequestFromDocument(doc))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *DocumentRequests) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionRequests, id)
}
