package app

import (
	"context"

	"student-analyzer/internal/domain"
)

// Collections used by the services.
const (
	CollectionStudents = "students"
	CollectionTeachers = "teachers"
	CollectionRequests = "friend_requests"
	CollectionProjects = "projects"
	CollectionAccounts = "accounts"
)

// FriendsCollection is the subcollection holding a student's friends.
func FriendsCollection(uid string) string {
	return CollectionStudents + "/" + uid + "/friends"
}

// Document is a schemaless record as returned by the document store.
type Document struct {
	ID   string
	Data map[string]any
}

// Filter is an equality condition on a top-level field.
type Filter struct {
	Field string
	Value any
}

// Where builds a Filter.
func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// DocumentStore is the thin client over the backing document database.
// Update and ArrayUnion address top-level fields only.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Set(ctx context.Context, collection, id string, data map[string]any) error
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	ArrayUnion(ctx context.Context, collection, id, field string, values ...any) error
	Delete(ctx context.Context, collection, id string) error
}

// AttemptRepository keeps live attempts in process and mirrors their snapshots.
type AttemptRepository interface {
	Add(attempt *Attempt)
	Get(id string) (*Attempt, bool)
	Remove(id string)
	Record(ctx context.Context, snap domain.AttemptSnapshot) error
	Snapshot(ctx context.Context, id string) (domain.AttemptSnapshot, error)
}

// EventBus fans social change events out to the affected user's subscribers.
type EventBus interface {
	Publish(ctx context.Context, event domain.ChangeEvent) error
	Subscribe(ctx context.Context, userID string) (<-chan domain.ChangeEvent, func(), error)
}

// RequestFilter narrows pending friend requests; empty fields match anything.
type RequestFilter struct {
	FromID string
	ToID   string
}

// RequestStore persists friend requests.
type RequestStore interface {
	Create(ctx context.Context, req domain.FriendRequest) (domain.FriendRequest, error)
	Get(ctx context.Context, id string) (domain.FriendRequest, error)
	Pending(ctx context.Context, filter RequestFilter) ([]domain.FriendRequest, error)
	Delete(ctx context.Context, id string) error
}
