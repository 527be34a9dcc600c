package memory

import (
	"context"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

// EventBus delivers change events within one process.
type EventBus struct {
	hub *app.Hub[domain.ChangeEvent]
}

func NewEventBus() *EventBus {
	return &EventBus{hub: app.NewHub[domain.ChangeEvent](16)}
}

func (b *EventBus) Publish(_ context.Context, event domain.ChangeEvent) error {
	b.hub.Publish(event.UserID, event)
	return nil
}

func (b *EventBus) Subscribe(_ context.Context, userID string) (<-chan domain.ChangeEvent, func(), error) {
	ch, cancel := b.hub.Subscribe(userID)
	return ch, cancel, nil
}
