package redis

import (
	"context"
	"testing"
	"time"

	"student-analyzer/internal/domain"
)

func TestEventBusDeliversToUserChannel(t *testing.T) {
	_, client := newServer(t)
	bus := NewEventBus(client)
	ctx := context.Background()

	ch, cancel, err := bus.Subscribe(ctx, "u1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	req := domain.FriendRequest{ID: "r1", FromID: "u2", ToID: "u1", Status: domain.RequestPending}
	if err := bus.Publish(ctx, domain.ChangeEvent{Kind: domain.EventRequestCreated, UserID: "u2"}); err != nil {
		t.Fatalf("publish other: %v", err)
	}
	if err := bus.Publish(ctx, domain.ChangeEvent{Kind: domain.EventRequestCreated, UserID: "u1", Request: &req}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.UserID != "u1" || ev.Request == nil || ev.Request.ID != "r1" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestEventBusCancelClosesChannel(t *testing.T) {
	_, client := newServer(t)
	bus := NewEventBus(client)

	ch, cancel, err := bus.Subscribe(context.Background(), "u1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("channel not closed after cancel")
	}
}
