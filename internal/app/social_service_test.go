package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
	"student-analyzer/internal/infra/memory"
)

func newSocial(t *testing.T) *app.SocialService {
	t.Helper()
	store := memory.NewDocumentStore()
	putStudent(t, store, "a", "Ana", "S-1", nil)
	putStudent(t, store, "b", "Ben", "S-2", nil)
	putStudent(t, store, "c", "Cy", "S-3", nil)
	return app.NewSocialService(store, app.NewDocumentRequests(store), memory.NewEventBus())
}

func nextState(t *testing.T, ch <-chan domain.SocialState) domain.SocialState {
	t.Helper()
	select {
	case st, ok := <-ch:
		if !ok {
			t.Fatalf("social feed closed")
		}
		return st
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for social state")
	}
	return domain.SocialState{}
}

func TestSearchSkipsSelf(t *testing.T) {
	svc := newSocial(t)
	found, err := svc.Search(context.Background(), "a", "S-")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 || found[0].UID != "b" {
		t.Fatalf("unexpected results %+v", found)
	}
	var verr domain.ValidationError
	if _, err := svc.Search(context.Background(), "a", "  "); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSendRequestRules(t *testing.T) {
	ctx := context.Background()
	svc := newSocial(t)

	var verr domain.ValidationError
	if _, err := svc.SendRequest(ctx, "a", "a"); !errors.As(err, &verr) {
		t.Fatalf("expected self request rejected, got %v", err)
	}
	if _, err := svc.SendRequest(ctx, "a", "ghost"); !errors.Is(err, domain.ErrStudentNotFound) {
		t.Fatalf("expected student not found, got %v", err)
	}
	req, err := svc.SendRequest(ctx, "a", "b")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if req.FromName != "Ana" || req.ToName != "Ben" || req.Status != domain.RequestPending {
		t.Fatalf("unexpected request %+v", req)
	}
	if _, err := svc.SendRequest(ctx, "a", "b"); !errors.Is(err, domain.ErrRequestPending) {
		t.Fatalf("expected pending conflict, got %v", err)
	}

	if _, err := svc.Accept(ctx, "a", req.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("only the addressee may accept, got %v", err)
	}
	friend, err := svc.Accept(ctx, "b", req.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if friend.UID != "a" || friend.Name != "Ana" {
		t.Fatalf("unexpected friend %+v", friend)
	}
	if _, err := svc.SendRequest(ctx, "a", "b"); !errors.Is(err, domain.ErrAlreadyFriends) {
		t.Fatalf("expected already friends, got %v", err)
	}

	ana, err := svc.State(ctx, "a")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if len(ana.Friends) != 1 || ana.Friends[0].UID != "b" {
		t.Fatalf("friendship must be mutual, got %+v", ana.Friends)
	}
}

func TestDeclineRemovesRequest(t *testing.T) {
	ctx := context.Background()
	svc := newSocial(t)
	req, err := svc.SendRequest(ctx, "c", "b")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := svc.Decline(ctx, "b", req.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}
	st, err := svc.State(ctx, "b")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if len(st.Requests) != 0 || len(st.Friends) != 0 {
		t.Fatalf("expected empty state, got %+v", st)
	}
	if err := svc.Decline(ctx, "b", req.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubscribeFollowsChanges(t *testing.T) {
	ctx := context.Background()
	svc := newSocial(t)
	feed, cancel, err := svc.Subscribe(ctx, "b")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if st := nextState(t, feed); len(st.Requests) != 0 {
		t.Fatalf("expected empty initial state, got %+v", st)
	}
	req, err := svc.SendRequest(ctx, "a", "b")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if st := nextState(t, feed); len(st.Requests) != 1 || st.Requests[0].ID != req.ID {
		t.Fatalf("expected pending request, got %+v", st)
	}
	if _, err := svc.Accept(ctx, "b", req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if st := nextState(t, feed); len(st.Requests) != 0 {
		t.Fatalf("expected request removed, got %+v", st)
	}
	if st := nextState(t, feed); len(st.Friends) != 1 || st.Friends[0].UID != "a" {
		t.Fatalf("expected new friend, got %+v", st)
	}

	svc.SignedOut(ctx, "b")
	select {
	case _, ok := <-feed:
		if ok {
			t.Fatalf("expected feed closed after sign-out")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("feed did not close")
	}
}

func TestReduceSocialIsIdempotent(t *testing.T) {
	req := domain.FriendRequest{ID: "r1", FromID: "a", ToID: "b"}
	friend := domain.Friend{UID: "a", Name: "Ana"}
	state := domain.SocialState{UserID: "b"}

	created := domain.ChangeEvent{Kind: domain.EventRequestCreated, UserID: "b", Request: &req}
	state = app.ReduceSocial(app.ReduceSocial(state, created), created)
	if len(state.Requests) != 1 {
		t.Fatalf("expected one request, got %+v", state.Requests)
	}

	added := domain.ChangeEvent{Kind: domain.EventFriendAdded, UserID: "b", Friend: &friend}
	removed := domain.ChangeEvent{Kind: domain.EventRequestRemoved, UserID: "b", Request: &req}
	for i := 0; i < 2; i++ {
		state = app.ReduceSocial(state, removed)
		state = app.ReduceSocial(state, added)
	}
	if len(state.Requests) != 0 || len(state.Friends) != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
}
