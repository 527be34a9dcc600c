package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

func TestAttemptStoreMirrorsSnapshots(t *testing.T) {
	mr, client := newServer(t)
	store := NewAttemptStore(client, time.Minute)
	ctx := context.Background()

	exam, _ := app.DefaultExamBank().Get("daa")
	attempt := app.NewAttempt("a1", "u1", exam)
	store.Add(attempt)
	if _, err := attempt.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := store.Record(ctx, attempt.Snapshot()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if !mr.Exists("attempt:a1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("attempt:a1"); ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %v", ttl)
	}

	store.Remove("a1")
	if _, ok := store.Get("a1"); ok {
		t.Fatalf("expected live attempt removed")
	}
	snap, err := store.Snapshot(ctx, "a1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Phase != domain.PhaseInProgress || snap.ExamID != "daa" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Snapshot(ctx, "a1"); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected expired snapshot, got %v", err)
	}
}

func TestAttemptStoreExpiresIdleAttempts(t *testing.T) {
	_, client := newServer(t)
	store := NewAttemptStore(client, 20*time.Millisecond)
	exam, _ := app.DefaultExamBank().Get("daa")

	idle := app.NewAttempt("idle", "u1", exam)
	expired := false
	idle.OnExpire(func() { expired = true })
	running := app.NewAttempt("running", "u1", exam)
	store.Add(idle)
	store.Add(running)
	if _, err := running.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := store.Get("idle"); ok || !expired {
		t.Fatalf("expected idle attempt expired, live=%v expired=%v", ok, expired)
	}
	if _, ok := store.Get("running"); !ok {
		t.Fatalf("running attempt must stay live")
	}
}
