package app_test

import (
	"testing"
	"time"

	"student-analyzer/internal/app"
)

func TestLiveAttemptsTouchKeepsAttemptAlive(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	live := app.NewLiveAttempts(time.Minute, func() time.Time { return now })
	attempt := app.NewAttempt("a1", "u1", fiveQuestionExam(time.Minute))
	expired := 0
	attempt.OnExpire(func() { expired++ })
	live.Add(attempt)

	now = now.Add(50 * time.Second)
	live.Touch("a1")
	now = now.Add(50 * time.Second)
	if _, ok := live.Get("a1"); !ok {
		t.Fatalf("touched attempt should still be live")
	}

	now = now.Add(time.Minute)
	if _, ok := live.Get("a1"); ok {
		t.Fatalf("expected idle attempt dropped")
	}
	if expired != 1 || live.Len() != 0 {
		t.Fatalf("expected one expiry and an empty table, got %d and %d", expired, live.Len())
	}
}

func TestLiveAttemptsWithoutIdleKeepEverything(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	live := app.NewLiveAttempts(0, func() time.Time { return now })
	live.Add(app.NewAttempt("a1", "u1", fiveQuestionExam(time.Minute)))

	now = now.Add(24 * time.Hour)
	if _, ok := live.Get("a1"); !ok {
		t.Fatalf("expected attempt kept without an idle period")
	}
	live.Remove("a1")
	if live.Len() != 0 {
		t.Fatalf("expected empty table after remove")
	}
}
