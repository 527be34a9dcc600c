package app_test

import (
	"testing"

	"student-analyzer/internal/app"
)

func TestHubDropsOldestForSlowSubscriber(t *testing.T) {
	hub := app.NewHub[int](2)
	ch, cancel := hub.Subscribe("t")
	defer cancel()

	for i := 1; i <= 3; i++ {
		hub.Publish("t", i)
	}
	if got := <-ch; got != 2 {
		t.Fatalf("expected oldest value dropped, got %d", got)
	}
	if got := <-ch; got != 3 {
		t.Fatalf("expected latest value, got %d", got)
	}
}

func TestHubTopicsAreIsolated(t *testing.T) {
	hub := app.NewHub[string](4)
	a, cancelA := hub.Subscribe("a")
	defer cancelA()
	b, cancelB := hub.Subscribe("b")
	defer cancelB()

	hub.Publish("a", "hello")
	if got := <-a; got != "hello" {
		t.Fatalf("unexpected value %q", got)
	}
	select {
	case v := <-b:
		t.Fatalf("topic b received %q", v)
	default:
	}
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	hub := app.NewHub[int](1)
	ch, cancel := hub.Subscribe("t")
	if hub.Subscribers("t") != 1 {
		t.Fatalf("expected one subscriber")
	}
	hub.Close("t")
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	cancel()
	if hub.Subscribers("t") != 0 {
		t.Fatalf("expected no subscribers")
	}
	hub.Publish("t", 1)
}
