package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
	"student-analyzer/internal/infra/memory"
)

func seededBoards(t *testing.T) *app.LeaderboardService {
	t.Helper()
	store := memory.NewDocumentStore()
	putStudent(t, store, "a", "Ana", "S-1", map[string]any{"dsaScores": scoreDoc(90), "daaScores": scoreDoc(70), "class": "CS-A"})
	putStudent(t, store, "b", "Ben", "S-2", map[string]any{"dsaScores": scoreDoc(95, 90)})
	putStudent(t, store, "c", "Cy", "S-3", map[string]any{"dsaScores": scoreDoc(70), "gpa": 3.2, "attendance": 90})
	putStudent(t, store, "d", "Dee", "S-4", nil)
	if err := store.Set(context.Background(), app.CollectionStudents, "bad", map[string]any{"dsaScores": "not a list"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return app.NewLeaderboardService(store)
}

func TestSubjectBoard(t *testing.T) {
	lb, err := seededBoards(t).Subject(context.Background(), domain.SubjectDSA)
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if len(lb.Rows) != 3 {
		t.Fatalf("expected 3 ranked students, got %+v", lb.Rows)
	}
	if lb.Rows[0].UID != "a" || lb.Rows[1].UID != "b" || lb.Rows[1].Score != 90 || lb.Rows[2].UID != "c" {
		t.Fatalf("unexpected order %+v", lb.Rows)
	}
	if lb.Message != "" {
		t.Fatalf("unexpected message %q", lb.Message)
	}
}

func TestSubjectBoardEmptyAndInvalid(t *testing.T) {
	svc := seededBoards(t)
	lb, err := svc.Subject(context.Background(), domain.SubjectAptitude)
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if len(lb.Rows) != 0 || lb.Message == "" {
		t.Fatalf("expected empty board with message, got %+v", lb)
	}
	var verr domain.ValidationError
	if _, err := svc.Subject(context.Background(), "chemistry"); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOverallAndClassBoards(t *testing.T) {
	svc := seededBoards(t)
	overall, err := svc.Overall(context.Background())
	if err != nil {
		t.Fatalf("overall: %v", err)
	}
	if overall.Board != "overall" || len(overall.Rows) != 3 || overall.Rows[0].UID != "b" || overall.Rows[1].Score != 80 {
		t.Fatalf("unexpected overall board %+v", overall.Rows)
	}

	class, err := svc.Class(context.Background())
	if err != nil {
		t.Fatalf("class: %v", err)
	}
	if len(class.Rows) != 3 || class.Rows[0].UID != "b" || class.Rows[1].UID != "c" {
		t.Fatalf("unexpected class board %+v", class.Rows)
	}
}

func TestStandings(t *testing.T) {
	st, err := seededBoards(t).Standings(context.Background(), "c")
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if st.Subjects[domain.SubjectDSA].Rank != 3 || st.Subjects[domain.SubjectDAA].Rank != 0 || st.Overall.Rank != 3 {
		t.Fatalf("unexpected standings %+v", st)
	}
}

func TestBoardAverages(t *testing.T) {
	svc := seededBoards(t)
	dsa, err := svc.Subject(context.Background(), domain.SubjectDSA)
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if dsa.Average != 83 {
		t.Fatalf("expected rounded dsa average 83, got %d", dsa.Average)
	}
	apt, err := svc.Subject(context.Background(), domain.SubjectAptitude)
	if err != nil {
		t.Fatalf("subject: %v", err)
	}
	if apt.Average != 0 {
		t.Fatalf("expected zero average on an empty board, got %d", apt.Average)
	}
}

func TestStandingsCompareToNeighboursAndAverage(t *testing.T) {
	svc := seededBoards(t)
	ctx := context.Background()

	top, err := svc.Standings(ctx, "a")
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if got := top.Subjects[domain.SubjectDSA]; got.Rank != 1 || got.PointsToNext != 0 || !got.AboveAverage || got.Average != 83 {
		t.Fatalf("unexpected rank 1 standing %+v", got)
	}
	if got := top.Overall; got.Rank != 2 || got.Score != 80 || got.Average != 80 || got.AboveAverage || got.PointsToNext != 11 {
		t.Fatalf("score equal to the average is not above it: %+v", got)
	}

	tied, err := svc.Standings(ctx, "b")
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if got := tied.Subjects[domain.SubjectDSA]; got.Rank != 2 || got.PointsToNext != 1 {
		t.Fatalf("a tie still needs one point, got %+v", got)
	}

	last, err := svc.Standings(ctx, "c")
	if err != nil {
		t.Fatalf("standings: %v", err)
	}
	if got := last.Subjects[domain.SubjectDSA]; got.PointsToNext != 21 || got.AboveAverage {
		t.Fatalf("unexpected rank 3 standing %+v", got)
	}
	if got := last.Subjects[domain.SubjectAptitude]; got != (domain.Standing{}) {
		t.Fatalf("expected zero standing on an empty board, got %+v", got)
	}
}

// gatedStore blocks List until release is closed or the load context ends.
type gatedStore struct {
	*memory.DocumentStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedStore) List(ctx context.Context, collection string) ([]app.Document, error) {
	s.once.Do(func() { close(s.entered) })
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.DocumentStore.List(ctx, collection)
}

func TestSharedLoadSurvivesFirstCallerCancel(t *testing.T) {
	store := &gatedStore{
		DocumentStore: memory.NewDocumentStore(),
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	putStudent(t, store.DocumentStore, "a", "Ana", "S-1", map[string]any{"dsaScores": scoreDoc(90)})
	svc := app.NewLeaderboardService(store)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Subject(firstCtx, domain.SubjectDSA)
		firstErr <- err
	}()
	<-store.entered

	type outcome struct {
		lb  domain.Leaderboard
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		lb, err := svc.Subject(context.Background(), domain.SubjectDSA)
		second <- outcome{lb, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled first caller, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("first caller did not return after cancel")
	}

	close(store.release)
	select {
	case got := <-second:
		if got.err != nil {
			t.Fatalf("second caller failed: %v", got.err)
		}
		if len(got.lb.Rows) != 1 || got.lb.Rows[0].UID != "a" {
			t.Fatalf("unexpected board %+v", got.lb.Rows)
		}
	case <-time.After(time.Second):
		t.Fatalf("second caller never returned")
	}
}
