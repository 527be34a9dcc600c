package app_test

import (
	"reflect"
	"testing"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

func TestRankSubjectConsecutiveOnTies(t *testing.T) {
	students := []domain.Student{
		student("A", map[domain.Subject][]int{domain.SubjectDSA: {90}}),
		student("B", map[domain.Subject][]int{domain.SubjectDSA: {40, 90}}),
		student("C", map[domain.Subject][]int{domain.SubjectDSA: {70}}),
		student("D", nil),
		student("E", map[domain.Subject][]int{domain.SubjectDSA: {55, 0}}),
	}
	rows := app.RankSubject(students, domain.SubjectDSA)

	want := map[string]int{"A": 1, "B": 2, "C": 3}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), rows)
	}
	for _, row := range rows {
		if want[row.UID] != row.Rank {
			t.Fatalf("expected %s at rank %d, got %d", row.UID, want[row.UID], row.Rank)
		}
	}
}

func TestRankingIsIdempotent(t *testing.T) {
	students := []domain.Student{
		student("A", map[domain.Subject][]int{domain.SubjectDAA: {60}}),
		student("B", map[domain.Subject][]int{domain.SubjectDAA: {60}}),
		student("C", map[domain.Subject][]int{domain.SubjectDAA: {95}}),
	}
	first := app.RankSubject(students, domain.SubjectDAA)
	second := app.RankSubject(students, domain.SubjectDAA)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("ranking differs between runs: %+v vs %+v", first, second)
	}
	for i, row := range first {
		if row.Rank != i+1 {
			t.Fatalf("ranks must be 1..k, got %+v", first)
		}
		if i > 0 && row.Score > first[i-1].Score {
			t.Fatalf("scores must not increase down the board: %+v", first)
		}
	}
}

func TestOverallMeanOfAvailableSubjects(t *testing.T) {
	s := student("A", map[domain.Subject][]int{domain.SubjectDSA: {80}, domain.SubjectDAA: {60}})
	rows := app.RankOverall([]domain.Student{s}, domain.RankedSubjects)
	if len(rows) != 1 || rows[0].Score != 70 {
		t.Fatalf("expected overall 70, got %+v", rows)
	}

	half := student("B", map[domain.Subject][]int{domain.SubjectDSA: {85}, domain.SubjectAptitude: {90}})
	if rows := app.RankOverall([]domain.Student{half}, domain.RankedSubjects); rows[0].Score != 88 {
		t.Fatalf("expected 87.5 to round to 88, got %d", rows[0].Score)
	}

	ui := student("C", map[domain.Subject][]int{domain.SubjectUI: {100}})
	if rows := app.RankOverall([]domain.Student{ui}, domain.RankedSubjects); len(rows) != 0 {
		t.Fatalf("students without ranked subjects are not on the overall board, got %+v", rows)
	}
}

func TestRankClassDerivesMissingFields(t *testing.T) {
	withGPA := student("A", map[domain.Subject][]int{domain.SubjectDSA: {50}})
	withGPA.GPA = 3.9
	withGPA.Attendance = 120
	derived := student("B", map[domain.Subject][]int{domain.SubjectDSA: {90}, domain.SubjectDAA: {80}})
	tied := student("C", map[domain.Subject][]int{domain.SubjectDSA: {85}})
	empty := student("D", nil)

	rows := app.RankClass([]domain.Student{derived, tied, withGPA, empty}, domain.RankedSubjects)
	if len(rows) != 3 {
		t.Fatalf("expected students without data to be skipped, got %+v", rows)
	}
	if rows[0].UID != "A" || rows[0].Progress != 100 {
		t.Fatalf("expected stored GPA first with clamped progress, got %+v", rows[0])
	}
	// B: overall 85 -> GPA 3.4, progress 85; C: overall 85 -> same GPA and progress
	if rows[1].UID != "B" || rows[1].GPA != 3.4 || rows[1].Progress != 85 {
		t.Fatalf("unexpected derived row %+v", rows[1])
	}
	if rows[2].UID != "C" || rows[2].Rank != 3 {
		t.Fatalf("expected stable order on full tie, got %+v", rows[2])
	}
	if rows[1].Class != "N/A" {
		t.Fatalf("expected default class, got %q", rows[1].Class)
	}
}

func TestStandingOfAbsentStudent(t *testing.T) {
	rows := app.RankSubject([]domain.Student{student("A", map[domain.Subject][]int{domain.SubjectDSA: {70}})}, domain.SubjectDSA)
	if got := app.StandingOf(rows, "A"); got.Rank != 1 || got.Score != 70 {
		t.Fatalf("unexpected standing %+v", got)
	}
	if got := app.StandingOf(rows, "Z"); got.Rank != 0 || got.Score != 0 {
		t.Fatalf("expected zero standing, got %+v", got)
	}
}

func TestStandingOfPointsToNext(t *testing.T) {
	rows := app.RankSubject([]domain.Student{
		student("A", map[domain.Subject][]int{domain.SubjectDSA: {91}}),
		student("B", map[domain.Subject][]int{domain.SubjectDSA: {60}}),
		student("C", map[domain.Subject][]int{domain.SubjectDSA: {75}}),
	}, domain.SubjectDSA)

	if avg := app.BoardAverage(rows); avg != 75 {
		t.Fatalf("expected average 75, got %d", avg)
	}
	want := map[string]domain.Standing{
		"A": {Rank: 1, Score: 91, Average: 75, AboveAverage: true},
		"C": {Rank: 2, Score: 75, Average: 75, PointsToNext: 17},
		"B": {Rank: 3, Score: 60, Average: 75, PointsToNext: 16},
		"Z": {Average: 75},
	}
	for uid, st := range want {
		if got := app.StandingOf(rows, uid); got != st {
			t.Fatalf("%s: expected %+v, got %+v", uid, st, got)
		}
	}
	if avg := app.BoardAverage(nil); avg != 0 {
		t.Fatalf("expected zero average for no rows, got %d", avg)
	}
}

func TestRankEmptyInput(t *testing.T) {
	if rows := app.RankSubject(nil, domain.SubjectDSA); len(rows) != 0 {
		t.Fatalf("expected empty board, got %+v", rows)
	}
	if rows := app.RankClass(nil, domain.RankedSubjects); len(rows) != 0 {
		t.Fatalf("expected empty class board, got %+v", rows)
	}
}
