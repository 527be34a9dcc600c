package app_test

import (
	"context"
	"errors"
	"testing"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
	"student-analyzer/internal/infra/memory"
)

func newRoster(t *testing.T) (*app.RosterService, *memory.DocumentStore) {
	t.Helper()
	store := memory.NewDocumentStore()
	putStudent(t, store, "a", "Ana Lopez", "S-1", map[string]any{"dsaScores": scoreDoc(80)})
	putStudent(t, store, "b", "Ben Okafor", "S-2", nil)
	err := store.Set(context.Background(), app.CollectionTeachers, "t1", map[string]any{"name": "Grace", "sids": []any{}})
	if err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	return app.NewRosterService(store), store
}

func TestLinkValidatesStudentID(t *testing.T) {
	svc, _ := newRoster(t)
	var verr domain.ValidationError
	for _, id := range []string{"", "   ", "S 1", "S/1"} {
		if _, err := svc.Link(context.Background(), "t1", id); !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %q, got %v", id, err)
		}
	}
	if _, err := svc.Link(context.Background(), "t1", "S-9"); !errors.Is(err, domain.ErrStudentNotFound) {
		t.Fatalf("expected student not found, got %v", err)
	}
	if _, err := svc.Link(context.Background(), "ghost", "S-1"); !errors.Is(err, domain.ErrTeacherNotFound) {
		t.Fatalf("expected teacher not found, got %v", err)
	}
}

func TestLinkTwiceKeepsOneEntry(t *testing.T) {
	ctx := context.Background()
	svc, store := newRoster(t)
	for i := 0; i < 2; i++ {
		st, err := svc.Link(ctx, "t1", " S-1 ")
		if err != nil {
			t.Fatalf("link: %v", err)
		}
		if st.UID != "a" {
			t.Fatalf("expected Ana, got %+v", st)
		}
	}
	doc, err := store.Get(ctx, app.CollectionTeachers, "t1")
	if err != nil {
		t.Fatalf("get teacher: %v", err)
	}
	if roster := app.TeacherFromDocument(doc).Roster; len(roster) != 1 || roster[0] != "S-1" {
		t.Fatalf("expected a single roster entry, got %v", roster)
	}
}

func TestRosterSearchAndReport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRoster(t)
	for _, id := range []string{"S-2", "S-1"} {
		if _, err := svc.Link(ctx, "t1", id); err != nil {
			t.Fatalf("link %s: %v", id, err)
		}
	}

	all, err := svc.Students(ctx, "t1", "")
	if err != nil {
		t.Fatalf("students: %v", err)
	}
	if len(all) != 2 || all[0].UID != "b" {
		t.Fatalf("expected roster order, got %+v", all)
	}
	found, err := svc.Students(ctx, "t1", "LOPEZ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].UID != "a" {
		t.Fatalf("expected case-insensitive match, got %+v", found)
	}

	report, err := svc.Report(ctx, "t1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Teacher.Name != "Grace" || len(report.Rows) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	ana := report.Rows[1]
	if ana.Latest[domain.SubjectDSA] != 80 || ana.ClassRank != 1 || ana.GPA != 3.2 {
		t.Fatalf("unexpected report row %+v", ana)
	}
	if ben := report.Rows[0]; ben.ClassRank != 0 || len(ben.Latest) != 0 {
		t.Fatalf("expected unranked row for Ben, got %+v", ben)
	}
}
