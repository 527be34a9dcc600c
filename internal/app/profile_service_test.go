package app_test

import (
	"context"
	"errors"
	"testing"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
	"student-analyzer/internal/infra/memory"
)

func TestProfileLatestScoresAndCompleteness(t *testing.T) {
	store := memory.NewDocumentStore()
	putStudent(t, store, "a", "Ana", "S-1", map[string]any{"uiScores": scoreDoc(40, 75)})
	svc := app.NewProfileService(store)

	p, err := svc.Profile(context.Background(), "a")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !p.Complete || p.Latest[domain.SubjectUI] != 75 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if _, ok := p.Latest[domain.SubjectDSA]; ok {
		t.Fatalf("subjects without scores must be absent")
	}
	if _, err := svc.Profile(context.Background(), "ghost"); !errors.Is(err, domain.ErrStudentNotFound) {
		t.Fatalf("expected student not found, got %v", err)
	}
}

func TestUpdateProfileWritesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocumentStore()
	putStudent(t, store, "a", "Ana", "S-1", map[string]any{"class": "CS-A", "dsaScores": scoreDoc(60)})
	svc := app.NewProfileService(store)

	bio, subjects := "  graphs  ", []string{"DSA", " ", "UI"}
	p, err := svc.UpdateProfile(ctx, "a", domain.ProfileUpdate{Bio: &bio, Subjects: &subjects})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Student.Bio != "graphs" || p.Student.Class != "CS-A" || len(p.Student.Subjects) != 2 {
		t.Fatalf("unexpected profile %+v", p.Student)
	}
	if p.Latest[domain.SubjectDSA] != 60 {
		t.Fatalf("scores must be untouched, got %+v", p.Latest)
	}

	blank := " "
	var verr domain.ValidationError
	if _, err := svc.UpdateProfile(ctx, "a", domain.ProfileUpdate{Name: &blank}); !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProjectsOwnership(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocumentStore()
	putStudent(t, store, "a", "Ana", "S-1", nil)
	putStudent(t, store, "b", "Ben", "S-2", nil)
	svc := app.NewProfileService(store)

	var verr domain.ValidationError
	if _, err := svc.CreateProject(ctx, "a", domain.ProjectInput{Name: "x", GithubURL: "https://example.com/x"}); !errors.As(err, &verr) {
		t.Fatalf("expected GitHub URL validation, got %v", err)
	}
	project, err := svc.CreateProject(ctx, "a", domain.ProjectInput{
		Name: " Visualizer ", GithubURL: "github.com/ana/visualizer", Technologies: "Go",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.Name != "Visualizer" || project.StudentName != "Ana" {
		t.Fatalf("unexpected project %+v", project)
	}

	in := domain.ProjectInput{Name: "Renamed", GithubURL: "https://github.com/ana/visualizer"}
	if _, err := svc.UpdateProject(ctx, "b", project.ID, in); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
	if _, err := svc.UpdateProject(ctx, "a", project.ID, in); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.DeleteProject(ctx, "b", project.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}

	list, err := svc.Projects(ctx, "a")
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Renamed" {
		t.Fatalf("unexpected projects %+v", list)
	}
	if err := svc.DeleteProject(ctx, "a", project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if list, _ := svc.Projects(ctx, "a"); len(list) != 0 {
		t.Fatalf("expected no projects, got %+v", list)
	}
}
