package app_test

import (
	"testing"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

func TestStudentFromDocumentDropsMalformedScores(t *testing.T) {
	doc := app.Document{ID: "u1", Data: map[string]any{
		"name":      "Ana",
		"studentId": "S-1",
		"gpa":       7.5,
		"dsaScores": []any{
			map[string]any{"score": 55.0, "date": "2024-11-01T09:00:00Z"},
			map[string]any{"score": 72.0},
			map[string]any{"score": "90"},
			map[string]any{"score": 101.0},
			map[string]any{"score": 33.5},
			"junk",
		},
		"daaScores": "not a list",
	}}

	st, ok := app.StudentFromDocument(doc)
	if !ok {
		t.Fatalf("expected student")
	}
	if got := len(st.Scores[domain.SubjectDSA]); got != 2 {
		t.Fatalf("expected 2 valid entries, got %d", got)
	}
	if latest, _ := st.LatestScore(domain.SubjectDSA); latest != 72 {
		t.Fatalf("expected latest 72, got %d", latest)
	}
	if _, ok := st.LatestScore(domain.SubjectDAA); ok {
		t.Fatalf("malformed history must read as empty")
	}
	if st.GPA != 0 {
		t.Fatalf("out of range GPA must be ignored, got %v", st.GPA)
	}
}

func TestStudentFromDocumentRejectsEmpty(t *testing.T) {
	if _, ok := app.StudentFromDocument(app.Document{ID: "u1"}); ok {
		t.Fatalf("expected nil data to be rejected")
	}
	if got := app.StudentsFromDocuments([]app.Document{{ID: ""}, {ID: "u2", Data: map[string]any{}}}); len(got) != 1 {
		t.Fatalf("expected one student, got %+v", got)
	}
}

func TestFriendFromDocumentDefaultsName(t *testing.T) {
	f := app.FriendFromDocument(app.Document{ID: "u2", Data: map[string]any{}})
	if f.Name != "Unknown" || f.UID != "u2" {
		t.Fatalf("unexpected friend %+v", f)
	}
}
