package app_test

import (
	"context"
	"testing"
	"time"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

// scoreDoc builds a stored score history, oldest first.
func scoreDoc(scores ...int) []any {
	out := make([]any, 0, len(scores))
	base := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	for i, s := range scores {
		out = append(out, map[string]any{
			"score": s,
			"date":  base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339Nano),
		})
	}
	return out
}

func putStudent(t *testing.T, store app.DocumentStore, uid, name, studentID string, fields map[string]any) {
	t.Helper()
	data := map[string]any{"name": name, "email": uid + "@example.com", "studentId": studentID}
	for k, v := range fields {
		data[k] = v
	}
	if err := store.Set(context.Background(), app.CollectionStudents, uid, data); err != nil {
		t.Fatalf("seed student %s: %v", uid, err)
	}
}

func student(uid string, scores map[domain.Subject][]int) domain.Student {
	s := domain.Student{UID: uid, Name: uid, StudentID: "S-" + uid, Scores: map[domain.Subject][]domain.ScoreEntry{}}
	for subject, list := range scores {
		for _, score := range list {
			s.Scores[subject] = append(s.Scores[subject], domain.ScoreEntry{Score: score})
		}
	}
	return s
}

// fiveQuestionExam mirrors the DSA multiple-choice section: answers [1,1,2,0,1].
func fiveQuestionExam(limit time.Duration) domain.ExamDefinition {
	q := func(id string, correct int) domain.Question {
		return domain.Question{ID: id, Prompt: id, Options: []string{"a", "b", "c", "d"}, Correct: correct}
	}
	return domain.ExamDefinition{
		ID:        "five",
		Subject:   domain.SubjectDSA,
		Title:     "Five",
		TimeLimit: limit,
		Sections: []domain.Section{
			{Name: "first", Questions: []domain.Question{q("q1", 1), q("q2", 1), q("q3", 2)}},
			{Name: "second", Questions: []domain.Question{q("q4", 0), q("q5", 1)}},
			{Name: "coding", Questions: []domain.Question{{ID: "code", Prompt: "reverse a list", Template: "func reverse() {}"}}},
		},
	}
}
