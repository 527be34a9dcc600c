package app

import (
	"encoding/json"
	"math"
	"time"

	"student-analyzer/internal/domain"
)

// StudentFromDocument normalizes a schemaless student document. It reports
// false for records that cannot identify a student. Malformed score entries
// are dropped so the latest valid entry becomes the latest score.
func StudentFromDocument(doc Document) (domain.Student, bool) {
	if doc.ID == "" || doc.Data == nil {
		return domain.Student{}, false
	}
	d := doc.Data
	s := domain.Student{
		UID:         doc.ID,
		Name:        str(d, "name"),
		Email:       str(d, "email"),
		StudentID:   str(d, "studentId"),
		Class:       str(d, "class"),
		DateOfBirth: str(d, "dateOfBirth"),
		Address:     str(d, "address"),
		Phone:       str(d, "phone"),
		ParentName:  str(d, "parentName"),
		ParentEmail: str(d, "parentEmail"),
		ParentPhone: str(d, "parentPhone"),
		Subjects:    strSlice(d, "subjects"),
		Bio:         str(d, "bio"),
		Scores:      make(map[domain.Subject][]domain.ScoreEntry),
	}
	if gpa, ok := num(d["gpa"]); ok && gpa > 0 && gpa <= 4 {
		s.GPA = gpa
	}
	if att, ok := num(d["attendance"]); ok && att > 0 {
		s.Attendance = int(math.Round(att))
	}
	for _, subject := range domain.AllSubjects {
		if entries := scoreEntries(d[subject.ScoreField()]); len(entries) > 0 {
			s.Scores[subject] = entries
		}
	}
	return s, true
}

// StudentsFromDocuments normalizes a collection, skipping unusable records.
func StudentsFromDocuments(docs []Document) []domain.Student {
	out := make([]domain.Student, 0, len(docs))
	for _, doc := range docs {
		if s, ok := StudentFromDocument(doc); ok {
			out = append(out, s)
		}
	}
	return out
}

// TeacherFromDocument normalizes a teacher document.
func TeacherFromDocument(doc Document) domain.Teacher {
	return domain.Teacher{
		UID:         doc.ID,
		Name:        str(doc.Data, "name"),
		Email:       str(doc.Data, "email"),
		TeacherCode: str(doc.Data, "teacherId"),
		Roster:      strSlice(doc.Data, "sids"),
		CreatedAt:   timeOf(doc.Data["createdAt"]),
	}
}

// RequestFromDocument normalizes a friend request document.
func RequestFromDocument(doc Document) domain.FriendRequest {
	return domain.FriendRequest{
		ID:        doc.ID,
		FromID:    str(doc.Data, "fromId"),
		FromName:  str(doc.Data, "fromName"),
		ToID:      str(doc.Data, "toId"),
		ToName:    str(doc.Data, "toName"),
		Status:    str(doc.Data, "status"),
		CreatedAt: timeOf(doc.Data["timestamp"]),
	}
}

// FriendFromDocument normalizes a friend subcollection document.
func FriendFromDocument(doc Document) domain.Friend {
	name := str(doc.Data, "name")
	if name == "" {
		name = "Unknown"
	}
	return domain.Friend{UID: doc.ID, Name: name, Since: timeOf(doc.Data["since"])}
}

// ProjectFromDocument normalizes a project document.
func ProjectFromDocument(doc Document) domain.Project {
	return domain.Project{
		ID:           doc.ID,
		StudentUID:   str(doc.Data, "studentId"),
		StudentName:  str(doc.Data, "studentName"),
		Name:         str(doc.Data, "name"),
		Description:  str(doc.Data, "description"),
		GithubURL:    str(doc.Data, "githubUrl"),
		Technologies: str(doc.Data, "technologies"),
		CreatedAt:    timeOf(doc.Data["createdAt"]),
	}
}

// ScoreEntryDocument is the stored form of a score entry.
func ScoreEntryDocument(entry domain.ScoreEntry) map[string]any {
	doc := map[string]any{
		"score": entry.Score,
		"date":  entry.Date.UTC().Format(time.RFC3339Nano),
	}
	if entry.Tool != "" {
		doc["tool"] = entry.Tool
	}
	return doc
}

func scoreEntries(raw any) []domain.ScoreEntry {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.ScoreEntry, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		score, ok := num(m["score"])
		if !ok || score != math.Trunc(score) || score < 0 || score > 100 {
			continue
		}
		out = append(out, domain.ScoreEntry{
			Score: int(score),
			Date:  timeOf(m["date"]),
			Tool:  str(m, "tool"),
		})
	}
	return out
}

func str(d map[string]any, key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

func strSlice(d map[string]any, key string) []string {
	switch v := d[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func num(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func timeOf(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
