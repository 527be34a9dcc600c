package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"student-analyzer/internal/app"
	"student-analyzer/internal/domain"
)

// StudentSignup is the student registration form.
type StudentSignup struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	StudentID string `json:"studentId"`
	Class     string `json:"class"`
}

// TeacherSignup is the teacher registration form. Code must match TeacherCode(Name).
type TeacherSignup struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"teacherId"`
	Subject  string `json:"subject"`
}

// Registrar creates accounts together with their profile documents.
type Registrar struct {
	provider Provider
	store    app.DocumentStore
	now      func() time.Time
}

func NewRegistrar(provider Provider, store app.DocumentStore) *Registrar {
	return &Registrar{provider: provider, store: store, now: time.Now}
}

// Student creates a student account and an empty student document.
func (r *Registrar) Student(ctx context.Context, in StudentSignup) (User, error) {
	in.Name, in.StudentID = strings.TrimSpace(in.Name), strings.TrimSpace(in.StudentID)
	if in.Name == "" {
		return User{}, domain.Invalid("name", in.Name, "name is required")
	}
	if in.StudentID == "" {
		return User{}, domain.Invalid("studentId", in.StudentID, "student id is required")
	}
	existing, err := r.store.Query(ctx, app.CollectionStudents, app.Where("studentId", in.StudentID))
	if err != nil {
		return User{}, fmt.Errorf("lookup student id: %w", err)
	}
	if len(existing) > 0 {
		return User{}, domain.Invalid("studentId", in.StudentID, "student id already registered")
	}

	user, err := r.provider.CreateAccount(ctx, in.Email, in.Password, RoleStudent)
	if err != nil {
		return User{}, err
	}
	err = r.store.Set(ctx, app.CollectionStudents, user.UID, map[string]any{
		"name":      in.Name,
		"email":     user.Email,
		"studentId": in.StudentID,
		"class":     strings.TrimSpace(in.Class),
		"role":      "students",
		"createdAt": r.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return User{}, fmt.Errorf("create student: %w", err)
	}
	return user, nil
}

// Teacher validates the verification code, then creates the account and a
// teacher document with an empty roster.
func (r *Registrar) Teacher(ctx context.Context, in TeacherSignup) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return User{}, domain.Invalid("name", in.Name, "name is required")
	}
	if strings.TrimSpace(in.Code) != TeacherCode(in.Name) {
		return User{}, domain.Invalid("teacherId", in.Code, "invalid teacher id, please contact admin")
	}

	user, err := r.provider.CreateAccount(ctx, in.Email, in.Password, RoleTeacher)
	if err != nil {
		return User{}, err
	}
	err = r.store.Set(ctx, app.CollectionTeachers, user.UID, map[string]any{
		"name":      in.Name,
		"email":     user.Email,
		"teacherId": strings.TrimSpace(in.Code),
		"subject":   strings.TrimSpace(in.Subject),
		"role":      "teachers",
		"sids":      []any{},
		"createdAt": r.now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return User{}, fmt.Errorf("create teacher: %w", err)
	}
	return user, nil
}
