package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"student-analyzer/internal/domain"
	"student-analyzer/internal/logger"
)

var githubURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?github\.com/[a-zA-Z0-9_-]+/[a-zA-Z0-9_.-]+/?$`)

// ProfileService serves a student's own record and portfolio.
type ProfileService struct {
	store DocumentStore
	now   func() time.Time
	log   zerolog.Logger
}

func NewProfileService(store DocumentStore) *ProfileService {
	return &ProfileService{
		store: store,
		now:   time.Now,
		log:   logger.Get().With().Str("component", "profile").Logger(),
	}
}

// Profile returns the student with the latest score per subject.
func (s *ProfileService) Profile(ctx context.Context, uid string) (domain.Profile, error) {
	doc, err := s.store.Get(ctx, CollectionStudents, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	student, ok := StudentFromDocument(doc)
	if !ok {
		return domain.Profile{}, domain.ErrStudentNotFound
	}

	latest := make(map[domain.Subject]int, len(domain.AllSubjects))
	for _, subject := range domain.AllSubjects {
		if score, ok := student.LatestScore(subject); ok {
			latest[subject] = score
		}
	}
	return domain.Profile{
		Student:  student,
		Latest:   latest,
		Complete: student.Name != "" && student.Email != "" && student.StudentID != "",
	}, nil
}

// UpdateProfile writes the provided editable fields and returns the new profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid string, upd domain.ProfileUpdate) (domain.Profile, error) {
	fields := make(map[string]any)
	set := func(key string, v *string) {
		if v != nil {
			fields[key] = strings.TrimSpace(*v)
		}
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return domain.Profile{}, domain.Invalid("name", *upd.Name, "name cannot be empty")
	}
	set("name", upd.Name)
	set("class", upd.Class)
	set("dateOfBirth", upd.DateOfBirth)
	set("address", upd.Address)
	set("phone", upd.Phone)
	set("parentName", upd.ParentName)
	set("parentEmail", upd.ParentEmail)
	set("parentPhone", upd.ParentPhone)
	set("bio", upd.Bio)
	if upd.Subjects != nil {
		subjects := make([]any, 0, len(*upd.Subjects))
		for _, subject := range *upd.Subjects {
			if subject = strings.TrimSpace(subject); subject != "" {
				subjects = append(subjects, subject)
			}
		}
		fields["subjects"] = subjects
	}
	if len(fields) == 0 {
		return s.Profile(ctx, uid)
	}

	err := s.store.Update(ctx, CollectionStudents, uid, fields)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{}, domain.ErrStudentNotFound
	}
	if err != nil {
		s.log.Error().Err(err).Str("uid", uid).Msg("update profile")
		return domain.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return s.Profile(ctx, uid)
}

// Projects lists the student's projects, newest first.
func (s *ProfileService) Projects(ctx context.Context, uid string) ([]domain.Project, error) {
	docs, err := s.store.Query(ctx, CollectionProjects, Where("studentId", uid))
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]domain.Project, 0, len(docs))
	for _, doc := range docs {
		out = append(out, ProjectFromDocument(doc))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CreateProject adds a project owned by uid.
func (s *ProfileService) CreateProject(ctx context.Context, uid string, in domain.ProjectInput) (domain.Project, error) {
	in, err := validProject(in)
	if err != nil {
		return domain.Project{}, err
	}
	profile, err := s.Profile(ctx, uid)
	if err != nil {
		return domain.Project{}, err
	}

	project := domain.Project{
		StudentUID:   uid,
		StudentName:  profile.Student.Name,
		Name:         in.Name,
		Description:  in.Description,
		GithubURL:    in.GithubURL,
		Technologies: in.Technologies,
		CreatedAt:    s.now().UTC(),
	}
	id, err := s.store.Add(ctx, CollectionProjects, map[string]any{
		"studentId":    project.StudentUID,
		"studentName":  project.StudentName,
		"name":         project.Name,
		"description":  project.Description,
		"githubUrl":    project.GithubURL,
		"technologies": project.Technologies,
		"createdAt":    project.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		s.log.Error().Err(err).Str("uid", uid).Msg("create project")
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	project.ID = id
	return project, nil
}

// UpdateProject edits a project; only its owner may do so.
func (s *ProfileService) UpdateProject(ctx context.Context, uid, projectID string, in domain.ProjectInput) (domain.Project, error) {
	in, err := validProject(in)
	if err != nil {
		return domain.Project{}, err
	}
	project, err := s.ownedProject(ctx, uid, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	err = s.store.Update(ctx, CollectionProjects, projectID, map[string]any{
		"name":         in.Name,
		"description":  in.Description,
		"githubUrl":    in.GithubURL,
		"technologies": in.Technologies,
	})
	if err != nil {
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}
	project.Name, project.Description = in.Name, in.Description
	project.GithubURL, project.Technologies = in.GithubURL, in.Technologies
	return project, nil
}

// DeleteProject removes a project; only its owner may do so.
func (s *ProfileService) DeleteProject(ctx context.Context, uid, projectID string) error {
	if _, err := s.ownedProject(ctx, uid, projectID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, CollectionProjects, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *ProfileService) ownedProject(ctx context.Context, uid, projectID string) (domain.Project, error) {
	doc, err := s.store.Get(ctx, CollectionProjects, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	project := ProjectFromDocument(doc)
	if project.StudentUID != uid {
		return domain.Project{}, domain.ErrForbidden
	}
	return project, nil
}

func validProject(in domain.ProjectInput) (domain.ProjectInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.GithubURL = strings.TrimSpace(in.GithubURL)
	in.Technologies = strings.TrimSpace(in.Technologies)
	if in.Name == "" {
		return in, domain.Invalid("name", in.Name, "project name is required")
	}
	if in.GithubURL == "" {
		return in, domain.Invalid("githubUrl", in.GithubURL, "GitHub URL is required")
	}
	if !githubURLPattern.MatchString(in.GithubURL) {
		return in, domain.Invalid("githubUrl", in.GithubURL, "not a GitHub repository URL")
	}
	return in, nil
}
