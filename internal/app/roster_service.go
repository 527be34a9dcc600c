package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"student-analyzer/internal/domain"
	"student-analyzer/internal/logger"
)

var studentIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,32}$`)

// RosterService manages the students linked to a teacher.
type RosterService struct {
	store DocumentStore
	now   func() time.Time
	log   zerolog.Logger
}

func NewRosterService(store DocumentStore) *RosterService {
	return &RosterService{
		store: store,
		now:   time.Now,
		log:   logger.Get().With().Str("component", "roster").Logger(),
	}
}

// Link adds the student carrying studentID to the teacher's roster. Linking
// the same student twice leaves a single roster entry.
func (s *RosterService) Link(ctx context.Context, teacherUID, studentID string) (domain.Student, error) {
	id := strings.TrimSpace(studentID)
	if id == "" {
		return domain.Student{}, domain.Invalid("studentId", studentID, "student id is required")
	}
	if !studentIDPattern.MatchString(id) {
		return domain.Student{}, domain.Invalid("studentId", studentID, "student id may only contain letters, digits and dashes")
	}

	docs, err := s.store.Query(ctx, CollectionStudents, Where("studentId", id))
	if err != nil {
		return domain.Student{}, fmt.Errorf("find student %s: %w", id, err)
	}
	students := StudentsFromDocuments(docs)
	if len(students) == 0 {
		return domain.Student{}, domain.ErrStudentNotFound
	}

	err = s.store.ArrayUnion(ctx, CollectionTeachers, teacherUID, "sids", id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Student{}, domain.ErrTeacherNotFound
	}
	if err != nil {
		s.log.Error().Err(err).Str("teacher", teacherUID).Msg("link student")
		return domain.Student{}, fmt.Errorf("link student %s: %w", id, err)
	}
	s.log.Info().Str("teacher", teacherUID).Str("studentId", id).Msg("student linked")
	return students[0], nil
}

// Students returns the roster, optionally filtered case-insensitively on
// name, student id or email.
func (s *RosterService) Students(ctx context.Context, teacherUID, search string) ([]domain.Student, error) {
	_, roster, err := s.load(ctx, teacherUID)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return roster, nil
	}
	out := make([]domain.Student, 0, len(roster))
	for _, st := range roster {
		if strings.Contains(strings.ToLower(st.Name), term) ||
			strings.Contains(strings.ToLower(st.StudentID), term) ||
			strings.Contains(strings.ToLower(st.Email), term) {
			out = append(out, st)
		}
	}
	return out, nil
}

// Report assembles the class report: latest scores and class rank of every
// roster student.
func (s *RosterService) Report(ctx context.Context, teacherUID string) (domain.RosterReport, error) {
	teacher, roster, err := s.load(ctx, teacherUID)
	if err != nil {
		return domain.RosterReport{}, err
	}

	ranks := make(map[string]domain.ClassLeaderboardRow, len(roster))
	for _, row := range RankClass(roster, domain.RankedSubjects) {
		ranks[row.UID] = row
	}

	report := domain.RosterReport{
		Teacher:     teacher,
		Rows:        make([]domain.RosterReportRow, 0, len(roster)),
		GeneratedAt: s.now(),
	}
	for _, st := range roster {
		latest := make(map[domain.Subject]int, len(domain.AllSubjects))
		for _, subject := range domain.AllSubjects {
			if score, ok := st.LatestScore(subject); ok {
				latest[subject] = score
			}
		}
		row := domain.RosterReportRow{Student: st, Latest: latest}
		if ranked, ok := ranks[st.UID]; ok {
			row.Overall, row.GPA, row.ClassRank = ranked.Overall, ranked.GPA, ranked.Rank
		}
		report.Rows = append(report.Rows, row)
	}
	return report, nil
}

// load fetches the teacher and the student collection concurrently and
// returns the roster students in roster order.
func (s *RosterService) load(ctx context.Context, teacherUID string) (domain.Teacher, []domain.Student, error) {
	var (
		teacherDoc Document
		studentDoc []Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := s.store.Get(gctx, CollectionTeachers, teacherUID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTeacherNotFound
		}
		teacherDoc = doc
		return err
	})
	g.Go(func() error {
		docs, err := s.store.List(gctx, CollectionStudents)
		studentDoc = docs
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrTeacherNotFound) {
			return domain.Teacher{}, nil, err
		}
		s.log.Error().Err(err).Str("teacher", teacherUID).Msg("load roster")
		return domain.Teacher{}, nil, fmt.Errorf("load roster: %w", err)
	}

	teacher := TeacherFromDocument(teacherDoc)
	byID := make(map[string]domain.Student)
	for _, st := range StudentsFromDocuments(studentDoc) {
		if st.StudentID != "" {
			byID[st.StudentID] = st
		}
	}
	roster := make([]domain.Student, 0, len(teacher.Roster))
	for _, id := range teacher.Roster {
		if st, ok := byID[id]; ok {
			roster = append(roster, st)
		}
	}
	return teacher, roster, nil
}
