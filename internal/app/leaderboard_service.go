package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"student-analyzer/internal/domain"
	"student-analyzer/internal/logger"
)

const (
	emptyBoardMessage = "No scores yet. Take an exam to appear on the leaderboard."
	loadTimeout       = 30 * time.Second
)

// LeaderboardService computes leaderboards from a fresh load of the student
// collection on every call.
type LeaderboardService struct {
	store DocumentStore
	group singleflight.Group
	now   func() time.Time
	log   zerolog.Logger
}

func NewLeaderboardService(store DocumentStore) *LeaderboardService {
	return &LeaderboardService{
		store: store,
		now:   time.Now,
		log:   logger.Get().With().Str("component", "leaderboard").Logger(),
	}
}

// Subject ranks students by their latest score in subject.
func (s *LeaderboardService) Subject(ctx context.Context, subject domain.Subject) (domain.Leaderboard, error) {
	if !subject.Valid() {
		return domain.Leaderboard{}, domain.Invalid("subject", subject, "unknown subject")
	}
	students, err := s.students(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return s.board(string(subject), RankSubject(students, subject)), nil
}

// Overall ranks students by the mean of their ranked-subject scores.
func (s *LeaderboardService) Overall(ctx context.Context) (domain.Leaderboard, error) {
	students, err := s.students(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return s.board("overall", RankOverall(students, domain.RankedSubjects)), nil
}

// Class ranks every student by GPA, progress and overall score.
func (s *LeaderboardService) Class(ctx context.Context) (domain.ClassLeaderboard, error) {
	students, err := s.students(ctx)
	if err != nil {
		return domain.ClassLeaderboard{}, err
	}
	lb := domain.ClassLeaderboard{Rows: RankClass(students, domain.RankedSubjects), UpdatedAt: s.now()}
	if len(lb.Rows) == 0 {
		lb.Message = "No student data available yet."
	}
	return lb, nil
}

// Standings returns uid's rank and score on every ranked board.
func (s *LeaderboardService) Standings(ctx context.Context, uid string) (domain.Standings, error) {
	students, err := s.students(ctx)
	if err != nil {
		return domain.Standings{}, err
	}
	out := domain.Standings{
		UID:      uid,
		Subjects: make(map[domain.Subject]domain.Standing, len(domain.RankedSubjects)),
		Overall:  StandingOf(RankOverall(students, domain.RankedSubjects), uid),
	}
	for _, subject := range domain.RankedSubjects {
		out.Subjects[subject] = StandingOf(RankSubject(students, subject), uid)
	}
	return out, nil
}

func (s *LeaderboardService) board(name string, rows []domain.LeaderboardRow) domain.Leaderboard {
	lb := domain.Leaderboard{Board: name, Rows: rows, Average: BoardAverage(rows), UpdatedAt: s.now()}
	if len(rows) == 0 {
		lb.Message = emptyBoardMessage
	}
	return lb
}

// students loads and normalizes the collection. Concurrent callers share one
// in-flight load; nothing is kept once it returns. The load is detached from
// the caller that started it, so one client going away does not fail the
// others waiting on the same flight.
func (s *LeaderboardService) students(ctx context.Context) ([]domain.Student, error) {
	ch := s.group.DoChan(CollectionStudents, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		docs, err := s.store.List(loadCtx, CollectionStudents)
		if err != nil {
			return nil, err
		}
		return StudentsFromDocuments(docs), nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load students: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			s.log.Error().Err(res.Err).Msg("load students")
			return nil, fmt.Errorf("load students: %w", res.Err)
		}
		s.log.Debug().Bool("shared", res.Shared).Msg("students loaded")
		return res.Val.([]domain.Student), nil
	}
}
