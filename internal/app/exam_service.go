package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"student-analyzer/internal/domain"
	"student-analyzer/internal/logger"
)

// ExamService runs exam attempts and records their scores.
type ExamService struct {
	bank     *ExamBank
	attempts AttemptRepository
	scores   DocumentStore
	updates  *Hub[domain.AttemptSnapshot]
	tick     time.Duration
	now      func() time.Time
	newID    func() string
	log      zerolog.Logger

	ctx    context.Context
	stop   context.CancelFunc
	timers sync.WaitGroup
}

// ExamOption customizes an ExamService.
type ExamOption func(*ExamService)

// WithTick sets the countdown interval. One tick always consumes one second
// of the time limit, so tests can run exams faster than wall-clock time.
func WithTick(d time.Duration) ExamOption {
	return func(s *ExamService) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) ExamOption {
	return func(s *ExamService) { s.now = now }
}

// WithIDs replaces the attempt id generator.
func WithIDs(next func() string) ExamOption {
	return func(s *ExamService) { s.newID = next }
}

func NewExamService(bank *ExamBank, attempts AttemptRepository, scores DocumentStore, opts ...ExamOption) *ExamService {
	ctx, stop := context.WithCancel(context.Background())
	s := &ExamService{
		bank:     bank,
		attempts: attempts,
		scores:   scores,
		updates:  NewHub[domain.AttemptSnapshot](8),
		tick:     time.Second,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      logger.Get().With().Str("component", "exam").Logger(),
		ctx:      ctx,
		stop:     stop,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog lists the available exams.
func (s *ExamService) Catalog() []domain.ExamSummary {
	return s.bank.List()
}

// Exam returns an exam definition without its answer keys.
func (s *ExamService) Exam(examID string) (domain.ExamDefinition, error) {
	def, err := s.bank.Get(examID)
	if err != nil {
		return domain.ExamDefinition{}, err
	}
	return def.Public(), nil
}

// Begin creates an attempt in the instructions phase.
func (s *ExamService) Begin(ctx context.Context, uid, examID string) (domain.AttemptSnapshot, error) {
	def, err := s.bank.Get(examID)
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}

	attempt := NewAttemptWithClock(s.newID(), uid, def, s.now)
	attempt.OnChange(func(snap domain.AttemptSnapshot) { s.changed(attempt, snap) })
	attempt.OnSubmit(func(result domain.ExamResult) {
		attempt.MarkSaved(s.appendScore(s.ctx, uid, result))
	})
	attempt.OnExpire(func() { s.expire(attempt) })
	s.attempts.Add(attempt)

	snap := attempt.Snapshot()
	if err := s.attempts.Record(ctx, snap); err != nil {
		s.log.Warn().Err(err).Str("attempt", snap.ID).Msg("record attempt")
	}
	s.log.Info().Str("attempt", snap.ID).Str("exam", examID).Str("uid", uid).Msg("attempt created")
	return snap, nil
}

// Start leaves the instructions and starts the countdown.
func (s *ExamService) Start(_ context.Context, uid, attemptID string) (domain.AttemptSnapshot, error) {
	attempt, err := s.live(uid, attemptID)
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	snap, err := attempt.Start()
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}

	s.timers.Add(1)
	go func() {
		defer s.timers.Done()
		attempt.RunTimer(s.ctx, s.tick)
	}()
	return snap, nil
}

// Select records an option for a multiple-choice question.
func (s *ExamService) Select(_ context.Context, uid, attemptID, questionID string, option int) (domain.AttemptSnapshot, error) {
	attempt, err := s.live(uid, attemptID)
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	return attempt.Select(questionID, option)
}

// Draft records free text for a coding problem.
func (s *ExamService) Draft(_ context.Context, uid, attemptID, questionID, text string) (domain.AttemptSnapshot, error) {
	attempt, err := s.live(uid, attemptID)
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	return attempt.Draft(questionID, text)
}

func (s *ExamService) Next(_ context.Context, uid, attemptID string) (domain.AttemptSnapshot, error) {
	attempt, err := s.live(uid, attemptID)
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	return attempt.Next()
}

// Prev moves back; from the first question it abandons the attempt.
func (s *ExamService) Prev(_ context.Context, uid, attemptID string) (domain.AttemptSnapshot, error) {
	attempt, err := s.live(uid, attemptID)
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	return attempt.Prev()
}

// Submit grades the attempt and appends the score to the student's history.
// A failed append leaves the result on the attempt for Save to retry.
func (s *ExamService) Submit(ctx context.Context, uid, attemptID string) (domain.AttemptSnapshot, error) {
	attempt, err := s.live(uid, attemptID)
	if errors.Is(err, domain.ErrAttemptNotFound) {
		snap, err := s.Get(ctx, uid, attemptID)
		if err != nil {
			return domain.AttemptSnapshot{}, err
		}
		if snap.Result == nil {
			return domain.AttemptSnapshot{}, domain.ErrAttemptFinished
		}
		return snap, nil
	}
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	if _, err := attempt.Submit(); err != nil {
		return domain.AttemptSnapshot{}, err
	}
	return attempt.Snapshot(), nil
}

// Get returns the attempt state, falling back to the recorded snapshot once
// the attempt is no longer live.
func (s *ExamService) Get(ctx context.Context, uid, attemptID string) (domain.AttemptSnapshot, error) {
	if attempt, ok := s.attempts.Get(attemptID); ok {
		if attempt.UserID() != uid {
			return domain.AttemptSnapshot{}, domain.ErrForbidden
		}
		return attempt.Snapshot(), nil
	}
	snap, err := s.attempts.Snapshot(ctx, attemptID)
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	if snap.UserID != uid {
		return domain.AttemptSnapshot{}, domain.ErrForbidden
	}
	return snap, nil
}

// Save retries persisting a submitted result. Saving an already saved attempt
// returns its state unchanged.
func (s *ExamService) Save(ctx context.Context, uid, attemptID string) (domain.AttemptSnapshot, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return s.saveRecorded(ctx, uid, attemptID)
	}
	if attempt.UserID() != uid {
		return domain.AttemptSnapshot{}, domain.ErrForbidden
	}
	result, ok := attempt.Result()
	if !ok {
		return domain.AttemptSnapshot{}, domain.ErrAttemptNotSubmitted
	}
	if attempt.Saved() {
		return attempt.Snapshot(), nil
	}
	err := s.appendScore(ctx, uid, result)
	return attempt.MarkSaved(err), err
}

// saveRecorded saves a result whose attempt only survives as a snapshot.
func (s *ExamService) saveRecorded(ctx context.Context, uid, attemptID string) (domain.AttemptSnapshot, error) {
	snap, err := s.attempts.Snapshot(ctx, attemptID)
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	if snap.UserID != uid {
		return domain.AttemptSnapshot{}, domain.ErrForbidden
	}
	if snap.Result == nil {
		return domain.AttemptSnapshot{}, domain.ErrAttemptNotSubmitted
	}
	if snap.Saved {
		return snap, nil
	}

	err = s.appendScore(ctx, uid, *snap.Result)
	if err != nil {
		snap.SaveError = err.Error()
	} else {
		snap.Saved, snap.SaveError = true, ""
	}
	snap.UpdatedAt = s.now()
	if recErr := s.attempts.Record(ctx, snap); recErr != nil {
		s.log.Warn().Err(recErr).Str("attempt", attemptID).Msg("record attempt")
	}
	return snap, err
}

// Subscribe returns the current state and a channel of later changes. The
// channel closes when the attempt is retired. The caller must invoke cancel.
func (s *ExamService) Subscribe(_ context.Context, uid, attemptID string) (domain.AttemptSnapshot, <-chan domain.AttemptSnapshot, func(), error) {
	attempt, err := s.live(uid, attemptID)
	if err != nil {
		return domain.AttemptSnapshot{}, nil, nil, err
	}
	ch, cancel := s.updates.Subscribe(attemptID)
	return attempt.Snapshot(), ch, cancel, nil
}

// Shutdown stops every running countdown.
func (s *ExamService) Shutdown() {
	s.stop()
	s.timers.Wait()
}

func (s *ExamService) live(uid, attemptID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	if attempt.UserID() != uid {
		return nil, domain.ErrForbidden
	}
	return attempt, nil
}

// changed publishes and records every state change, then retires attempts
// that need nothing more: abandoned ones and saved submissions.
func (s *ExamService) changed(attempt *Attempt, snap domain.AttemptSnapshot) {
	s.updates.Publish(snap.ID, snap)
	if err := s.attempts.Record(s.ctx, snap); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Str("attempt", snap.ID).Msg("record attempt")
	}
	if snap.Phase == domain.PhaseAbandoned || (snap.Phase == domain.PhaseSubmitted && snap.Saved) {
		s.attempts.Remove(attempt.ID())
		s.updates.Close(attempt.ID())
	}
}

// expire retires an attempt its store dropped for inactivity. One still in
// the instructions is abandoned. An unsaved submission keeps a fresh snapshot
// so Save can retry it from there.
func (s *ExamService) expire(attempt *Attempt) {
	snap := attempt.Abandon()
	if snap.Phase != domain.PhaseAbandoned {
		if err := s.attempts.Record(s.ctx, snap); err != nil {
			s.log.Warn().Err(err).Str("attempt", snap.ID).Msg("record attempt")
		}
		s.attempts.Remove(snap.ID)
		s.updates.Close(snap.ID)
	}
	s.log.Info().Str("attempt", snap.ID).Str("phase", string(snap.Phase)).Msg("idle attempt expired")
}

// appendScore unions the entry into <subject>Scores. The entry carries the
// submission time, so a repeated append of the same result is a no-op.
func (s *ExamService) appendScore(ctx context.Context, uid string, result domain.ExamResult) error {
	entry := ScoreEntryDocument(domain.ScoreEntry{
		Score: result.Score,
		Date:  result.SubmittedAt,
		Tool:  result.Tool,
	})
	field := result.Subject.ScoreField()
	if err := s.scores.ArrayUnion(ctx, CollectionStudents, uid, field, entry); err != nil {
		s.log.Error().Err(err).Str("uid", uid).Str("field", field).Msg("append score")
		return fmt.Errorf("append %s: %w", field, err)
	}
	s.log.Info().Str("uid", uid).Str("field", field).Int("score", result.Score).Msg("score recorded")
	return nil
}
