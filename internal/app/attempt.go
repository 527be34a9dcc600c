package app

import (
	"context"
	"math"
	"sync"
	"time"

	"student-analyzer/internal/domain"
)

// Attempt administers one sitting of an exam:
// instructions -> in_progress -> submitted (or abandoned).
type Attempt struct {
	id     string
	userID string
	exam   domain.ExamDefinition
	now    func() time.Time

	mu          sync.Mutex
	phase       domain.AttemptPhase
	section     int
	question    int
	choices     map[string]int
	drafts      map[string]string
	remaining   time.Duration
	result      *domain.ExamResult
	saved       bool
	saveErr     string
	updatedAt   time.Time
	onChange    []func(domain.AttemptSnapshot)
	onSubmit    []func(domain.ExamResult)
	onExpire    []func()
	cancelTimer context.CancelFunc
}

// NewAttempt creates an attempt in the instructions phase.
func NewAttempt(id, userID string, exam domain.ExamDefinition) *Attempt {
	return newAttemptWithClock(id, userID, exam, time.Now)
}

// NewAttemptWithClock creates an attempt that reads the time from now.
func NewAttemptWithClock(id, userID string, exam domain.ExamDefinition, now func() time.Time) *Attempt {
	return newAttemptWithClock(id, userID, exam, now)
}

func newAttemptWithClock(id, userID string, exam domain.ExamDefinition, now func() time.Time) *Attempt {
	return &Attempt{
		id:        id,
		userID:    userID,
		exam:      exam,
		now:       now,
		phase:     domain.PhaseInstructions,
		choices:   make(map[string]int),
		drafts:    make(map[string]string),
		remaining: exam.TimeLimit,
		updatedAt: now(),
	}
}

func (a *Attempt) ID() string { return a.id }

func (a *Attempt) UserID() string { return a.userID }

func (a *Attempt) Exam() domain.ExamDefinition { return a.exam }

// OnChange registers an observer called after every state change.
func (a *Attempt) OnChange(fn func(domain.AttemptSnapshot)) {
	a.mu.Lock()
	a.onChange = append(a.onChange, fn)
	a.mu.Unlock()
}

// OnSubmit registers an observer called exactly once with the attempt's result.
func (a *Attempt) OnSubmit(fn func(domain.ExamResult)) {
	a.mu.Lock()
	a.onSubmit = append(a.onSubmit, fn)
	a.mu.Unlock()
}

// OnExpire registers an observer called when the attempt is dropped for
// inactivity.
func (a *Attempt) OnExpire(fn func()) {
	a.mu.Lock()
	a.onExpire = append(a.onExpire, fn)
	a.mu.Unlock()
}

// Expirable reports whether the attempt may be dropped once idle. A running
// countdown never is; it ends on its own when time runs out.
func (a *Attempt) Expirable() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase != domain.PhaseInProgress
}

// Expire notifies the expiry observers.
func (a *Attempt) Expire() {
	a.mu.Lock()
	observers := a.onExpire
	a.mu.Unlock()
	for _, fn := range observers {
		fn()
	}
}

// Start leaves the instructions phase and starts the countdown.
func (a *Attempt) Start() (domain.AttemptSnapshot, error) {
	a.mu.Lock()
	switch {
	case a.phase.Terminal():
		a.mu.Unlock()
		return domain.AttemptSnapshot{}, domain.ErrAttemptFinished
	case a.phase == domain.PhaseInProgress:
		snap := a.snapshotLocked()
		a.mu.Unlock()
		return snap, nil
	}
	a.phase = domain.PhaseInProgress
	a.section, a.question = 0, 0
	snap := a.touchLocked()
	observers := a.onChange
	a.mu.Unlock()

	notify(observers, snap)
	return snap, nil
}

// Tick consumes one second of the time limit; at zero the attempt submits itself.
func (a *Attempt) Tick() domain.AttemptSnapshot {
	a.mu.Lock()
	if a.phase != domain.PhaseInProgress {
		snap := a.snapshotLocked()
		a.mu.Unlock()
		return snap
	}
	a.remaining -= time.Second
	if a.remaining > 0 {
		snap := a.touchLocked()
		observers := a.onChange
		a.mu.Unlock()
		notify(observers, snap)
		return snap
	}
	a.remaining = 0
	result, fire := a.submitLocked(true)
	snap := a.touchLocked()
	observers, submitters, stop := a.onChange, a.onSubmit, a.cancelTimer
	a.mu.Unlock()

	a.finish(stop, observers, submitters, snap, result, fire)
	return snap
}

// Select records the chosen option for a question, replacing any earlier choice.
func (a *Attempt) Select(questionID string, option int) (domain.AttemptSnapshot, error) {
	q, ok := a.exam.Question(questionID)
	if !ok {
		return domain.AttemptSnapshot{}, domain.ErrQuestionNotFound
	}
	if !q.Graded() {
		return domain.AttemptSnapshot{}, domain.Invalid("questionId", questionID, "coding problems take a draft, not an option")
	}
	if option < 0 || option >= len(q.Options) {
		return domain.AttemptSnapshot{}, domain.Invalid("option", option, "option out of range")
	}
	return a.mutate(func() { a.choices[questionID] = option })
}

// Draft stores free text for a coding problem.
func (a *Attempt) Draft(questionID, text string) (domain.AttemptSnapshot, error) {
	q, ok := a.exam.Question(questionID)
	if !ok {
		return domain.AttemptSnapshot{}, domain.ErrQuestionNotFound
	}
	if q.Graded() {
		return domain.AttemptSnapshot{}, domain.Invalid("questionId", questionID, "multiple-choice questions take an option")
	}
	return a.mutate(func() { a.drafts[questionID] = text })
}

// Next moves forward, crossing into the next section; a no-op on the last question.
func (a *Attempt) Next() (domain.AttemptSnapshot, error) {
	return a.mutate(func() {
		if a.question < len(a.exam.Sections[a.section].Questions)-1 {
			a.question++
			return
		}
		if a.section < len(a.exam.Sections)-1 {
			a.section++
			a.question = 0
		}
	})
}

// Prev moves backward. From the first question of the first section, or from
// the instructions, it abandons the attempt.
func (a *Attempt) Prev() (domain.AttemptSnapshot, error) {
	a.mu.Lock()
	if a.phase.Terminal() {
		a.mu.Unlock()
		return domain.AttemptSnapshot{}, domain.ErrAttemptFinished
	}
	if a.phase == domain.PhaseInstructions || (a.section == 0 && a.question == 0) {
		a.mu.Unlock()
		return a.Abandon(), nil
	}
	if a.question > 0 {
		a.question--
	} else {
		a.section--
		a.question = len(a.exam.Sections[a.section].Questions) - 1
	}
	snap := a.touchLocked()
	observers := a.onChange
	a.mu.Unlock()

	notify(observers, snap)
	return snap, nil
}

// Submit ends the attempt and returns its result. Repeated calls return the same result.
func (a *Attempt) Submit() (domain.ExamResult, error) {
	a.mu.Lock()
	switch a.phase {
	case domain.PhaseSubmitted:
		result := *a.result
		a.mu.Unlock()
		return result, nil
	case domain.PhaseAbandoned:
		a.mu.Unlock()
		return domain.ExamResult{}, domain.ErrAttemptFinished
	case domain.PhaseInstructions:
		a.mu.Unlock()
		return domain.ExamResult{}, domain.ErrAttemptNotStarted
	}
	result, fire := a.submitLocked(false)
	snap := a.touchLocked()
	observers, submitters, stop := a.onChange, a.onSubmit, a.cancelTimer
	a.mu.Unlock()

	a.finish(stop, observers, submitters, snap, result, fire)
	return result, nil
}

// Abandon discards the attempt without producing a score.
func (a *Attempt) Abandon() domain.AttemptSnapshot {
	a.mu.Lock()
	if a.phase.Terminal() {
		snap := a.snapshotLocked()
		a.mu.Unlock()
		return snap
	}
	a.phase = domain.PhaseAbandoned
	snap := a.touchLocked()
	observers, stop := a.onChange, a.cancelTimer
	a.mu.Unlock()

	if stop != nil {
		stop()
	}
	notify(observers, snap)
	return snap
}

// MarkSaved records the outcome of persisting the result.
func (a *Attempt) MarkSaved(err error) domain.AttemptSnapshot {
	a.mu.Lock()
	if err != nil {
		a.saved = false
		a.saveErr = err.Error()
	} else {
		a.saved = true
		a.saveErr = ""
	}
	snap := a.touchLocked()
	observers := a.onChange
	a.mu.Unlock()

	notify(observers, snap)
	return snap
}

// Saved reports whether the result has been persisted.
func (a *Attempt) Saved() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saved
}

// Result returns the score once the attempt is submitted.
func (a *Attempt) Result() (domain.ExamResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return domain.ExamResult{}, false
	}
	return *a.result, true
}

// Snapshot returns the current state.
func (a *Attempt) Snapshot() domain.AttemptSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// RunTimer drives Tick once per interval until the attempt ends or ctx is
// cancelled. Only the first call runs a timer.
func (a *Attempt) RunTimer(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	if a.phase.Terminal() || a.cancelTimer != nil {
		a.mu.Unlock()
		cancel()
		return
	}
	a.cancelTimer = cancel
	a.mu.Unlock()
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if snap := a.Tick(); snap.Phase.Terminal() {
				return
			}
		}
	}
}

func (a *Attempt) mutate(apply func()) (domain.AttemptSnapshot, error) {
	a.mu.Lock()
	switch {
	case a.phase.Terminal():
		a.mu.Unlock()
		return domain.AttemptSnapshot{}, domain.ErrAttemptFinished
	case a.phase != domain.PhaseInProgress:
		a.mu.Unlock()
		return domain.AttemptSnapshot{}, domain.ErrAttemptNotStarted
	}
	apply()
	snap := a.touchLocked()
	observers := a.onChange
	a.mu.Unlock()

	notify(observers, snap)
	return snap, nil
}

// submitLocked moves to submitted; fire is true only on the transition itself.
func (a *Attempt) submitLocked(timedOut bool) (domain.ExamResult, bool) {
	if a.phase == domain.PhaseSubmitted {
		return *a.result, false
	}
	result := Grade(a.exam, a.choices)
	result.TimedOut = timedOut
	result.SubmittedAt = a.now()
	a.result = &result
	a.phase = domain.PhaseSubmitted
	return result, true
}

func (a *Attempt) finish(stop context.CancelFunc, observers []func(domain.AttemptSnapshot), submitters []func(domain.ExamResult), snap domain.AttemptSnapshot, result domain.ExamResult, fire bool) {
	if stop != nil {
		stop()
	}
	notify(observers, snap)
	if !fire {
		return
	}
	for _, fn := range submitters {
		fn(result)
	}
}

func (a *Attempt) touchLocked() domain.AttemptSnapshot {
	a.updatedAt = a.now()
	return a.snapshotLocked()
}

func (a *Attempt) snapshotLocked() domain.AttemptSnapshot {
	choices := make(map[string]int, len(a.choices))
	for k, v := range a.choices {
		choices[k] = v
	}
	drafts := make(map[string]string, len(a.drafts))
	for k, v := range a.drafts {
		drafts[k] = v
	}
	snap := domain.AttemptSnapshot{
		ID:            a.id,
		ExamID:        a.exam.ID,
		UserID:        a.userID,
		Phase:         a.phase,
		Section:       a.section,
		Question:      a.question,
		RemainingSecs: int(a.remaining / time.Second),
		Choices:       choices,
		Drafts:        drafts,
		Saved:         a.saved,
		SaveError:     a.saveErr,
		UpdatedAt:     a.updatedAt,
	}
	if a.section < len(a.exam.Sections) {
		snap.SectionName = a.exam.Sections[a.section].Name
	}
	if a.result != nil {
		result := *a.result
		snap.Result = &result
	}
	return snap
}

func notify(observers []func(domain.AttemptSnapshot), snap domain.AttemptSnapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}

// Grade scores choices against the exam: round(correct/total*100) over graded
// questions, where unanswered questions count as incorrect.
func Grade(exam domain.ExamDefinition, choices map[string]int) domain.ExamResult {
	result := domain.ExamResult{
		ExamID:   exam.ID,
		Subject:  exam.Subject,
		Tool:     exam.Tool,
		Sections: make([]domain.SectionResult, 0, len(exam.Sections)),
	}
	for _, section := range exam.Sections {
		sr := domain.SectionResult{Name: section.Name}
		for _, q := range section.Questions {
			if !q.Graded() {
				continue
			}
			sr.Total++
			choice, answered := choices[q.ID]
			if !answered {
				continue
			}
			sr.Answered++
			if choice == q.Correct {
				sr.Correct++
			}
		}
		sr.Percent = Percent(sr.Correct, sr.Total)
		result.Correct += sr.Correct
		result.Total += sr.Total
		result.Sections = append(result.Sections, sr)
	}
	result.Score = Percent(result.Correct, result.Total)
	result.Band = Band(result.Score)
	return result
}

// Percent returns round(100*part/total), or 0 when total is zero.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// Band classifies a score the way the report pages phrase it.
func Band(score int) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "needs_practice"
	}
}
