package domain

import "time"

// Question is a multiple-choice item, or a free-text coding problem when it has no options.
type Question struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options,omitempty"`
	Correct    int      `json:"correct"`
	Template   string   `json:"template,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
}

// Graded reports whether the question counts toward the score.
func (q Question) Graded() bool {
	return len(q.Options) > 0
}

// Section groups questions; crossing a section boundary changes the displayed section.
type Section struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// ExamDefinition is an immutable question bank for one subject.
type ExamDefinition struct {
	ID          string        `json:"id"`
	Subject     Subject       `json:"subject"`
	Title       string        `json:"title"`
	Tool        string        `json:"tool,omitempty"`
	TimeLimit   time.Duration `json:"timeLimit"`
	GradingRule string        `json:"gradingRule"`
	Sections    []Section     `json:"sections"`
}

// Question looks up a question by id across all sections.
func (e ExamDefinition) Question(id string) (Question, bool) {
	for _, section := range e.Sections {
		for _, q := range section.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// QuestionCount counts every question, graded or not.
func (e ExamDefinition) QuestionCount() int {
	n := 0
	for _, section := range e.Sections {
		n += len(section.Questions)
	}
	return n
}

// GradedCount counts questions that contribute to the score.
func (e ExamDefinition) GradedCount() int {
	n := 0
	for _, section := range e.Sections {
		for _, q := range section.Questions {
			if q.Graded() {
				n++
			}
		}
	}
	return n
}

// Public strips answer keys so the definition can be served to students.
func (e ExamDefinition) Public() ExamDefinition {
	out := e
	out.Sections = make([]Section, len(e.Sections))
	for i, section := range e.Sections {
		qs := make([]Question, len(section.Questions))
		for j, q := range section.Questions {
			q.Correct = -1
			qs[j] = q
		}
		out.Sections[i] = Section{Name: section.Name, Questions: qs}
	}
	return out
}

// ExamSummary is the catalog view of an exam.
type ExamSummary struct {
	ID            string  `json:"id"`
	Subject       Subject `json:"subject"`
	Title         string  `json:"title"`
	Tool          string  `json:"tool,omitempty"`
	Questions     int     `json:"questions"`
	TimeLimitSecs int     `json:"timeLimitSecs"`
	GradingRule   string  `json:"gradingRule"`
}

// AttemptPhase is the exam state machine position.
type AttemptPhase string

const (
	PhaseInstructions AttemptPhase = "instructions"
	PhaseInProgress   AttemptPhase = "in_progress"
	PhaseSubmitted    AttemptPhase = "submitted"
	PhaseAbandoned    AttemptPhase = "abandoned"
)

// Terminal reports whether no further transitions are possible.
func (p AttemptPhase) Terminal() bool {
	return p == PhaseSubmitted || p == PhaseAbandoned
}

// SectionResult is the per-section breakdown of a submitted attempt.
type SectionResult struct {
	Name     string `json:"name"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
	Answered int    `json:"answered"`
	Percent  int    `json:"percent"`
}

// ExamResult is the single score produced by an attempt.
type ExamResult struct {
	ExamID      string          `json:"examId"`
	Subject     Subject         `json:"subject"`
	Tool        string          `json:"tool,omitempty"`
	Score       int             `json:"score"`
	Correct     int             `json:"correct"`
	Total       int             `json:"total"`
	TimedOut    bool            `json:"timedOut"`
	Band        string          `json:"band"`
	Sections    []SectionResult `json:"sections"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// AttemptSnapshot is a point-in-time view of an attempt.
type AttemptSnapshot struct {
	ID            string            `json:"id"`
	ExamID        string            `json:"examId"`
	UserID        string            `json:"userId"`
	Phase         AttemptPhase      `json:"phase"`
	Section       int               `json:"section"`
	SectionName   string            `json:"sectionName"`
	Question      int               `json:"question"`
	RemainingSecs int               `json:"remainingSecs"`
	Choices       map[string]int    `json:"choices"`
	Drafts        map[string]string `json:"drafts,omitempty"`
	Result        *ExamResult       `json:"result,omitempty"`
	Saved         bool              `json:"saved"`
	SaveError     string            `json:"saveError,omitempty"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
