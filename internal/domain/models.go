package domain

import "time"

// Subject identifies a score history on a student document.
type Subject string

const (
	SubjectDSA      Subject = "dsa"
	SubjectDAA      Subject = "daa"
	SubjectAptitude Subject = "aptitude"
	SubjectUI       Subject = "ui"
	SubjectUITool   Subject = "uiTool"
)

// AllSubjects lists every subject a student can hold scores for.
var AllSubjects = []Subject{SubjectDSA, SubjectDAA, SubjectAptitude, SubjectUI, SubjectUITool}

// RankedSubjects feed the overall and class leaderboards.
var RankedSubjects = []Subject{SubjectDSA, SubjectDAA, SubjectAptitude}

// ScoreField is the document field holding the subject's score history.
func (s Subject) ScoreField() string {
	return string(s) + "Scores"
}

// Valid reports whether s is a known subject.
func (s Subject) Valid() bool {
	for _, known := range AllSubjects {
		if s == known {
			return true
		}
	}
	return false
}

// ScoreEntry is one recorded exam result. Entries are append-only.
type ScoreEntry struct {
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
	Tool  string    `json:"tool,omitempty"`
}

// Student is the normalized form of a student document.
type Student struct {
	UID         string                   `json:"uid"`
	Name        string                   `json:"name"`
	Email       string                   `json:"email"`
	StudentID   string                   `json:"studentId"`
	Class       string                   `json:"class,omitempty"`
	DateOfBirth string                   `json:"dateOfBirth,omitempty"`
	Address     string                   `json:"address,omitempty"`
	Phone       string                   `json:"phone,omitempty"`
	ParentName  string                   `json:"parentName,omitempty"`
	ParentEmail string                   `json:"parentEmail,omitempty"`
	ParentPhone string                   `json:"parentPhone,omitempty"`
	Subjects    []string                 `json:"subjects,omitempty"`
	Bio         string                   `json:"bio,omitempty"`
	GPA         float64                  `json:"gpa,omitempty"`
	Attendance  int                      `json:"attendance,omitempty"`
	Scores      map[Subject][]ScoreEntry `json:"scores,omitempty"`
}

// LatestScore returns the last recorded score for subject.
func (s Student) LatestScore(subject Subject) (int, bool) {
	entries := s.Scores[subject]
	if len(entries) == 0 {
		return 0, false
	}
	return entries[len(entries)-1].Score, true
}

// ProfileUpdate carries the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name        *string   `json:"name,omitempty"`
	Class       *string   `json:"class,omitempty"`
	DateOfBirth *string   `json:"dateOfBirth,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	ParentName  *string   `json:"parentName,omitempty"`
	ParentEmail *string   `json:"parentEmail,omitempty"`
	ParentPhone *string   `json:"parentPhone,omitempty"`
	Subjects    *[]string `json:"subjects,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
}

// Profile is a student's own view: record, latest scores and completeness.
type Profile struct {
	Student  Student         `json:"student"`
	Latest   map[Subject]int `json:"latest"`
	Complete bool            `json:"complete"`
}

// Teacher owns a roster of linked student identifiers.
type Teacher struct {
	UID         string    `json:"uid"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	TeacherCode string    `json:"teacherId"`
	Roster      []string  `json:"sids"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Project is a portfolio entry owned by a student.
type Project struct {
	ID           string    `json:"id"`
	StudentUID   string    `json:"studentId"`
	StudentName  string    `json:"studentName"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	GithubURL    string    `json:"githubUrl"`
	Technologies string    `json:"technologies"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProjectInput is the editable part of a project.
type ProjectInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	GithubURL    string `json:"githubUrl"`
	Technologies string `json:"technologies"`
}

// Request statuses.
const (
	RequestPending = "pending"
)

// FriendRequest is a pending invitation from one student to another.
type FriendRequest struct {
	ID        string    `json:"id"`
	FromID    string    `json:"fromId"`
	FromName  string    `json:"fromName"`
	ToID      string    `json:"toId"`
	ToName    string    `json:"toName"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"timestamp"`
}

// Friend is an accepted connection stored under the student's friends.
type Friend struct {
	UID   string    `json:"uid"`
	Name  string    `json:"name"`
	Since time.Time `json:"since"`
}

// StudentSummary is what search results expose about another student.
type StudentSummary struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	Email     string `json:"email"`
	PhotoURL  string `json:"photoUrl,omitempty"`
}
