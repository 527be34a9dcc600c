package domain

import "time"

// LeaderboardRow is a ranked student in a subject or overall leaderboard.
type LeaderboardRow struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	Class     string `json:"class"`
	Score     int    `json:"score"`
	Rank      int    `json:"rank"`
}

// Leaderboard is a derived view, recomputed from the student collection on every request.
type Leaderboard struct {
	Board     string           `json:"board"`
	Rows      []LeaderboardRow `json:"rows"`
	Average   int              `json:"average"`
	Message   string           `json:"message,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ClassLeaderboardRow ranks by GPA, then progress, then overall score.
type ClassLeaderboardRow struct {
	UID       string  `json:"uid"`
	Name      string  `json:"name"`
	StudentID string  `json:"studentId"`
	Class     string  `json:"class"`
	GPA       float64 `json:"gpa"`
	Progress  int     `json:"progress"`
	Overall   float64 `json:"overall"`
	Rank      int     `json:"rank"`
}

// ClassLeaderboard is the class-wide ranking.
type ClassLeaderboard struct {
	Rows      []ClassLeaderboardRow `json:"rows"`
	Message   string                `json:"message,omitempty"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

// Standing is a student's position on one board; zero rank means not ranked.
type Standing struct {
	Rank         int  `json:"rank"`
	Score        int  `json:"score"`
	Average      int  `json:"average"`
	AboveAverage bool `json:"aboveAverage"`
	PointsToNext int  `json:"pointsToNext"`
}

// Standings collects a student's position on every board.
type Standings struct {
	UID      string               `json:"uid"`
	Subjects map[Subject]Standing `json:"subjects"`
	Overall  Standing             `json:"overall"`
}

// RosterReportRow is one student line of a teacher's class report.
type RosterReportRow struct {
	Student   Student
	Latest    map[Subject]int
	Overall   float64
	GPA       float64
	ClassRank int
}

// RosterReport is the exportable view of a teacher's class.
type RosterReport struct {
	Teacher     Teacher
	Rows        []RosterReportRow
	GeneratedAt time.Time
}
