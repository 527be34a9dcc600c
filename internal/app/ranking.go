package app

import (
	"math"
	"sort"

	"student-analyzer/internal/domain"
)

// RankSubject ranks students by their latest score in subject. Students with
// no score (or a zero score) are left out. Ties keep input order and still
// receive consecutive ranks.
func RankSubject(students []domain.Student, subject domain.Subject) []domain.LeaderboardRow {
	rows := make([]domain.LeaderboardRow, 0, len(students))
	for _, s := range students {
		score, ok := s.LatestScore(subject)
		if !ok || score <= 0 {
			continue
		}
		rows = append(rows, leaderboardRow(s, score))
	}
	return rankRows(rows)
}

// RankOverall ranks students by the rounded mean of their available scores
// across subjects.
func RankOverall(students []domain.Student, subjects []domain.Subject) []domain.LeaderboardRow {
	rows := make([]domain.LeaderboardRow, 0, len(students))
	for _, s := range students {
		mean, ok := OverallScore(s, subjects)
		if !ok {
			continue
		}
		rows = append(rows, leaderboardRow(s, int(math.Round(mean))))
	}
	return rankRows(rows)
}

// OverallScore is the unrounded mean of the student's non-zero latest scores.
func OverallScore(s domain.Student, subjects []domain.Subject) (float64, bool) {
	sum, n := 0, 0
	for _, subject := range subjects {
		score, ok := s.LatestScore(subject)
		if !ok || score <= 0 {
			continue
		}
		sum += score
		n++
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// RankClass ranks by GPA, then progress, then overall score, all descending.
// A missing GPA is derived from the overall score on a 4.0 scale and a missing
// attendance falls back to the rounded overall score.
func RankClass(students []domain.Student, subjects []domain.Subject) []domain.ClassLeaderboardRow {
	rows := make([]domain.ClassLeaderboardRow, 0, len(students))
	for _, s := range students {
		overall, _ := OverallScore(s, subjects)

		gpa := s.GPA
		if gpa == 0 && overall > 0 {
			gpa = math.Min(4.0, overall/100*4.0)
			gpa = math.Round(gpa*10) / 10
		}
		progress := s.Attendance
		if progress == 0 && overall > 0 {
			progress = int(math.Round(overall))
		}
		progress = clamp(progress, 0, 100)

		if gpa <= 0 && progress <= 0 && overall <= 0 {
			continue
		}
		rows = append(rows, domain.ClassLeaderboardRow{
			UID:       s.UID,
			Name:      s.Name,
			StudentID: s.StudentID,
			Class:     classOrDefault(s.Class),
			GPA:       gpa,
			Progress:  progress,
			Overall:   overall,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].GPA != rows[j].GPA {
			return rows[i].GPA > rows[j].GPA
		}
		if rows[i].Progress != rows[j].Progress {
			return rows[i].Progress > rows[j].Progress
		}
		return rows[i].Overall > rows[j].Overall
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// StandingOf finds uid on a ranked board. PointsToNext is what uid needs to
// pass the row directly above; it stays zero at rank 1 and off the board.
func StandingOf(rows []domain.LeaderboardRow, uid string) domain.Standing {
	avg := BoardAverage(rows)
	for i, row := range rows {
		if row.UID != uid {
			continue
		}
		st := domain.Standing{
			Rank:         row.Rank,
			Score:        row.Score,
			Average:      avg,
			AboveAverage: row.Score > avg,
		}
		if i > 0 {
			st.PointsToNext = rows[i-1].Score - row.Score + 1
		}
		return st
	}
	return domain.Standing{Average: avg}
}

// BoardAverage is the rounded mean score of a board, zero when it is empty.
func BoardAverage(rows []domain.LeaderboardRow) int {
	if len(rows) == 0 {
		return 0
	}
	sum := 0
	for _, row := range rows {
		sum += row.Score
	}
	return int(math.Round(float64(sum) / float64(len(rows))))
}

func rankRows(rows []domain.LeaderboardRow) []domain.LeaderboardRow {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func leaderboardRow(s domain.Student, score int) domain.LeaderboardRow {
	return domain.LeaderboardRow{
		UID:       s.UID,
		Name:      s.Name,
		StudentID: s.StudentID,
		Class:     classOrDefault(s.Class),
		Score:     score,
	}
}

func classOrDefault(class string) string {
	if class == "" {
		return "N/A"
	}
	return class
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
