package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"student-analyzer/internal/domain"
)

func TestWriteProducesOneRowPerStudent(t *testing.T) {
	report := domain.RosterReport{
		Teacher: domain.Teacher{Name: "Grace"},
		Rows: []domain.RosterReportRow{
			{
				Student:   domain.Student{StudentID: "S-1", Name: "Ann", Email: "ann@example.com", Class: "A"},
				Latest:    map[domain.Subject]int{domain.SubjectDSA: 80, domain.SubjectDAA: 60},
				Overall:   70,
				GPA:       2.8,
				ClassRank: 1,
			},
			{
				Student: domain.Student{StudentID: "S-2", Name: "Ben"},
				Latest:  map[domain.Subject]int{},
			},
		},
		GeneratedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := Write(&buf, report); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(sheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "student_id" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "S-1" || rows[1][4] != "80" || rows[1][5] != "60" || rows[1][11] != "1" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][1] != "Ben" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
	if got := Filename(report); got != "class-report-20240501.xlsx" {
		t.Fatalf("unexpected filename %s", got)
	}
}
