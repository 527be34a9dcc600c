package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"student-analyzer/internal/domain"
)

const sheetName = "Class"

var header = []string{"student_id", "name", "email", "class", "dsa", "daa", "aptitude", "ui", "ui_tool", "overall", "gpa", "class_rank"}

var scoreColumns = []domain.Subject{
	domain.SubjectDSA, domain.SubjectDAA, domain.SubjectAptitude, domain.SubjectUI, domain.SubjectUITool,
}

// Write renders the class report as an .xlsx workbook with one sheet.
// Subjects without a score are left blank.
func Write(w io.Writer, report domain.RosterReport) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := file.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = file.SetCellStyle(sheetName, "A1", last, style)
	}

	for i, row := range report.Rows {
		values := []interface{}{row.Student.StudentID, row.Student.Name, row.Student.Email, row.Student.Class}
		for _, subject := range scoreColumns {
			if score, ok := row.Latest[subject]; ok {
				values = append(values, score)
			} else {
				values = append(values, nil)
			}
		}
		if row.ClassRank > 0 {
			values = append(values, math.Round(row.Overall*10)/10, row.GPA, row.ClassRank)
		} else {
			values = append(values, nil, nil, nil)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := file.SetDocProps(&excelize.DocProperties{
		Title:   "Class report",
		Creator: strings.TrimSpace(report.Teacher.Name),
		Created: report.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}); err != nil {
		return fmt.Errorf("failed to set properties: %w", err)
	}
	_, err := file.WriteTo(w)
	return err
}

// Filename is the attachment name offered for download.
func Filename(report domain.RosterReport) string {
	return fmt.Sprintf("class-report-%s.xlsx", report.GeneratedAt.UTC().Format("20060102"))
}
