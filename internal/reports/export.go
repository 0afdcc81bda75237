package reports

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sagniknandigit/internship-management/pkg/models"
)

const (
	sheetSummary     = "Summary"
	sheetInternships = "Internships"
	sheetMentors     = "Mentors"
)

// WriteXLSX writes r as a workbook with one sheet per report section.
func WriteXLSX(r Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetInternships, sheetMentors} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	s := r.Summary
	summary := [][]any{
		{"Metric", "Value"},
		{"Generated at", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Total users", s.TotalUsers},
		{"Interns", s.TotalInterns},
		{"Mentors", s.TotalMentors},
		{"Admins", s.TotalAdmins},
		{"Suspended", s.TotalSuspended},
		{"Internships", s.TotalInternships},
		{"Active internships", s.ActiveInternships},
		{"Applications", s.TotalApplications},
		{"Interviews", s.TotalInterviews},
	}
	for _, st := range models.ApplicationStatuses {
		summary = append(summary, []any{"Status: " + string(st), r.ApplicationsByStatus[st]})
	}
	if err := writeRows(f, sheetSummary, summary, header); err != nil {
		return err
	}

	internships := [][]any{{"ID", "Title", "Applications", "Shortlisted", "Hired", "Rejected", "Status", "Conversion %"}}
	for _, p := range r.Internships {
		internships = append(internships, []any{p.ID, p.Title, p.TotalApplications, p.Shortlisted, p.Hired, p.Rejected, p.Status, p.ConversionRate})
	}
	if err := writeRows(f, sheetInternships, internships, header); err != nil {
		return err
	}

	mentors := [][]any{{"ID", "Name", "Assigned interns", "Intern names", "Interviews"}}
	for _, m := range r.Mentors {
		mentors = append(mentors, []any{m.ID, m.Name, m.AssignedInternCount, strings.Join(m.AssignedInternNames, ", "), m.InterviewsConducted})
	}
	if err := writeRows(f, sheetMentors, mentors, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, header int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", header); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", last, 20)
}
