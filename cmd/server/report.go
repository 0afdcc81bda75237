package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sagniknandigit/internship-management/internal/db"
	"github.com/sagniknandigit/internship-management/internal/jobs"
	"github.com/sagniknandigit/internship-management/internal/reports"
	"github.com/sagniknandigit/internship-management/internal/repository/sqlite"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the aggregate report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			xlsxPath, err := cmd.Flags().GetString("xlsx")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := db.New(ctx, cfg.DatabasePath, logger)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer d.Close()

			rep, err := reports.NewService(sqlite.New(d, logger).Repository()).Report(ctx)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), *rep)

			queue, err := jobs.NewRepository(d).Stats(ctx)
			if err != nil {
				return err
			}
			printQueue(cmd.OutOrStdout(), queue)

			if xlsxPath != "" {
				f, err := os.Create(xlsxPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := reports.WriteXLSX(*rep, f); err != nil {
					return fmt.Errorf("write workbook: %w", err)
				}
				logger.Info("report exported", "path", xlsxPath)
			}
			return nil
		},
	}
	cmd.Flags().String("xlsx", "", "Also write the report as an Excel workbook to this path")
	return cmd
}

func printReport(w io.Writer, r reports.Report) {
	s := r.Summary
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("Summary (" + r.GeneratedAt.Format("2006-01-02 15:04 MST") + ")")
	summary.AppendRows([]table.Row{
		{"Users", s.TotalUsers},
		{"Interns", s.TotalInterns},
		{"Mentors", s.TotalMentors},
		{"Admins", s.TotalAdmins},
		{"Suspended", s.TotalSuspended},
		{"Internships", s.TotalInternships},
		{"Active internships", s.ActiveInternships},
		{"Applications", s.TotalApplications},
		{"Interviews", s.TotalInterviews},
	})
	summary.Render()

	byStatus := table.NewWriter()
	byStatus.SetOutputMirror(w)
	byStatus.SetTitle("Applications by status")
	byStatus.AppendHeader(table.Row{"Status", "Count"})
	for _, st := range models.ApplicationStatuses {
		byStatus.AppendRow(table.Row{st, r.ApplicationsByStatus[st]})
	}
	byStatus.Render()

	perf := table.NewWriter()
	perf.SetOutputMirror(w)
	perf.SetTitle("Internships")
	perf.AppendHeader(table.Row{"Title", "Applications", "Shortlisted", "Hired", "Rejected", "Status", "Conversion %"})
	for _, p := range r.Internships {
		perf.AppendRow(table.Row{p.Title, p.TotalApplications, p.Shortlisted, p.Hired, p.Rejected, p.Status, fmt.Sprintf("%.2f", p.ConversionRate)})
	}
	perf.Render()

	mentors := table.NewWriter()
	mentors.SetOutputMirror(w)
	mentors.SetTitle("Mentor workload")
	mentors.AppendHeader(table.Row{"Mentor", "Interns", "Names", "Interviews"})
	for _, m := range r.Mentors {
		mentors.AppendRow(table.Row{m.Name, m.AssignedInternCount, strings.Join(m.AssignedInternNames, ", "), m.InterviewsConducted})
	}
	mentors.Render()
}

func printQueue(w io.Writer, stats map[string]int) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Background jobs")
	tw.AppendHeader(table.Row{"Status", "Jobs"})
	for _, k := range keys {
		tw.AppendRow(table.Row{k, stats[k]})
	}
	tw.Render()
}
