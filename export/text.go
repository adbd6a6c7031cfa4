package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"junitdash/progress"
	"junitdash/query"
	"junitdash/testreport"
)

// WriteSummary prints the report totals and per-suite figures as text tables
func WriteSummary(w io.Writer, report *testreport.Report) error {
	s := report.Summary
	totals := tablewriter.NewWriter(w)
	totals.Header("Total", "Passed", "Failed", "Skipped", "Time", "Success rate")
	if err := totals.Append([]string{
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Passed),
		strconv.Itoa(s.Failed),
		strconv.Itoa(s.Skipped),
		query.FormatDuration(s.Time),
		query.FormatSuccessRate(s),
	}); err != nil {
		return err
	}
	if err := totals.Render(); err != nil {
		return err
	}

	suites := tablewriter.NewWriter(w)
	suites.Header("Suite", "Tests", "Passed", "Failed", "Skipped", "Time", "Success rate")
	for _, st := range query.SuiteStats(report) {
		if err := suites.Append([]string{
			st.Name,
			strconv.Itoa(st.Total),
			strconv.Itoa(st.Passed),
			strconv.Itoa(st.Failed),
			strconv.Itoa(st.Skipped),
			query.FormatDuration(st.Time),
			st.Rate,
		}); err != nil {
			return err
		}
	}
	return suites.Render()
}

// WriteTests prints one page of test rows
func WriteTests(w io.Writer, page query.Page[query.TestRow]) error {
	table := tablewriter.NewWriter(w)
	table.Header("Test", "Suite", "Class", "Status", "Time")
	for _, row := range page.Items {
		if err := table.Append([]string{row.Name, row.Suite, row.ClassName, string(row.Status), query.FormatDuration(row.Time)}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d-%d of %d (page %d/%d)\n", page.First(), page.Last(), page.TotalItems, page.Number, page.TotalPages)
	return err
}

// WriteProgress prints failure progress rows and their summary
func WriteProgress(w io.Writer, rows []progress.Row, summary progress.Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Status", "Assignee", "Notes", "Updated")
	for _, row := range rows {
		if err := table.Append([]string{
			row.Progress.ID,
			string(row.Progress.Status),
			row.Progress.Assignee,
			row.Progress.Notes,
			row.Progress.UpdatedAt,
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d tracked: %d pending, %d in progress, %d completed (%.1f%%)\n",
		summary.Total, summary.Pending, summary.InProgress, summary.Completed, summary.PercentComplete())
	return err
}
