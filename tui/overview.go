package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"junitdash/progress"
	"junitdash/query"
	"junitdash/testreport"
	"junitdash/tui/styles"
)

const (
	barWidth      = 50
	slowestListed = 5
)

// distributionBar draws the status shares as a horizontal bar. Segments
// under the label threshold are drawn but left out of the legend.
func distributionBar(summary testreport.Summary, width int) string {
	segments := query.Distribution(summary)
	var bar strings.Builder
	var legend []string
	used := 0
	for i, seg := range segments {
		cells := int(math.Round(seg.Share * float64(width) / 100))
		if i == len(segments)-1 && seg.Count > 0 {
			cells = width - used
		}
		cells = max(min(cells, width-used), 0)
		used += cells
		style := styles.Status(seg.Status)
		bar.WriteString(style.Render(strings.Repeat("█", cells)))
		if seg.ShowLabel {
			legend = append(legend, style.Render(fmt.Sprintf("%s %s (%d)", seg.Status, seg.Label(), seg.Count)))
		}
	}
	if used == 0 {
		bar.WriteString(styles.HelpStyle.Render(strings.Repeat("░", width)))
	}
	return bar.String() + "\n" + strings.Join(legend, "   ")
}

func renderOverview(report *testreport.Report, resolution progress.Summary) string {
	s := report.Summary
	label := styles.LabelStyle.Render
	value := styles.ValueStyle.Render

	totals := lipgloss.JoinHorizontal(lipgloss.Top,
		label("Total: "), value(fmt.Sprint(s.Total)), "   ",
		label("Passed: "), styles.PassedStyle.Render(fmt.Sprint(s.Passed)), "   ",
		label("Failed: "), styles.FailedStyle.Render(fmt.Sprint(s.Failed)), "   ",
		label("Skipped: "), styles.SkippedStyle.Render(fmt.Sprint(s.Skipped)), "   ",
		label("Success rate: "), value(query.FormatSuccessRate(s)), "   ",
		label("Time: "), value(query.FormatDuration(s.Time)),
	)

	var b strings.Builder
	b.WriteString(styles.BoxStyle.Render(totals + "\n\n" + distributionBar(s, barWidth)))
	b.WriteString("\n\n")

	b.WriteString(styles.HeaderStyle.Render("Suites"))
	b.WriteString("\n")
	for _, st := range query.SuiteStats(report) {
		fmt.Fprintf(&b, "  %-32s %4d tests  %s passed  %s failed  %s skipped  %7s  %s\n",
			st.Name, st.Total,
			styles.PassedStyle.Render(fmt.Sprintf("%4d", st.Passed)),
			styles.FailedStyle.Render(fmt.Sprintf("%4d", st.Failed)),
			styles.SkippedStyle.Render(fmt.Sprintf("%4d", st.Skipped)),
			st.Rate, query.FormatDuration(st.Time))
	}

	records := report.Records()
	if groups := testreport.GroupByFacet(records, testreport.FacetModule); len(groups) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.HeaderStyle.Render("End-to-end modules"))
		b.WriteString("\n")
		for _, g := range groups {
			fmt.Fprintf(&b, "  %-32s %4d tests  %s failed  %s\n",
				g.Value, g.Total(),
				styles.FailedStyle.Render(fmt.Sprintf("%4d", g.Failed)),
				query.FormatDuration(g.Time))
		}
	}

	if slow := query.Slowest(records, slowestListed); len(slow) > 0 {
		timing := query.Timings(records)
		b.WriteString("\n")
		b.WriteString(styles.HeaderStyle.Render("Slowest tests"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s mean %s   median %s   p90 %s   max %s\n",
			label("Timing:"),
			query.FormatDuration(timing.Mean), query.FormatDuration(timing.Median),
			query.FormatDuration(timing.P90), query.FormatDuration(timing.Max))
		for _, rec := range slow {
			fmt.Fprintf(&b, "  %8s  %s (%s)\n", query.FormatDuration(rec.Time), rec.Name, rec.Suite)
		}
	}

	if resolution.Total > 0 {
		b.WriteString("\n")
		b.WriteString(styles.HeaderStyle.Render("Failure resolution"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %d pending   %d in progress   %d completed   %.1f%% resolved\n",
			resolution.Pending, resolution.InProgress, resolution.Completed, resolution.PercentComplete())
	}
	return strings.TrimRight(b.String(), "\n")
}
