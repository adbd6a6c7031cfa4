package query

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/montanaflynn/stats"

	"junitdash/testreport"
)

// NotAvailable is displayed wherever a rate has no defined value
const NotAvailable = "N/A"

// LabelThreshold is the smallest share, in percent, that gets an on-chart label
const LabelThreshold = 2.0

// SuccessRate returns passed / (passed + failed + skipped) * 100. The second
// result is false when the denominator is not positive.
func SuccessRate(s testreport.Summary) (float64, bool) {
	return rate(s.Passed, s.Passed+s.Failed+s.Skipped)
}

func rate(passed, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return float64(passed) * 100 / float64(total), true
}

// FormatSuccessRate renders the rate with one decimal, or N/A
func FormatSuccessRate(s testreport.Summary) string {
	return formatRate(SuccessRate(s))
}

func formatRate(v float64, ok bool) string {
	if !ok {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f%%", v)
}

// Segment is one slice of the status distribution chart
type Segment struct {
	Status    testreport.Status `json:"status"`
	Count     int               `json:"count"`
	Share     float64           `json:"share"`
	ShowLabel bool              `json:"showLabel"`
}

// Label renders the share for the chart
func (s Segment) Label() string {
	return fmt.Sprintf("%.1f%%", s.Share)
}

// Distribution splits the summary into passed, failed and skipped segments.
// Segments under LabelThreshold are kept but unlabeled.
func Distribution(s testreport.Summary) []Segment {
	counts := []struct {
		status testreport.Status
		count  int
	}{
		{testreport.StatusPassed, s.Passed},
		{testreport.StatusFailed, s.Failed},
		{testreport.StatusSkipped, s.Skipped},
	}
	total := s.Passed + s.Failed + s.Skipped

	segments := make([]Segment, 0, len(counts))
	for _, c := range counts {
		seg := Segment{Status: c.status, Count: c.count}
		if total > 0 {
			seg.Share = float64(c.count) * 100 / float64(total)
		}
		seg.ShowLabel = seg.Share >= LabelThreshold
		segments = append(segments, seg)
	}
	return segments
}

// FormatDuration renders seconds the way test runners report them
func FormatDuration(seconds float64) string {
	switch {
	case seconds <= 0 || math.IsNaN(seconds):
		return "0s"
	case seconds < 1:
		return fmt.Sprintf("%dms", int(math.Round(seconds*1000)))
	case seconds < 60:
		return fmt.Sprintf("%.2fs", seconds)
	}
	whole := int(math.Round(seconds))
	if whole < 3600 {
		return fmt.Sprintf("%dm %ds", whole/60, whole%60)
	}
	return fmt.Sprintf("%dh %dm", whole/3600, (whole%3600)/60)
}

// SuiteStat summarizes one suite from its declared counts
type SuiteStat struct {
	Name    string  `json:"name"`
	Total   int     `json:"total"`
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Skipped int     `json:"skipped"`
	Time    float64 `json:"time"`
	Rate    string  `json:"successRate"`
}

// SuiteStats returns per-suite figures in document order
func SuiteStats(report *testreport.Report) []SuiteStat {
	stats := make([]SuiteStat, 0, len(report.Suites))
	for _, suite := range report.Suites {
		failed := suite.Failures + suite.Errors
		passed := suite.Tests - failed - suite.Skipped
		stats = append(stats, SuiteStat{
			Name:    suite.Name,
			Total:   suite.Tests,
			Passed:  passed,
			Failed:  failed,
			Skipped: suite.Skipped,
			Time:    suite.Time,
			Rate:    formatRate(rate(passed, passed+failed+suite.Skipped)),
		})
	}
	return stats
}

// Slowest returns up to n records with the longest time, longest first.
// Equal times keep document order.
func Slowest(records []testreport.Record, n int) []testreport.Record {
	out := slices.Clone(records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time > out[j].Time })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Timing summarizes the durations of a set of tests, in seconds
type Timing struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// Timings computes duration statistics over records. It returns the zero
// Timing for no records.
func Timings(records []testreport.Record) Timing {
	data := make(stats.Float64Data, 0, len(records))
	for _, rec := range records {
		data = append(data, rec.Time)
	}
	if len(data) == 0 {
		return Timing{}
	}
	t := Timing{Count: len(data)}
	t.Mean, _ = data.Mean()
	t.Median, _ = data.Median()
	t.P90, _ = data.Percentile(90)
	t.Max, _ = data.Max()
	return t
}

// FilterOptions are the values offered by the suite and classname pickers
type FilterOptions struct {
	Suites     []string `json:"suites"`
	ClassNames []string `json:"classnames"`
}

// Options collects the sorted unique suites and non-empty classnames
func Options(records []testreport.Record) FilterOptions {
	suites := map[string]struct{}{}
	classes := map[string]struct{}{}
	for _, rec := range records {
		suites[rec.Suite] = struct{}{}
		if rec.ClassName != "" {
			classes[rec.ClassName] = struct{}{}
		}
	}
	return FilterOptions{Suites: sortedKeys(suites), ClassNames: sortedKeys(classes)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
