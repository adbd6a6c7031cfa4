package query

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"junitdash/progress"
	"junitdash/testreport"
)

func strPtr(s string) *string { return &s }

func sampleRows() []TestRow {
	return []TestRow{
		{Record: testreport.Record{Suite: "checkout", TestCase: testreport.TestCase{Name: "pays", ClassName: "Payments", Time: 2.5, Status: testreport.StatusFailed, ErrorMessage: strPtr("declined")}}},
		{Record: testreport.Record{Suite: "checkout", TestCase: testreport.TestCase{Name: "Browses", ClassName: "Catalog", Time: 0.5, Status: testreport.StatusPassed}}},
		{Record: testreport.Record{Suite: "login", TestCase: testreport.TestCase{Name: "remembers", Time: 1, Status: testreport.StatusSkipped}}},
		{Record: testreport.Record{Suite: "login", TestCase: testreport.TestCase{Name: "authenticates", ClassName: "Auth", Time: 1, Status: testreport.StatusPassed}}},
	}
}

func names[T Filterable](rows []T) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		v, _ := r.GetStringValue(FieldName)
		out = append(out, v)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{name: "empty filter keeps everything", filter: Filter{}, expected: []string{"pays", "Browses", "remembers", "authenticates"}},
		{name: "all sentinel is a no-op", filter: Filter{Status: All, Suite: All, ClassName: All}, expected: []string{"pays", "Browses", "remembers", "authenticates"}},
		{name: "status", filter: Filter{Status: "passed"}, expected: []string{"Browses", "authenticates"}},
		{name: "suite", filter: Filter{Suite: "login"}, expected: []string{"remembers", "authenticates"}},
		{name: "classname", filter: Filter{ClassName: "Catalog"}, expected: []string{"Browses"}},
		{name: "search is case insensitive", filter: Filter{Search: "BROW"}, expected: []string{"Browses"}},
		{name: "search matches suite", filter: Filter{Search: "log"}, expected: []string{"Browses", "remembers", "authenticates"}},
		{name: "search matches classname", filter: Filter{Search: "payments"}, expected: []string{"pays"}},
		{name: "dimensions compose with and", filter: Filter{Suite: "login", Status: "passed"}, expected: []string{"authenticates"}},
		{name: "no match", filter: Filter{Search: "zzz"}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Apply(sampleRows(), tt.filter))
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortRows(t *testing.T) {
	tests := []struct {
		name     string
		sort     Sort
		expected []string
	}{
		{name: "name ascending uses collation", sort: Sort{Field: FieldName, Direction: Ascending}, expected: []string{"authenticates", "Browses", "pays", "remembers"}},
		{name: "name descending", sort: Sort{Field: FieldName, Direction: Descending}, expected: []string{"remembers", "pays", "Browses", "authenticates"}},
		{name: "time is numeric and stable", sort: Sort{Field: FieldTime, Direction: Ascending}, expected: []string{"Browses", "remembers", "authenticates", "pays"}},
		{name: "missing classname sorts first", sort: Sort{Field: FieldClassName, Direction: Ascending}, expected: []string{"remembers", "authenticates", "Browses", "pays"}},
		{name: "status", sort: Sort{Field: FieldStatus, Direction: Ascending}, expected: []string{"pays", "Browses", "authenticates", "remembers"}},
		{name: "no field keeps input order", sort: Sort{}, expected: []string{"pays", "Browses", "remembers", "authenticates"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(SortRows(sampleRows(), tt.sort))
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("SortRows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSortRows_DoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	_ = SortRows(rows, Sort{Field: FieldName, Direction: Descending})
	if diff := cmp.Diff(names(sampleRows()), names(rows)); diff != "" {
		t.Errorf("input was reordered (-want +got):\n%s", diff)
	}
}

func TestRun_Idempotent(t *testing.T) {
	q := Query{Filter: Filter{Search: "s"}, Sort: Sort{Field: FieldTime, Direction: Descending}, Page: 1}
	first := Run(sampleRows(), q)
	second := Run(sampleRows(), q)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Run is not idempotent (-first +second):\n%s", diff)
	}
}

func manyRows(n int) []TestRow {
	rows := make([]TestRow, n)
	for i := range rows {
		rows[i] = TestRow{Record: testreport.Record{Suite: "s", TestCase: testreport.TestCase{Name: fmt.Sprintf("test-%03d", i+1), Status: testreport.StatusPassed}}}
	}
	return rows
}

func TestPaginate(t *testing.T) {
	rows := manyRows(75)

	page1 := Paginate(rows, 1, DefaultPageSize)
	if len(page1.Items) != 50 || page1.First() != 1 || page1.Last() != 50 {
		t.Errorf("Expected items 1-50 on page 1, got %d-%d (%d items)", page1.First(), page1.Last(), len(page1.Items))
	}
	if page1.TotalPages != 2 || !page1.HasNext() || page1.HasPrev() {
		t.Errorf("Unexpected page 1 navigation: %+v", page1)
	}

	page2 := Paginate(rows, 2, DefaultPageSize)
	if len(page2.Items) != 25 || page2.First() != 51 || page2.Last() != 75 {
		t.Errorf("Expected items 51-75 on page 2, got %d-%d", page2.First(), page2.Last())
	}
	if page2.Items[0].Name != "test-051" {
		t.Errorf("Expected test-051 first on page 2, got %s", page2.Items[0].Name)
	}

	page3 := Paginate(rows, 3, DefaultPageSize)
	if page3.Number != 2 {
		t.Errorf("Expected page 3 to clamp to 2, got %d", page3.Number)
	}
	if diff := cmp.Diff(page2, page3); diff != "" {
		t.Errorf("Clamped page differs from last page (-want +got):\n%s", diff)
	}
}

func TestPaginate_Bounds(t *testing.T) {
	empty := Paginate([]TestRow{}, 4, 0)
	if empty.Number != 1 || empty.TotalPages != 1 || empty.Size != DefaultPageSize || len(empty.Items) != 0 {
		t.Errorf("Unexpected empty page: %+v", empty)
	}
	if empty.First() != 0 || empty.Last() != 0 {
		t.Errorf("Expected zero positions for empty page, got %d-%d", empty.First(), empty.Last())
	}
	if got := Paginate(manyRows(10), -3, 5).Number; got != 1 {
		t.Errorf("Expected negative page to clamp to 1, got %d", got)
	}
	if got := ClampPage(7, 101, 50); got != 3 {
		t.Errorf("Expected ClampPage(7, 101, 50) = 3, got %d", got)
	}
}

func TestSuccessRate(t *testing.T) {
	nine := testreport.Summary{Total: 9, Passed: 5, Failed: 4}
	if got := FormatSuccessRate(nine); got != "55.6%" {
		t.Errorf("Expected 55.6%%, got %s", got)
	}

	zero := testreport.Summary{}
	if _, ok := SuccessRate(zero); ok {
		t.Error("Expected undefined rate for empty summary")
	}
	if got := FormatSuccessRate(zero); got != NotAvailable {
		t.Errorf("Expected %s for empty summary, got %s", NotAvailable, got)
	}

	negative := testreport.Summary{Total: 1, Passed: -3, Failed: 3}
	if got := FormatSuccessRate(negative); got != NotAvailable {
		t.Errorf("Expected %s when the denominator is not positive, got %s", NotAvailable, got)
	}
}

func TestDistribution(t *testing.T) {
	segments := Distribution(testreport.Summary{Total: 100, Passed: 97, Failed: 2, Skipped: 1})
	want := []Segment{
		{Status: testreport.StatusPassed, Count: 97, Share: 97, ShowLabel: true},
		{Status: testreport.StatusFailed, Count: 2, Share: 2, ShowLabel: true},
		{Status: testreport.StatusSkipped, Count: 1, Share: 1, ShowLabel: false},
	}
	if diff := cmp.Diff(want, segments); diff != "" {
		t.Errorf("Distribution mismatch (-want +got):\n%s", diff)
	}

	for _, seg := range Distribution(testreport.Summary{}) {
		if seg.Share != 0 || seg.ShowLabel {
			t.Errorf("Expected unlabeled zero segment for empty summary, got %+v", seg)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[float64]string{
		0:      "0s",
		0.25:   "250ms",
		1.5:    "1.50s",
		125:    "2m 5s",
		7384.2: "2h 3m",
	}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestSuiteStats(t *testing.T) {
	report := &testreport.Report{Suites: []testreport.Suite{
		{Name: "a", Tests: 9, Failures: 3, Errors: 1, Time: 2},
		{Name: "empty"},
	}}
	want := []SuiteStat{
		{Name: "a", Total: 9, Passed: 5, Failed: 4, Time: 2, Rate: "55.6%"},
		{Name: "empty", Rate: NotAvailable},
	}
	if diff := cmp.Diff(want, SuiteStats(report)); diff != "" {
		t.Errorf("SuiteStats mismatch (-want +got):\n%s", diff)
	}
}

func TestSlowestAndOptions(t *testing.T) {
	var records []testreport.Record
	for _, r := range sampleRows() {
		records = append(records, r.Record)
	}

	slowest := Slowest(records, 2)
	if diff := cmp.Diff([]string{"pays", "remembers"}, []string{slowest[0].Name, slowest[1].Name}); diff != "" {
		t.Errorf("Slowest mismatch (-want +got):\n%s", diff)
	}
	if got := len(Slowest(records, 10)); got != 4 {
		t.Errorf("Expected all 4 records, got %d", got)
	}

	want := FilterOptions{Suites: []string{"checkout", "login"}, ClassNames: []string{"Auth", "Catalog", "Payments"}}
	if diff := cmp.Diff(want, Options(records)); diff != "" {
		t.Errorf("Options mismatch (-want +got):\n%s", diff)
	}
}

func TestFailureRows(t *testing.T) {
	rows := FailureRows([]progress.Row{
		{
			Record:   testreport.Record{Suite: "checkout", TestCase: testreport.TestCase{Name: "pays", Status: testreport.StatusFailed}},
			Progress: progress.Item{ID: "checkout-pays", Status: progress.StatusCompleted, Notes: "flaky gateway", Assignee: "rin", ErrorMessage: "declined"},
			Tracked:  true,
		},
		{
			Record:   testreport.Record{Suite: "login", TestCase: testreport.TestCase{Name: "remembers", Status: testreport.StatusFailed}},
			Progress: progress.Item{ID: "login-remembers", Status: progress.StatusPending, ErrorMessage: "cookie missing"},
		},
	})

	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{name: "status is resolution state", filter: Filter{Status: string(progress.StatusCompleted)}, expected: []string{"pays"}},
		{name: "search notes", filter: Filter{Search: "gateway"}, expected: []string{"pays"}},
		{name: "search assignee", filter: Filter{Search: "RIN"}, expected: []string{"pays"}},
		{name: "search error", filter: Filter{Search: "cookie"}, expected: []string{"remembers"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, names(Apply(rows, tt.filter))); diff != "" {
				t.Errorf("Apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHelpers(t *testing.T) {
	if f, err := ParseField(" Time "); err != nil || f != FieldTime {
		t.Errorf("ParseField(Time) = %q, %v", f, err)
	}
	if _, err := ParseField("duration"); err == nil {
		t.Error("Expected error for unknown field")
	}
	if d, err := ParseDirection(""); err != nil || d != Ascending {
		t.Errorf("ParseDirection(\"\") = %q, %v", d, err)
	}
	if d, err := ParseDirection("DESC"); err != nil || d != Descending {
		t.Errorf("ParseDirection(DESC) = %q, %v", d, err)
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Error("Expected error for unknown direction")
	}
	if DefaultSort.Toggle().Direction != Descending {
		t.Error("Expected toggle to flip to descending")
	}
}

func TestTimings(t *testing.T) {
	var records []testreport.Record
	for i := 1; i <= 10; i++ {
		records = append(records, testreport.Record{Suite: "s", TestCase: testreport.TestCase{Name: fmt.Sprint(i), Time: float64(i)}})
	}

	want := Timing{Count: 10, Mean: 5.5, Median: 5.5, P90: 9, Max: 10}
	if diff := cmp.Diff(want, Timings(records)); diff != "" {
		t.Errorf("Timings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Timing{}, Timings(nil)); diff != "" {
		t.Errorf("Expected zero timing for no records (-want +got):\n%s", diff)
	}
}
