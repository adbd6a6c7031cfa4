package testresults

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"junitdash/testreport"
)

func sampleReport(t *testing.T, n int) *testreport.Report {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<testsuites><testsuite name="api" tests="` + fmt.Sprint(n) + `" failures="1">`)
	for i := 0; i < n; i++ {
		if i == 0 {
			b.WriteString(`<testcase name="e2e/orders/list/admin" classname="orders" time="1.5"><failure message="boom">stack</failure></testcase>`)
			continue
		}
		fmt.Fprintf(&b, `<testcase name="test %03d" classname="api" time="0.1"/>`, i)
	}
	b.WriteString(`</testsuite></testsuites>`)

	report, err := testreport.NewParser().ParseString(b.String())
	if err != nil {
		t.Fatalf("Failed to parse sample report: %v", err)
	}
	return report
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew(t *testing.T) {
	component := New(10)

	if component == nil {
		t.Fatal("Expected component to be created")
	}
	if !strings.Contains(component.View(), "No test results") {
		t.Error("Expected placeholder view before a report is set")
	}
}

func TestSetReportPaginates(t *testing.T) {
	component := New(10)

	component.SetReport(sampleReport(t, 25))

	page := component.Page()
	if page.TotalItems != 25 || page.TotalPages != 3 || len(page.Items) != 10 {
		t.Errorf("Expected 10 of 25 rows on 3 pages, got %d of %d on %d", len(page.Items), page.TotalItems, page.TotalPages)
	}
	if !strings.Contains(component.View(), "Showing 1-10 of 25") {
		t.Error("Expected the footer to show the visible range")
	}
}

func TestPageKeysClamp(t *testing.T) {
	component := New(10)
	component.SetReport(sampleReport(t, 25))

	for i := 0; i < 5; i++ {
		component, _ = component.Update(tea.KeyMsg{Type: tea.KeyRight})
	}
	if got := component.Page().Number; got != 3 {
		t.Errorf("Expected to stop at page 3, got %d", got)
	}

	component, _ = component.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := component.Page().Number; got != 2 {
		t.Errorf("Expected page 2, got %d", got)
	}
}

func TestStatusFilter(t *testing.T) {
	component := New(10)
	component.SetReport(sampleReport(t, 5))

	component, _ = component.Update(keyRunes("f"))
	if got := component.State().Filter.Status; got != "passed" {
		t.Fatalf("Expected status filter passed, got %q", got)
	}
	component, _ = component.Update(keyRunes("f"))

	page := component.Page()
	if page.TotalItems != 1 || page.Items[0].Status != testreport.StatusFailed {
		t.Errorf("Expected only the failed test, got %d rows", page.TotalItems)
	}

	component, _ = component.Update(keyRunes("x"))
	if component.Page().TotalItems != 5 {
		t.Errorf("Expected clearing filters to show all rows, got %d", component.Page().TotalItems)
	}
}

func TestSearch(t *testing.T) {
	component := New(10)
	component.SetReport(sampleReport(t, 5))

	component, _ = component.Update(keyRunes("/"))
	if !component.Capturing() {
		t.Fatal("Expected search mode to capture keys")
	}
	for _, r := range "orders" {
		component, _ = component.Update(keyRunes(string(r)))
	}
	component, _ = component.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if component.Capturing() {
		t.Error("Expected enter to leave search mode")
	}
	if got := component.Page().TotalItems; got != 1 {
		t.Errorf("Expected 1 row matching 'orders', got %d", got)
	}
}

func TestDetailView(t *testing.T) {
	component := New(10)
	component.SetReport(sampleReport(t, 3))

	component, _ = component.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !component.Capturing() {
		t.Fatal("Expected enter to open the details")
	}
	if !strings.Contains(component.View(), "Test details") {
		t.Error("Expected the details view")
	}

	component, _ = component.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if component.Capturing() {
		t.Error("Expected esc to close the details")
	}
}

func TestDetails(t *testing.T) {
	report := sampleReport(t, 2)
	rec := report.FailingTests()[0]

	details := Details(rec)

	for _, want := range []string{"e2e/orders/list/admin", "Module: orders", "Page: list", "boom", "stack"} {
		if !strings.Contains(details, want) {
			t.Errorf("Expected details to contain %q, got:\n%s", want, details)
		}
	}
}
