package testreport

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
}

func TestParser_Parse(t *testing.T) {
	xmlContent := `<?xml version="1.0" encoding="UTF-8"?>
<testsuite name="TestSuite" tests="3" skipped="0" failures="1" errors="0" timestamp="2024-03-20T10:00:00" hostname="localhost" time="1.234">
  <testcase name="TestPassing" classname="TestSuite" time="0.5"/>
  <testcase name="TestFailing" classname="TestSuite" time="0.3">
    <failure message="Expected true but got false" type="AssertionError">Stack trace here</failure>
  </testcase>
  <testcase name="TestAnotherPassing" classname="TestSuite" time="0.434"/>
</testsuite>`

	parser := NewParser()
	result, err := parser.Parse(strings.NewReader(xmlContent))
	if err != nil {
		t.Fatalf("Failed to parse XML: %v", err)
	}

	if len(result.Suites) != 1 {
		t.Fatalf("Expected 1 suite, got %d", len(result.Suites))
	}
	suite := result.Suites[0]

	// Verify test suite details
	if suite.Name != "TestSuite" {
		t.Errorf("Expected suite name 'TestSuite', got '%s'", suite.Name)
	}
	if suite.Tests != 3 {
		t.Errorf("Expected 3 tests, got %d", suite.Tests)
	}
	if suite.Failures != 1 {
		t.Errorf("Expected 1 failure, got %d", suite.Failures)
	}
	if suite.Time != 1.234 {
		t.Errorf("Expected time 1.234, got %f", suite.Time)
	}
	if suite.Timestamp != "2024-03-20T10:00:00" {
		t.Errorf("Expected timestamp to pass through, got '%s'", suite.Timestamp)
	}
	if suite.Hostname != "localhost" {
		t.Errorf("Expected hostname 'localhost', got '%s'", suite.Hostname)
	}

	// Verify test cases keep document order
	wantNames := []string{"TestPassing", "TestFailing", "TestAnotherPassing"}
	wantStatuses := []Status{StatusPassed, StatusFailed, StatusPassed}
	if len(suite.TestCases) != len(wantNames) {
		t.Fatalf("Expected %d test cases, got %d", len(wantNames), len(suite.TestCases))
	}
	for i, tc := range suite.TestCases {
		if tc.Name != wantNames[i] {
			t.Errorf("Test case %d: expected name '%s', got '%s'", i, wantNames[i], tc.Name)
		}
		if tc.Status != wantStatuses[i] {
			t.Errorf("Test case %d: expected status %s, got %s", i, wantStatuses[i], tc.Status)
		}
	}

	// Verify failing test details
	failingTest := suite.TestCases[1]
	if failingTest.ErrorMessage == nil || *failingTest.ErrorMessage != "Expected true but got false" {
		t.Errorf("Expected error message 'Expected true but got false', got %v", failingTest.ErrorMessage)
	}
	want := &FailureDetails{
		Message:    "Expected true but got false",
		Type:       "AssertionError",
		StackTrace: "Stack trace here",
	}
	if diff := cmp.Diff(want, failingTest.FailureDetails); diff != "" {
		t.Errorf("FailureDetails mismatch (-want +got):\n%s", diff)
	}

	wantSummary := Summary{Total: 3, Passed: 2, Failed: 1, Skipped: 0, Time: 1.234}
	if diff := cmp.Diff(wantSummary, result.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_Parse_Testsuites(t *testing.T) {
	xmlContent := `<testsuites>
  <testsuite name="api" tests="4" failures="1" errors="1" skipped="1" time="2.5">
    <testcase name="a" classname="api.A" time="1"/>
    <testcase name="b" classname="api.B"><failure>boom</failure></testcase>
    <testcase name="c" classname="api.C"><error message="panic" type="RuntimeError">trace</error></testcase>
    <testcase name="d" classname="api.D"><skipped message="not today"/></testcase>
  </testsuite>
  <testsuite name="ui" tests="2" failures="0" errors="0" skipped="0" time="0.5">
    <testcase name="e" time="0.25"/>
    <testcase name="f" time="0.25"/>
  </testsuite>
</testsuites>`

	result, err := NewParser().ParseString(xmlContent)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(result.Suites) != 2 {
		t.Fatalf("Expected 2 suites, got %d", len(result.Suites))
	}

	want := Summary{Total: 6, Passed: 3, Failed: 2, Skipped: 1, Time: 3.0}
	if diff := cmp.Diff(want, result.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}

	api := result.Suites[0]
	plain := api.TestCases[1]
	if plain.Message() != "boom" {
		t.Errorf("Expected plain text failure message 'boom', got '%s'", plain.Message())
	}
	if plain.FailureDetails != nil {
		t.Errorf("Expected nil failure details for plain text failure, got %+v", plain.FailureDetails)
	}

	errored := api.TestCases[2]
	if errored.Status != StatusFailed {
		t.Errorf("Expected error element to classify as failed, got %s", errored.Status)
	}
	if errored.FailureDetails == nil || errored.FailureDetails.Type != "RuntimeError" || errored.FailureDetails.StackTrace != "trace" {
		t.Errorf("Unexpected failure details for error element: %+v", errored.FailureDetails)
	}

	skipped := api.TestCases[3]
	if skipped.Status != StatusSkipped {
		t.Errorf("Expected skipped status, got %s", skipped.Status)
	}
	if skipped.ErrorMessage != nil {
		t.Errorf("Expected nil error message for skipped test, got %v", *skipped.ErrorMessage)
	}
	if skipped.SkipMessage != "not today" {
		t.Errorf("Expected skip message 'not today', got '%s'", skipped.SkipMessage)
	}

	if result.Suites[1].TestCases[0].ClassName != "" {
		t.Errorf("Expected empty classname when absent, got '%s'", result.Suites[1].TestCases[0].ClassName)
	}
}

func TestParser_Parse_SingleSuiteInWrapper(t *testing.T) {
	result, err := NewParser().ParseString(`<testsuites><testsuite name="only" tests="1"><testcase name="x"/></testsuite></testsuites>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Suites) != 1 || result.Suites[0].Name != "only" {
		t.Errorf("Expected a single suite named 'only', got %+v", result.Suites)
	}
}

func TestParser_Parse_Defaults(t *testing.T) {
	parser := NewParser().WithClock(fixedClock)
	result, err := parser.ParseString(`<testsuite tests="abc" failures="x2" time="fast">
  <testcase name="t1" time="-3"/>
  <testcase name="t2" time="oops"/>
</testsuite>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	suite := result.Suites[0]
	if suite.Name != "Unknown Suite" {
		t.Errorf("Expected default suite name, got '%s'", suite.Name)
	}
	if suite.Tests != 0 || suite.Failures != 0 || suite.Errors != 0 || suite.Skipped != 0 {
		t.Errorf("Expected unparseable counts to default to 0, got %+v", suite)
	}
	if suite.Time != 0 {
		t.Errorf("Expected unparseable time to default to 0, got %f", suite.Time)
	}
	if suite.Timestamp != "2024-03-20T10:00:00Z" {
		t.Errorf("Expected timestamp to default to parse time, got '%s'", suite.Timestamp)
	}
	for _, tc := range suite.TestCases {
		if tc.Time != 0 {
			t.Errorf("Test %s: expected time 0, got %f", tc.Name, tc.Time)
		}
	}
}

func TestParser_Parse_IntegerPrefixCounts(t *testing.T) {
	parser := NewParser().WithClock(fixedClock)
	result, err := parser.ParseString(`<testsuite name="s" tests="9.0" failures="4 failed" errors=" 1" skipped="-2">
  <testcase name="t1"/>
</testsuite>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	suite := result.Suites[0]
	if suite.Tests != 9 || suite.Failures != 4 || suite.Errors != 1 || suite.Skipped != 0 {
		t.Errorf("Expected counts 9/4/1/0, got %d/%d/%d/%d", suite.Tests, suite.Failures, suite.Errors, suite.Skipped)
	}
	if result.Summary.Total != 9 || result.Summary.Passed != 4 {
		t.Errorf("Expected total 9 and passed 4, got %+v", result.Summary)
	}
}

func TestParser_Parse_FailureBeforeSkipped(t *testing.T) {
	result, err := NewParser().ParseString(`<testsuite name="s" tests="1" failures="1">
  <testcase name="both"><skipped/><failure message="bad"/></testcase>
</testsuite>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := result.Suites[0].TestCases[0].Status; got != StatusFailed {
		t.Errorf("Expected failure to take precedence over skipped, got %s", got)
	}
}

func TestParser_Parse_FailureFallbackMessage(t *testing.T) {
	result, err := NewParser().ParseString(`<testsuite name="s" tests="2" failures="2">
  <testcase name="typed"><failure type="AssertionError">line 42</failure></testcase>
  <testcase name="empty"><failure/></testcase>
</testsuite>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	typed := result.Suites[0].TestCases[0]
	if typed.Message() != "Test failed" {
		t.Errorf("Expected fallback message, got '%s'", typed.Message())
	}
	if typed.FailureDetails == nil || typed.FailureDetails.StackTrace != "line 42" {
		t.Errorf("Expected stack trace from element text, got %+v", typed.FailureDetails)
	}

	empty := result.Suites[0].TestCases[1]
	if empty.Status != StatusFailed || empty.Message() != "Test failed" {
		t.Errorf("Expected empty failure to be failed with fallback message, got %s / '%s'", empty.Status, empty.Message())
	}
}

// The summary trusts suite attributes even when they disagree with the cases.
func TestParser_Parse_TrustsSelfReportedCounts(t *testing.T) {
	result, err := NewParser().ParseString(`<testsuite name="liar" tests="1" failures="3" skipped="1">
  <testcase name="ok"/>
</testsuite>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if result.Summary.Failed != 3 {
		t.Errorf("Expected failed=3 from attributes, got %d", result.Summary.Failed)
	}
	if result.Summary.Passed != -3 {
		t.Errorf("Expected passed=-3 for inconsistent counts, got %d", result.Summary.Passed)
	}
}

func TestParser_Parse_NineTestsFourFailures(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<testsuite name="checkout" tests="9" failures="4" errors="0" skipped="0" time="9">`)
	for i := 0; i < 9; i++ {
		if i < 4 {
			b.WriteString(`<testcase name="fail"><failure message="x"/></testcase>`)
		} else {
			b.WriteString(`<testcase name="pass"/>`)
		}
	}
	b.WriteString(`</testsuite>`)

	result, err := NewParser().ParseString(b.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := Summary{Total: 9, Passed: 5, Failed: 4, Skipped: 0, Time: 9}
	if diff := cmp.Diff(want, result.Summary); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_Parse_SuiteOrderDoesNotAffectSummary(t *testing.T) {
	a := `<testsuite name="a" tests="5" failures="1" errors="1" skipped="2" time="1.5"/>`
	b := `<testsuite name="b" tests="7" failures="0" errors="2" skipped="0" time="2.25"/>`
	c := `<testsuite name="c" tests="3" failures="3" errors="0" skipped="0" time="0.25"/>`

	parser := NewParser()
	first, err := parser.ParseString("<testsuites>" + a + b + c + "</testsuites>")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, err := parser.ParseString("<testsuites>" + c + a + b + "</testsuites>")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if diff := cmp.Diff(first.Summary, second.Summary); diff != "" {
		t.Errorf("Summary depends on suite order (-first +second):\n%s", diff)
	}
	if first.Summary.Total != 15 || first.Summary.Failed != 7 || first.Summary.Skipped != 2 || first.Summary.Passed != 6 {
		t.Errorf("Unexpected summary: %+v", first.Summary)
	}
}

func TestParser_Parse_Reparse(t *testing.T) {
	doc := `<testsuites><testsuite name="s" tests="1"><testcase name="t"/></testsuite></testsuites>`
	parser := NewParser()

	before := time.Now()
	first, err := parser.ParseString(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, err := parser.ParseString(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ignoreTimestamp := cmp.FilterPath(func(p cmp.Path) bool {
		return p.Last().String() == ".Timestamp"
	}, cmp.Ignore())
	if diff := cmp.Diff(first, second, ignoreTimestamp); diff != "" {
		t.Errorf("Re-parse produced different reports (-first +second):\n%s", diff)
	}

	ts, err := time.Parse(time.RFC3339, first.Suites[0].Timestamp)
	if err != nil {
		t.Fatalf("Defaulted timestamp is not RFC 3339: %v", err)
	}
	if ts.Before(before.Add(-time.Second)) || ts.After(time.Now().Add(time.Second)) {
		t.Errorf("Defaulted timestamp %s is not close to now", ts)
	}
}

func TestParser_Parse_Properties(t *testing.T) {
	result, err := NewParser().ParseString(`<testsuite name="s" tests="1">
  <properties><property name="go.version" value="go1.24"/></properties>
  <testcase name="t"><system-out>hello</system-out><system-err>oops</system-err></testcase>
</testsuite>`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	suite := result.Suites[0]
	if diff := cmp.Diff([]Property{{Name: "go.version", Value: "go1.24"}}, suite.Properties); diff != "" {
		t.Errorf("Properties mismatch (-want +got):\n%s", diff)
	}
	if suite.TestCases[0].SystemOut != "hello" || suite.TestCases[0].SystemErr != "oops" {
		t.Errorf("Expected captured output, got %+v", suite.TestCases[0])
	}
}

func TestParser_Parse_InvalidXML(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain text", "invalid xml"},
		{"empty", ""},
		{"unclosed element", "<testsuite><testcase>"},
		{"mismatched tags", "<testsuite></testcase>"},
		{"two roots", "<testsuite/><testsuite/>"},
		{"trailing text", "<testsuite/> trailing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseString(tt.input)
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Errorf("Expected MalformedInputError, got %v", err)
			}
			if UserMessage(err) != InvalidFileMessage {
				t.Errorf("Expected user message %q, got %q", InvalidFileMessage, UserMessage(err))
			}
		})
	}
}

func TestParser_Parse_UnsupportedRoot(t *testing.T) {
	_, err := NewParser().ParseString(`<?xml version="1.0"?><results><test name="x"/></results>`)
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Expected UnsupportedFormatError, got %v", err)
	}
	if unsupported.Root != "results" {
		t.Errorf("Expected root 'results', got '%s'", unsupported.Root)
	}
	if !IsInvalidInput(err) {
		t.Error("Expected IsInvalidInput to be true")
	}
}

func TestParser_ParseFile_Missing(t *testing.T) {
	_, err := NewParser().ParseFile("/nonexistent/report.xml")
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
	if IsInvalidInput(err) {
		t.Error("Expected a read error, not an invalid input error")
	}
}

func TestNode_Children(t *testing.T) {
	root, err := parseTree(strings.NewReader(`<a x="1"><b/><c/><b/></a>`))
	if err != nil {
		t.Fatalf("parseTree failed: %v", err)
	}
	if got := len(root.Children("b")); got != 2 {
		t.Errorf("Expected 2 <b> children, got %d", got)
	}
	if got := len(root.Children("c")); got != 1 {
		t.Errorf("Expected 1 <c> child as a sequence, got %d", got)
	}
	if root.Children("missing") != nil {
		t.Error("Expected nil sequence for missing tag")
	}
	if v, ok := root.Attr("x"); !ok || v != "1" {
		t.Errorf("Expected attribute x=1, got %q (present=%v)", v, ok)
	}
}
