// Package testreport parses JUnit-style XML reports into a normalized model.
//
// Suite counts (tests, failures, errors, skipped) are copied from the
// document's own attributes and the report Summary is the sum of those
// attributes. Neither is recomputed from the statuses of the individual
// test cases. Documents whose self-reported counts disagree with their
// testcase children keep that disagreement, including a negative
// Summary.Passed. Do not change this into recomputation: consumers rely on
// the dashboard showing exactly what the test runner reported.
package testreport

// Status is the derived outcome of a single test case
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// FailureDetails holds the structured part of a failure or error element
type FailureDetails struct {
	Message    string `json:"message"`
	Type       string `json:"type"`
	StackTrace string `json:"stackTrace"`
}

// TestCase represents one executed test
type TestCase struct {
	Name           string          `json:"name"`
	ClassName      string          `json:"classname"`
	Time           float64         `json:"time"`
	Status         Status          `json:"status"`
	ErrorMessage   *string         `json:"errorMessage"`
	FailureDetails *FailureDetails `json:"failureDetails"`
	SkipMessage    string          `json:"skipMessage,omitempty"`
	SystemOut      string          `json:"systemOut,omitempty"`
	SystemErr      string          `json:"systemErr,omitempty"`
}

// Message returns the error message or an empty string
func (tc TestCase) Message() string {
	if tc.ErrorMessage == nil {
		return ""
	}
	return *tc.ErrorMessage
}

// Property is a single name/value pair from a suite's properties block
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Suite represents one testsuite element with its self-reported counts
type Suite struct {
	Name       string     `json:"name"`
	Tests      int        `json:"tests"`
	Failures   int        `json:"failures"`
	Errors     int        `json:"errors"`
	Skipped    int        `json:"skipped"`
	Time       float64    `json:"time"`
	Timestamp  string     `json:"timestamp"`
	Hostname   string     `json:"hostname,omitempty"`
	Properties []Property `json:"properties,omitempty"`
	TestCases  []TestCase `json:"testcases"`
}

// Summary aggregates the suite counts of a report
type Summary struct {
	Total   int     `json:"total"`
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Skipped int     `json:"skipped"`
	Time    float64 `json:"time"`
}

// Report is the full result of parsing one document
type Report struct {
	Summary Summary `json:"summary"`
	Suites  []Suite `json:"suites"`
}

// Records flattens the report into test cases paired with their suite name,
// in document order
func (r *Report) Records() []Record {
	var out []Record
	if r == nil {
		return out
	}
	for _, suite := range r.Suites {
		for _, tc := range suite.TestCases {
			out = append(out, Record{Suite: suite.Name, TestCase: tc})
		}
	}
	return out
}

// FailingTests returns the failed records in document order
func (r *Report) FailingTests() []Record {
	var out []Record
	for _, rec := range r.Records() {
		if rec.Status == StatusFailed {
			out = append(out, rec)
		}
	}
	return out
}

// Record is a test case together with the name of the suite that owns it
type Record struct {
	Suite string `json:"suite"`
	TestCase
}
