package testreport

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Every missing-attribute default lives here; the parser never inspects
// raw attributes itself.

const (
	defaultSuiteName      = "Unknown Suite"
	defaultFailureMessage = "Test failed"
)

func intAttr(n *Node, name string) int {
	raw, ok := n.Attr(name)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(leadingDigits(strings.TrimSpace(raw)))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// leadingDigits returns the optionally signed run of digits raw starts with,
// so "9.0" and "12 tests" read as 9 and 12
func leadingDigits(raw string) string {
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	start := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == start {
		return ""
	}
	return raw[:end]
}

func floatAttr(n *Node, name string) float64 {
	raw, ok := n.Attr(name)
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func stringAttr(n *Node, name, fallback string) string {
	raw, ok := n.Attr(name)
	if !ok || raw == "" {
		return fallback
	}
	return raw
}

func extractSuite(n *Node, now time.Time) Suite {
	suite := Suite{
		Name:      stringAttr(n, "name", defaultSuiteName),
		Tests:     intAttr(n, "tests"),
		Failures:  intAttr(n, "failures"),
		Errors:    intAttr(n, "errors"),
		Skipped:   intAttr(n, "skipped"),
		Time:      floatAttr(n, "time"),
		Timestamp: stringAttr(n, "timestamp", now.UTC().Format(time.RFC3339)),
		Hostname:  stringAttr(n, "hostname", ""),
		TestCases: make([]TestCase, 0),
	}

	for _, props := range n.Children("properties") {
		for _, p := range props.Children("property") {
			suite.Properties = append(suite.Properties, Property{
				Name:  stringAttr(p, "name", ""),
				Value: stringAttr(p, "value", p.Text),
			})
		}
	}

	for _, tc := range n.Children("testcase") {
		suite.TestCases = append(suite.TestCases, extractTestCase(tc))
	}
	return suite
}

func extractTestCase(n *Node) TestCase {
	tc := TestCase{
		Name:      stringAttr(n, "name", ""),
		ClassName: stringAttr(n, "classname", ""),
		Time:      floatAttr(n, "time"),
		Status:    StatusPassed,
	}

	if out := n.Child("system-out"); out != nil {
		tc.SystemOut = out.Text
	}
	if errOut := n.Child("system-err"); errOut != nil {
		tc.SystemErr = errOut.Text
	}

	// failure and error take precedence over skipped
	if problem := firstProblem(n); problem != nil {
		tc.Status = StatusFailed
		message, details := extractProblem(problem)
		tc.ErrorMessage = &message
		tc.FailureDetails = details
		return tc
	}

	if skipped := n.Child("skipped"); skipped != nil {
		tc.Status = StatusSkipped
		tc.SkipMessage = stringAttr(skipped, "message", skipped.Text)
	}
	return tc
}

func firstProblem(n *Node) *Node {
	if f := n.Child("failure"); f != nil {
		return f
	}
	return n.Child("error")
}

// extractProblem maps a failure or error element. Plain text elements carry
// only a message; elements with attributes also carry structured details.
func extractProblem(n *Node) (string, *FailureDetails) {
	if !n.HasAttrs() {
		if n.Text == "" {
			return defaultFailureMessage, nil
		}
		return n.Text, nil
	}

	message := stringAttr(n, "message", defaultFailureMessage)
	return message, &FailureDetails{
		Message:    message,
		Type:       stringAttr(n, "type", ""),
		StackTrace: n.Text,
	}
}
