package testreport

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Parser handles parsing of test report XML files
type Parser struct {
	now func() time.Time
}

// NewParser creates a new test report parser
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// WithClock returns a copy of the parser that uses now for defaulted timestamps
func (p *Parser) WithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse reads and parses a test report from the given reader
func (p *Parser) Parse(reader io.Reader) (*Report, error) {
	root, err := parseTree(reader)
	if err != nil {
		return nil, err
	}

	suiteNodes, err := locateSuites(root)
	if err != nil {
		return nil, err
	}

	now := p.now()
	report := &Report{Suites: make([]Suite, 0, len(suiteNodes))}
	for _, n := range suiteNodes {
		suite := extractSuite(n, now)
		report.Suites = append(report.Suites, suite)

		report.Summary.Total += suite.Tests
		report.Summary.Failed += suite.Failures + suite.Errors
		report.Summary.Skipped += suite.Skipped
		report.Summary.Time += suite.Time
	}
	report.Summary.Passed = report.Summary.Total - report.Summary.Failed - report.Summary.Skipped

	return report, nil
}

// ParseString parses a report held in memory
func (p *Parser) ParseString(raw string) (*Report, error) {
	return p.Parse(strings.NewReader(raw))
}

// ParseFile parses a test report from a file
func (p *Parser) ParseFile(filename string) (*Report, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(bytes.NewReader(file))
}

func locateSuites(root *Node) ([]*Node, error) {
	switch root.Name {
	case "testsuites":
		return root.Children("testsuite"), nil
	case "testsuite":
		return []*Node{root}, nil
	default:
		return nil, &UnsupportedFormatError{Root: root.Name}
	}
}
