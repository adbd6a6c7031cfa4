// Package export renders a parsed report into a printable document and
// hands it to a Renderer that produces the final PDF.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"junitdash/logging"
	"junitdash/progress"
	"junitdash/testreport"
)

// Milestones are the progress values reported during a run, in order
var Milestones = []int{5, 25, 50, 75, 90, 100}

// Sections selects which parts of the report are included
type Sections struct {
	ExecutiveSummary   bool `json:"executiveSummary" yaml:"executive_summary"`
	Metrics            bool `json:"metrics" yaml:"metrics"`
	FailedTests        bool `json:"failedTests" yaml:"failed_tests"`
	AllTests           bool `json:"allTests" yaml:"all_tests"`
	ResolutionProgress bool `json:"resolutionProgress" yaml:"resolution_progress"`
}

// AllSections enables every section
func AllSections() Sections {
	return Sections{
		ExecutiveSummary:   true,
		Metrics:            true,
		FailedTests:        true,
		AllTests:           true,
		ResolutionProgress: true,
	}
}

// Any reports whether at least one section is enabled
func (s Sections) Any() bool {
	return s.ExecutiveSummary || s.Metrics || s.FailedTests || s.AllTests || s.ResolutionProgress
}

// SectionNames lists the identifiers accepted by ParseSections, in
// document order
var SectionNames = []string{"summary", "metrics", "failed", "tests", "progress"}

// ParseSections enables the named sections and nothing else
func ParseSections(names []string) (Sections, error) {
	var s Sections
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "summary":
			s.ExecutiveSummary = true
		case "metrics":
			s.Metrics = true
		case "failed":
			s.FailedTests = true
		case "tests":
			s.AllTests = true
		case "progress":
			s.ResolutionProgress = true
		default:
			return Sections{}, fmt.Errorf("unknown section %q, expected one of %s", name, strings.Join(SectionNames, ", "))
		}
	}
	return s, nil
}

// Options carries the free-text metadata and section selection of a run
type Options struct {
	Title    string   `json:"title" yaml:"title"`
	Author   string   `json:"author" yaml:"author"`
	Project  string   `json:"project" yaml:"project"`
	Sections Sections `json:"sections" yaml:"sections"`
}

// DefaultTitle is used when Options.Title is empty
const DefaultTitle = "Test Report"

// Input is everything a document is built from
type Input struct {
	Report   *testreport.Report
	Failures []progress.Row
	Progress progress.Summary
}

// Renderer turns an HTML document into PDF bytes
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// ProgressFunc receives milestone percentages. It is called with 0 when a
// run fails.
type ProgressFunc func(percent int)

// ExportError wraps any failure of a run
type ExportError struct {
	RunID string
	Stage string
	Cause error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s failed while %s: %v", e.RunID, e.Stage, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// ErrNoSections is returned when every section is disabled
var ErrNoSections = errors.New("no report sections selected")

// Exporter runs exports one after another and remembers the state of the
// latest run. A run cannot be cancelled once started other than through ctx.
type Exporter struct {
	renderer Renderer
	log      *logrus.Entry
	now      func() time.Time

	// run is held for the whole of Export
	run sync.Mutex

	mu       sync.Mutex
	running  bool
	progress int
	lastErr  error
	runID    string
}

// Option configures an Exporter
type Option func(*Exporter)

// WithClock overrides the generation timestamp source
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithLogger overrides the exporter's logger
func WithLogger(log *logrus.Entry) Option {
	return func(e *Exporter) { e.log = log }
}

// NewExporter creates an exporter backed by renderer
func NewExporter(renderer Renderer, opts ...Option) *Exporter {
	e := &Exporter{
		renderer: renderer,
		log:      logging.New("export"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status is a snapshot of the latest run
type Status struct {
	RunID    string `json:"runId"`
	Running  bool   `json:"running"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

// Status returns the state of the latest run
func (e *Exporter) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Status{RunID: e.runID, Running: e.running, Progress: e.progress}
	if e.lastErr != nil {
		s.Error = e.lastErr.Error()
	}
	return s
}

// Export builds the document for in and renders it. The error of a previous
// run is cleared when a new run starts; on failure the progress drops back
// to 0 and an *ExportError is returned, after which the run can be retried.
func (e *Exporter) Export(ctx context.Context, in Input, opts Options, onProgress ProgressFunc) ([]byte, error) {
	e.run.Lock()
	defer e.run.Unlock()

	runID := uuid.New().String()
	log := e.log.WithField("run", runID)

	e.mu.Lock()
	e.runID = runID
	e.running = true
	e.lastErr = nil
	e.progress = 0
	e.mu.Unlock()

	step := func(percent int) {
		e.mu.Lock()
		e.progress = percent
		e.mu.Unlock()
		if onProgress != nil {
			onProgress(percent)
		}
	}
	fail := func(stage string, err error) ([]byte, error) {
		exportErr := &ExportError{RunID: runID, Stage: stage, Cause: err}
		log.WithError(err).WithField("stage", stage).Error("Export failed")
		e.mu.Lock()
		e.running = false
		e.lastErr = exportErr
		e.mu.Unlock()
		step(0)
		return nil, exportErr
	}

	log.Info("Starting export")
	step(Milestones[0])

	if in.Report == nil {
		return fail("preparing", errors.New("no report loaded"))
	}
	if !opts.Sections.Any() {
		return fail("preparing", ErrNoSections)
	}
	doc := newDocument(in, opts, e.now())
	step(Milestones[1])

	html, err := renderHTML(doc)
	if err != nil {
		return fail("rendering html", err)
	}
	step(Milestones[2])

	if err := ctx.Err(); err != nil {
		return fail("rendering pdf", err)
	}
	step(Milestones[3])

	pdf, err := e.renderer.Render(ctx, html)
	if err != nil {
		return fail("rendering pdf", err)
	}
	step(Milestones[4])

	if len(pdf) == 0 {
		return fail("rendering pdf", errors.New("renderer returned an empty document"))
	}

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	step(Milestones[5])
	log.WithField("bytes", len(pdf)).Info("Export finished")
	return pdf, nil
}
