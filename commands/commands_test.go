package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"junitdash/export"
	"junitdash/progress"
	"junitdash/storage"
	"junitdash/testreport"
)

const reportXML = `<testsuites>
  <testsuite name="api" tests="4" failures="2" skipped="1" time="3.5">
    <testcase name="creates order" classname="orders" time="1"/>
    <testcase name="refund fails" classname="orders" time="2"><failure message="expected 200">trace</failure></testcase>
    <testcase name="login fails" classname="auth" time="0.5"><error message="timeout"/></testcase>
    <testcase name="legacy" classname="auth"><skipped/></testcase>
  </testsuite>
</testsuites>`

type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) Render(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

type harness struct {
	t        *testing.T
	dir      string
	report   string
	store    *storage.MemoryStore
	renderer *fakeRenderer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	report := filepath.Join(dir, "report.xml")
	require.NoError(t, os.WriteFile(report, []byte(reportXML), 0o644))
	return &harness{
		t:        t,
		dir:      dir,
		report:   report,
		store:    storage.NewMemoryStore(),
		renderer: &fakeRenderer{},
	}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	cmd := NewRootCommand(WithStore(h.store), WithRenderer(h.renderer))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(h.dir, "config.yml"),
		"--env-file", filepath.Join(h.dir, ".env"),
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func (h *harness) item(id string) (progress.Item, bool) {
	tracker := progress.NewTracker(h.store)
	require.NoError(h.t, tracker.InitializeIfAbsent(&testreport.Report{}))
	return tracker.Item(id)
}

func TestSummaryText(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "summary", h.report)

	require.NoError(t, err)
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "api")
	assert.NotContains(t, out, "refund fails")
}

func TestSummaryWithFilteredTests(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "summary", h.report, "--tests", "--status", "failed", "--sort", "time", "--desc")

	require.NoError(t, err)
	assert.Contains(t, out, "refund fails")
	assert.Contains(t, out, "login fails")
	assert.NotContains(t, out, "creates order")
	assert.Less(t, strings.Index(out, "refund fails"), strings.Index(out, "login fails"))
	assert.Contains(t, out, "Showing 1-2 of 2 (page 1/1)")
}

func TestSummaryJSON(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "summary", h.report, "-o", "json")
	require.NoError(t, err)

	var decoded struct {
		Summary      testreport.Summary `json:"summary"`
		SuccessRate  string             `json:"successRate"`
		Distribution []map[string]any   `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, testreport.Summary{Total: 4, Passed: 1, Failed: 2, Skipped: 1, Time: 3.5}, decoded.Summary)
	assert.Equal(t, "25.0%", decoded.SuccessRate)
	assert.Len(t, decoded.Distribution, 3)
}

func TestSummaryErrors(t *testing.T) {
	h := newHarness(t)
	invalid := filepath.Join(h.dir, "invalid.xml")
	require.NoError(t, os.WriteFile(invalid, []byte("<html/>"), 0o644))

	_, _, err := h.run("", "summary", invalid)
	assert.ErrorContains(t, err, testreport.InvalidFileMessage)

	_, _, err = h.run("", "summary", h.report, "-o", "yaml")
	assert.ErrorContains(t, err, `unknown output format "yaml"`)

	_, _, err = h.run("", "summary", h.report, "--tests", "--sort", "owner")
	assert.Error(t, err)

	_, _, err = h.run("", "summary")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	output := filepath.Join(h.dir, "out", "report.pdf")

	out, errOut, err := h.run("", "export", h.report, "-o", output, "--title", "Nightly <run>", "--sections", "summary,failed")

	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+output)
	assert.Contains(t, errOut, "Exporting... 5%")
	assert.Contains(t, errOut, "Exporting... 100%")
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.Contains(t, h.renderer.html, "Nightly &lt;run&gt;")
	assert.Contains(t, h.renderer.html, "refund fails")

	_, ok := h.item(progress.ItemID("api", "refund fails"))
	assert.True(t, ok, "export initializes the failure progress")
}

func TestExportFailure(t *testing.T) {
	h := newHarness(t)
	h.renderer.err = errors.New("chrome crashed")
	output := filepath.Join(h.dir, "report.pdf")

	_, _, err := h.run("", "export", h.report, "-o", output)

	var exportErr *export.ExportError
	require.ErrorAs(t, err, &exportErr)
	assert.NoFileExists(t, output)

	_, _, err = h.run("", "export", h.report, "-o", output, "--sections", "charts")
	assert.ErrorContains(t, err, "unknown section")
}

func TestProgressWorkflow(t *testing.T) {
	h := newHarness(t)
	refund := progress.ItemID("api", "refund fails")
	login := progress.ItemID("api", "login fails")

	out, _, err := h.run("", "progress", "list", h.report)
	require.NoError(t, err)
	assert.Contains(t, out, refund)
	assert.Contains(t, out, "2 tracked: 2 pending")

	out, _, err = h.run("", "progress", "mark", refund, "in_progress", "--notes", "flaky backend", "--assignee", "sam")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked "+refund+" as in_progress")

	_, _, err = h.run("", "progress", "mark", refund, "completed")
	require.NoError(t, err)
	item, ok := h.item(refund)
	require.True(t, ok)
	assert.Equal(t, progress.StatusCompleted, item.Status)
	assert.Equal(t, "flaky backend", item.Notes)
	assert.Equal(t, "sam", item.Assignee)

	out, _, err = h.run("", "progress", "bulk", "in_progress", login, "api-unknown")
	require.NoError(t, err)
	assert.Contains(t, out, "Marked 1 of 2 as in_progress")

	out, _, err = h.run("", "progress", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2 tracked: 0 pending, 1 in progress, 1 completed (50.0%)")
}

func TestProgressMarkErrors(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("", "progress", "mark", "api-refund fails", "done", "-f", h.report)
	assert.ErrorIs(t, err, progress.ErrInvalidStatus)

	_, _, err = h.run("", "progress", "mark", "api-nope", "completed", "-f", h.report)
	assert.ErrorIs(t, err, progress.ErrUnknownItem)
}

func TestProgressReset(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "progress", "list", h.report)
	require.NoError(t, err)

	out, _, err := h.run("n\n", "progress", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")
	assert.Equal(t, 1, h.store.Len())

	require.NoError(t, h.store.Set("other:key", "kept"))
	out, _, err = h.run("y\n", "progress", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Failure progress cleared")
	_, found, _ := h.store.Get(progress.StorageKey)
	assert.False(t, found)
	assert.Equal(t, 1, h.store.Len())
}

func TestUnknownStorageBackend(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JUNITDASH_STORAGE", "floppy")
	cmd := NewRootCommand(WithRenderer(&fakeRenderer{}))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "config.yml"), "progress", "list"})

	err := cmd.Execute()

	assert.ErrorContains(t, err, `unknown storage backend "floppy"`)
}

func TestInvalidLogLevel(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("", "--log-level", "loud", "progress", "list")

	assert.ErrorContains(t, err, "cannot parse log-level")
}
