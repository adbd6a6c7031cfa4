// Package tui is the interactive terminal dashboard: an overview of a
// parsed report, the searchable test list and the failure progress board.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"junitdash/logging"
	"junitdash/progress"
	"junitdash/query"
	"junitdash/testreport"
	"junitdash/tui/components/footer"
	"junitdash/tui/components/menu"
	"junitdash/tui/failures"
	"junitdash/tui/keys"
	"junitdash/tui/styles"
	"junitdash/tui/testresults"
)

// --- State Machine ---
type tuiState int

const (
	stateLoading tuiState = iota
	stateError
	stateReady
)

type tab int

const (
	tabOverview tab = iota
	tabTests
	tabFailures
)

var tabNames = []string{"Overview", "Tests", "Failures"}

// --- Model ---
type model struct {
	state tuiState
	path  string

	// Components
	tabs     *menu.Component
	tests    *testresults.Component
	failures *failures.Component
	footer   *footer.Component
	spinner  spinner.Model

	// Dependencies
	parser  *testreport.Parser
	tracker *progress.Tracker
	keys    *keys.Handler
	log     *logrus.Entry

	report   *testreport.Report
	errorMsg string
	warning  string
}

// Option configures the dashboard
type Option func(*model)

// WithPageSize sets the rows per page of the list views
func WithPageSize(size int) Option {
	return func(m *model) {
		m.tests = testresults.New(size)
		m.failures = failures.New(m.tracker, size)
	}
}

// WithParser replaces the report parser
func WithParser(p *testreport.Parser) Option {
	return func(m *model) { m.parser = p }
}

// InitialModel creates the dashboard for the report at path
func InitialModel(path string, tracker *progress.Tracker, opts ...Option) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	m := model{
		state:    stateLoading,
		path:     path,
		tabs:     menu.New(tabNames),
		tests:    testresults.New(query.DefaultPageSize),
		failures: failures.New(tracker, query.DefaultPageSize),
		footer:   footer.New(),
		spinner:  sp,
		parser:   testreport.NewParser(),
		tracker:  tracker,
		keys:     keys.NewHandler(),
		log:      logging.New("tui"),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Run starts the dashboard and blocks until the user quits
func Run(path string, tracker *progress.Tracker, opts ...Option) error {
	p := tea.NewProgram(InitialModel(path, tracker, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type reportLoadedMsg struct {
	report  *testreport.Report
	warning string
}

type loadErrorMsg struct {
	message string
	err     error
}

// loadReportCmd parses the file and prepares the failure progress for it
func loadReportCmd(parser *testreport.Parser, tracker *progress.Tracker, path string) tea.Cmd {
	return func() tea.Msg {
		report, err := parser.ParseFile(path)
		if err != nil {
			return loadErrorMsg{message: testreport.UserMessage(err), err: err}
		}
		msg := reportLoadedMsg{report: report}
		if err := tracker.InitializeIfAbsent(report); err != nil {
			msg.warning = "Failure progress could not be loaded: " + err.Error()
		}
		return msg
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadReportCmd(m.parser, m.tracker, m.path))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.tests, cmd = m.tests.Update(msg)
		cmds = append(cmds, cmd)
		m.failures, cmd = m.failures.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case reportLoadedMsg:
		m.state = stateReady
		m.report = msg.report
		m.warning = msg.warning
		m.tests.SetReport(msg.report)
		m.failures.SetReport(msg.report)
		m.log.WithFields(logrus.Fields{
			"path":  m.path,
			"tests": msg.report.Summary.Total,
		}).Debug("Report loaded")
		return m, nil

	case loadErrorMsg:
		m.state = stateError
		m.errorMsg = msg.message
		m.log.WithError(msg.err).WithField("path", m.path).Warn("Failed to load report")
		return m, nil

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case failures.ProgressChangedMsg:
		m.warning = ""
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m model) capturing() bool {
	switch tab(m.tabs.GetSelectedIndex()) {
	case tabTests:
		return m.tests.Capturing()
	case tabFailures:
		return m.failures.Capturing()
	}
	return false
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.state != stateReady {
		if m.keys.IsQuit(msg) || m.keys.IsBack(msg) {
			return m, tea.Quit
		}
		return m, nil
	}

	if !m.capturing() {
		switch {
		case m.keys.IsQuit(msg):
			return m, tea.Quit
		case m.keys.IsTab(msg):
			m.tabs.Next()
			m.refreshTab()
			return m, nil
		case m.keys.IsPrevTab(msg):
			m.tabs.Prev()
			m.refreshTab()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch tab(m.tabs.GetSelectedIndex()) {
	case tabTests:
		m.tests, cmd = m.tests.Update(msg)
	case tabFailures:
		m.failures, cmd = m.failures.Update(msg)
	}
	return m, cmd
}

// refreshTab rebuilds the failure rows when switching views
func (m model) refreshTab() {
	if tab(m.tabs.GetSelectedIndex()) == tabFailures {
		m.failures.Refresh()
	}
}

func (m model) View() string {
	switch m.state {
	case stateLoading:
		return styles.BaseStyle.Render(fmt.Sprintf("%s Loading %s", m.spinner.View(), m.path))
	case stateError:
		return styles.BaseStyle.Render(
			styles.ErrorStyle.Render(m.errorMsg) + "\n\n" +
				m.footer.View("", "", m.keys.Keys().Quit))
	}

	var body string
	switch tab(m.tabs.GetSelectedIndex()) {
	case tabOverview:
		body = renderOverview(m.report, m.tracker.Summary()) + "\n\n" +
			m.footer.View("", m.warning, m.keys.Keys().Tab, m.keys.Keys().PrevTab, m.keys.Keys().Quit)
	case tabTests:
		body = m.tests.View()
	case tabFailures:
		body = m.failures.View()
	}

	title := styles.HeaderStyle.Render("JUnit Dashboard") + "  " + styles.HelpStyle.Render(m.path)
	return styles.BaseStyle.Render(title + "\n" + m.tabs.View() + "\n\n" + body)
}
