// Package commands wires the junitdash command line: the interactive
// dashboard, text summaries, PDF export, the HTTP API and failure progress
// maintenance.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"junitdash/config"
	"junitdash/export"
	"junitdash/filesystem"
	"junitdash/logging"
	"junitdash/progress"
	"junitdash/storage"
	"junitdash/testreport"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
}

// app holds what every subcommand shares once the root has set it up
type app struct {
	opts globalOptions

	cfg      config.Config
	store    storage.Store
	tracker  *progress.Tracker
	parser   *testreport.Parser
	files    *filesystem.Manager
	renderer export.Renderer
	log      *logrus.Entry
}

// Option customizes the command tree
type Option func(*app)

// WithStore replaces the configured storage backend
func WithStore(s storage.Store) Option {
	return func(a *app) { a.store = s }
}

// WithRenderer replaces the headless Chrome PDF renderer
func WithRenderer(r export.Renderer) Option {
	return func(a *app) { a.renderer = r }
}

// WithFileManager replaces the filesystem manager
func WithFileManager(m *filesystem.Manager) Option {
	return func(a *app) { a.files = m }
}

// NewRootCommand builds the junitdash command tree
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{
		parser: testreport.NewParser(),
		files:  filesystem.NewManager(),
		log:    logging.New("cli"),
	}
	for _, opt := range opts {
		opt(a)
	}

	cmd := &cobra.Command{
		Use:           "junitdash",
		Short:         "Explore JUnit XML test reports and track failure resolution",
		Long:          "junitdash parses JUnit XML reports into an interactive dashboard,\nexports them as PDF and tracks the manual resolution of failing tests.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.opts.configPath, "config", "", "Path to the config file (default ~/.junitdash/config.yml)")
	f.StringVar(&a.opts.envFile, "env-file", ".env", "Environment file loaded before reading the config")
	f.StringVar(&a.opts.logLevel, "log-level", "", "Level of logging details: panic, fatal, error, warn, info, debug or trace")
	f.StringVar(&a.opts.logFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(newViewCommand(a))
	cmd.AddCommand(newSummaryCommand(a))
	cmd.AddCommand(newExportCommand(a))
	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newProgressCommand(a))
	return cmd
}

// setup loads environment and config, initializes logging and opens the
// progress store
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadEnv(a.opts.envFile); err != nil {
		return err
	}
	cfg, err := config.NewConfigManager(a.opts.configPath).Load()
	if err != nil {
		return err
	}
	if a.opts.logLevel != "" {
		cfg.LogLevel = a.opts.logLevel
	}
	if a.opts.logFormat != "" {
		cfg.LogFormat = a.opts.logFormat
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
		return err
	}
	a.cfg = cfg

	if a.store == nil {
		store, err := storage.Open(cfg.StorageOptions())
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
		}
		a.store = store
	}
	a.tracker = progress.NewTracker(a.store)
	if a.renderer == nil {
		a.renderer = export.NewChromeRenderer(cfg.Export.ChromePath)
	}
	a.log.WithFields(logrus.Fields{
		"storage": cfg.Storage.Backend,
		"command": cmd.Name(),
	}).Debug("Initialized")
	return nil
}

func (a *app) close() error {
	if c, ok := a.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// loadReport parses path and prepares the failure progress for it
func (a *app) loadReport(path string) (*testreport.Report, error) {
	report, err := a.parser.ParseFile(path)
	if err != nil {
		a.log.WithError(err).WithField("path", path).Debug("Failed to parse report")
		return nil, fmt.Errorf("%s: %s", path, testreport.UserMessage(err))
	}
	if err := a.tracker.InitializeIfAbsent(report); err != nil {
		return nil, err
	}
	return report, nil
}

// syncError reports a store write that failed during the command
func (a *app) syncError() error {
	if !a.tracker.Dirty() {
		return nil
	}
	if err := a.tracker.Sync(); err != nil {
		return fmt.Errorf("progress was not saved: %w", err)
	}
	return nil
}

// Execute runs the command line until it finishes or the process is
// interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
