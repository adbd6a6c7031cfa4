// Package server exposes a loaded report and its failure progress over a
// JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"junitdash/export"
	"junitdash/logging"
	"junitdash/progress"
	"junitdash/query"
	"junitdash/testreport"
)

// MaxUploadBytes bounds the size of an uploaded report
const MaxUploadBytes = 32 << 20

// Server holds one report and its tracker. Handlers run concurrently, so
// every access to report and tracker goes through mu.
type Server struct {
	log        *logrus.Entry
	parser     *testreport.Parser
	exporter   *export.Exporter
	exportOpts export.Options
	pageSize   int
	registry   *prometheus.Registry
	metrics    *metrics

	mu      sync.Mutex
	report  *testreport.Report
	tracker *progress.Tracker
}

// Option configures a Server
type Option func(*Server)

// WithLogger overrides the server's logger
func WithLogger(log *logrus.Entry) Option {
	return func(s *Server) { s.log = log }
}

// WithPageSize sets the page size of list endpoints
func WithPageSize(size int) Option {
	return func(s *Server) { s.pageSize = size }
}

// WithParser overrides the report parser
func WithParser(p *testreport.Parser) Option {
	return func(s *Server) { s.parser = p }
}

// WithExporter enables POST /api/export with defaults for unset options
func WithExporter(e *export.Exporter, defaults export.Options) Option {
	return func(s *Server) {
		s.exporter = e
		s.exportOpts = defaults
	}
}

// New creates a server tracking progress with tracker
func New(tracker *progress.Tracker, opts ...Option) *Server {
	s := &Server{
		log:      logging.New("server"),
		parser:   testreport.NewParser(),
		pageSize: query.DefaultPageSize,
		registry: prometheus.NewRegistry(),
		tracker:  tracker,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics = newMetrics(s.registry)
	return s
}

// LoadReport replaces the current report and initializes progress for it
func (s *Server) LoadReport(report *testreport.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(report)
}

func (s *Server) loadLocked(report *testreport.Report) error {
	if err := s.tracker.InitializeIfAbsent(report); err != nil {
		return err
	}
	s.report = report
	s.metrics.reportsLoaded.Inc()
	s.metrics.testsLoaded.WithLabelValues(string(testreport.StatusPassed)).Set(float64(report.Summary.Passed))
	s.metrics.testsLoaded.WithLabelValues(string(testreport.StatusFailed)).Set(float64(report.Summary.Failed))
	s.metrics.testsLoaded.WithLabelValues(string(testreport.StatusSkipped)).Set(float64(report.Summary.Skipped))
	s.observeStorage()
	return nil
}

func (s *Server) observeStorage() {
	if s.tracker.Dirty() {
		s.metrics.storageDirty.Set(1)
	} else {
		s.metrics.storageDirty.Set(0)
	}
}

// Handler returns the routed API
func (s *Server) Handler() http.Handler {
	router := &instrumentedRouter{Router: httprouter.New(), metrics: s.metrics}
	router.RedirectTrailingSlash = false
	router.GET("/healthz", s.loggingWrapper(s.healthHandler))
	router.POST("/api/report", s.loggingWrapper(s.uploadReportHandler))
	router.GET("/api/report/summary", s.loggingWrapper(s.summaryHandler))
	router.GET("/api/tests", s.loggingWrapper(s.testsHandler))
	router.GET("/api/failures", s.loggingWrapper(s.failuresHandler))
	router.PUT("/api/failures/*id", s.loggingWrapper(s.updateFailureHandler))
	router.POST("/api/failures/bulk", s.loggingWrapper(s.bulkUpdateHandler))
	router.DELETE("/api/progress", s.loggingWrapper(s.clearProgressHandler))
	router.POST("/api/export", s.loggingWrapper(s.exportHandler))
	router.GET("/api/export/status", s.loggingWrapper(s.exportStatusHandler))
	router.Router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.WithField("address", addr).Info("Serving dashboard API")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
