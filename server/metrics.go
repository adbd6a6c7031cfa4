package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requestDuration *prometheus.HistogramVec
	reportsLoaded   prometheus.Counter
	parseFailures   prometheus.Counter
	testsLoaded     *prometheus.GaugeVec
	progressUpdates *prometheus.CounterVec
	storageDirty    prometheus.Gauge
	exports         *prometheus.CounterVec
}

// newMetrics registers the server's collectors on reg. Each server owns its
// registry so several servers can live in one process.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "junitdash_http_request_duration_seconds",
			Help: "Duration of HTTP requests by route and status.",
		}, []string{"method", "path", "status"}),
		reportsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "junitdash_reports_loaded_total",
			Help: "Reports parsed successfully.",
		}),
		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "junitdash_report_parse_failures_total",
			Help: "Uploads rejected as invalid JUnit XML.",
		}),
		testsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "junitdash_report_tests",
			Help: "Tests in the loaded report by status.",
		}, []string{"status"}),
		progressUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "junitdash_progress_updates_total",
			Help: "Failure progress items updated by target status.",
		}, []string{"status"}),
		storageDirty: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "junitdash_progress_storage_dirty",
			Help: "1 when the last progress write failed and the store is behind memory.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "junitdash_exports_total",
			Help: "PDF exports by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.requestDuration,
		m.reportsLoaded,
		m.parseFailures,
		m.testsLoaded,
		m.progressUpdates,
		m.storageDirty,
		m.exports,
	)
	return m
}
