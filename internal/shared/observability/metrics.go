package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	FilesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exportlint_files_scanned_total",
		Help: "Total number of source files handed to the detector.",
	})

	ParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exportlint_parse_failures_total",
		Help: "Total number of files whose parse failed and was absorbed.",
	})

	ExportsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exportlint_exports_detected_total",
		Help: "Total number of export records extracted.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "exportlint_analysis_seconds",
		Help:    "Time spent in each analysis phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	IssuesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exportlint_issues_detected_total",
		Help: "Total number of consistency issues, by issue type.",
	}, []string{"type"})

	FixOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "exportlint_fix_operations_total",
		Help: "Total number of fix operations, by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "exportlint_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
