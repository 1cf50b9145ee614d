// Package metrics defines the prometheus instruments exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Universe scans
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantd_scans_total",
		Help: "Number of completed universe scans.",
	})

	ScanFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantd_scan_failures_total",
		Help: "Number of universe scans that failed entirely.",
	})

	TickersAnalyzed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantd_tickers_analyzed_total",
		Help: "Number of tickers analyzed across all scans.",
	})

	TickersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantd_tickers_failed_total",
		Help: "Number of tickers skipped due to data-engine errors.",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quantd_scan_duration_seconds",
		Help:    "Duration of a full universe scan.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	// Snapshot repository
	SnapshotsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantd_snapshots_saved_total",
		Help: "Number of scan snapshots saved, partitioned by storage backend.",
	}, []string{"backend"})

	SnapshotsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantd_snapshots_deleted_total",
		Help: "Number of snapshots deleted by retention logic.",
	})

	// Bootstrap loader
	LoaderRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantd_loader_runs_total",
		Help: "Number of dashboard script load attempts (including reloads).",
	})

	LoaderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quantd_loader_failures_total",
		Help: "Number of dashboard script loads that ended in the failed state.",
	})

	// Paper trading
	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quantd_paper_orders_total",
		Help: "Number of filled paper orders, partitioned by side.",
	}, []string{"side"})
)
