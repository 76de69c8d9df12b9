package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Crawl engine metrics
var (
	CrawlRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tree_crawler_running",
			Help: "Whether a crawl is currently running (1 = running, 0 = idle)",
		},
	)

	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tree_crawler_workers_active",
			Help: "Number of crawl workers currently running",
		},
	)

	WorkersPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tree_crawler_workers_paused",
			Help: "Number of crawl workers currently paused",
		},
	)

	UnitsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tree_crawler_units_processed_total",
			Help: "Total number of work units processed to completion",
		},
	)

	UnitsAborted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tree_crawler_units_aborted_total",
			Help: "Total number of work units aborted, by stage (extract, hash, insert)",
		},
		[]string{"stage"},
	)

	FilesInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tree_crawler_files_inserted_total",
			Help: "Total number of file records inserted",
		},
	)

	ValidationSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tree_crawler_validation_skips_total",
			Help: "Total number of extractor results skipped for missing mandatory fields",
		},
	)

	RecordsMarkedDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tree_crawler_records_marked_deleted_total",
			Help: "Total number of records soft-delete marked by deletion detection",
		},
	)

	DeleteMarkFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tree_crawler_delete_mark_failures_total",
			Help: "Total number of soft-delete statements that failed and were rolled back",
		},
	)

	ProtocolFaults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tree_crawler_protocol_faults_total",
			Help: "Total number of unrecognized commands that terminated a worker",
		},
	)
)

// Extractor metrics
var (
	ExtractorInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tree_crawler_extractor_invocations_total",
			Help: "Total number of extractor subprocess invocations",
		},
		[]string{"status"},
	)

	ExtractorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tree_crawler_extractor_duration_seconds",
			Help:    "Extractor invocation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tree_crawler_db_queries_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tree_crawler_db_query_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tree_crawler_db_batch_size",
			Help:    "Number of records per batched insert",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tree_crawler_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)
