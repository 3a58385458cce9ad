package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "rfq_worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rfq_worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	VendorsPerRequest = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rfq_scoring_vendors_per_request",
			Help:    "Number of vendors ranked per scoring request",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
	)

	MissingQuoteLines = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rfq_scoring_missing_quote_lines_total",
			Help: "RFQ lines not covered by a vendor quote",
		},
	)

	HistoryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_vendor_history_cache_lookups_total",
			Help: "Vendor history cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	FXRatesFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rfq_fx_rates_fallback_total",
			Help: "Times the static currency table was used because Redis was unavailable",
		},
	)

	RankingsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rfq_rankings_published_total",
			Help: "Ranking documents indexed by result",
		},
		[]string{"result"},
	)
)
