// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Harvest metrics
	SignaturesFetched prometheus.Counter
	TradesIngested    prometheus.Counter
	TradesSkipped     *prometheus.CounterVec
	EquityPointsAdded prometheus.Counter
	IngestionErrors   *prometheus.CounterVec

	// Latency metrics
	RPCCallLatency  *prometheus.HistogramVec
	HarvestDuration prometheus.Histogram

	// Profiling metrics
	ProfilesBuilt   *prometheus.CounterVec
	ProfileDuration prometheus.Histogram
	MintsAnalyzed   prometheus.Counter
	ReportsRendered *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulHarvest prometheus.Gauge
	LastSuccessfulProfile prometheus.Gauge
	WatchedWallets        prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_behavior_lab"
	}

	return &Metrics{
		// Harvest metrics
		SignaturesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "signatures_fetched_total",
			Help:      "Total number of transaction signatures fetched",
		}),
		TradesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "trades_ingested_total",
			Help:      "Total number of trades stored",
		}),
		TradesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "trades_skipped_total",
			Help:      "Total number of trades skipped by reason",
		}, []string{"reason"}),
		EquityPointsAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "equity_points_added_total",
			Help:      "Total number of new equity points stored",
		}),
		IngestionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by stage",
		}, []string{"stage"}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		HarvestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "harvest",
			Name:      "duration_seconds",
			Help:      "Wallet harvest duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		// Profiling metrics
		ProfilesBuilt: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "builds_total",
			Help:      "Total number of profile builds by status",
		}, []string{"status"}),
		ProfileDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "duration_seconds",
			Help:      "Profile build duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		MintsAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "mints_analyzed_total",
			Help:      "Total number of mints run through feature extraction",
		}),
		ReportsRendered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "profile",
			Name:      "reports_rendered_total",
			Help:      "Total number of reports rendered by format",
		}, []string{"format"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulHarvest: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_harvest_timestamp",
			Help:      "Unix timestamp of last successful harvest",
		}),
		LastSuccessfulProfile: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_profile_timestamp",
			Help:      "Unix timestamp of last successful profile build",
		}),
		WatchedWallets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "watched_wallets",
			Help:      "Number of wallets with a live log subscription",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSignaturesFetched adds to the signatures fetched counter.
func RecordSignaturesFetched(n int) {
	DefaultMetrics.SignaturesFetched.Add(float64(n))
}

// RecordTradeIngested increments the trades ingested counter.
func RecordTradeIngested() {
	DefaultMetrics.TradesIngested.Inc()
}

// RecordTradeSkipped records a skipped trade with its reason.
func RecordTradeSkipped(reason string) {
	DefaultMetrics.TradesSkipped.WithLabelValues(reason).Inc()
}

// RecordEquityPointsAdded adds to the equity points counter.
func RecordEquityPointsAdded(n int) {
	DefaultMetrics.EquityPointsAdded.Add(float64(n))
}

// RecordIngestionError records an ingestion error for a stage.
func RecordIngestionError(stage string) {
	DefaultMetrics.IngestionErrors.WithLabelValues(stage).Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordProfileBuild records a profile build with its outcome.
func RecordProfileBuild(status string, durationSeconds float64) {
	DefaultMetrics.ProfilesBuilt.WithLabelValues(status).Inc()
	DefaultMetrics.ProfileDuration.Observe(durationSeconds)
}

// RecordReportRendered increments the rendered reports counter for a format.
func RecordReportRendered(format string) {
	DefaultMetrics.ReportsRendered.WithLabelValues(format).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
