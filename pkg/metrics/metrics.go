package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// COI metrics
	COISize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbcore_coi_size",
			Help: "Approximate number of live entries in the concurrent ordered index",
		},
	)

	COIHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbcore_coi_height",
			Help: "Current observed height of the skip list",
		},
	)

	COIMaxHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbcore_coi_max_height",
			Help: "Current adaptive maximum height of the skip list",
		},
	)

	COIOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbcore_coi_operations_total",
			Help: "Total COI operations by kind and outcome",
		},
		[]string{"op", "outcome"},
	)

	// TPS metrics
	TPSPagesByTier = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dbcore_tps_pages",
			Help: "Number of pages currently resident in each tier",
		},
		[]string{"tier"},
	)

	TPSMigrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbcore_tps_migrations_total",
			Help: "Total page migrations between tiers",
		},
		[]string{"from", "to"},
	)

	TPSCompressionRatio = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbcore_tps_avg_compression_ratio",
			Help: "Average compressed-size / original-size ratio across all resident pages",
		},
	)

	TPSCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbcore_tps_cache_requests_total",
			Help: "GetPage requests served by the in-process read cache, by outcome",
		},
		[]string{"outcome"},
	)

	TPSGetDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dbcore_tps_get_duration_seconds",
			Help:    "Time taken to serve GetPage, including any decompression",
			Buckets: prometheus.DefBuckets,
		},
	)

	TPSMaintenanceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dbcore_tps_maintenance_duration_seconds",
			Help:    "Time taken by one TPS maintenance cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Backup catalog metrics
	CatalogBackupSetsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbcore_catalog_backup_sets",
			Help: "Total number of backup sets currently registered",
		},
	)

	CatalogObsoleteSetsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbcore_catalog_obsolete_backup_sets",
			Help: "Total number of backup sets currently obsolete (marked, or past keep-until)",
		},
	)

	CatalogCompliantDatabases = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dbcore_catalog_compliant_databases",
			Help: "Databases whose last backup completed within the recovery window",
		},
	)

	CatalogRecoveryPathDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dbcore_catalog_recovery_path_duration_seconds",
			Help:    "Time taken to compute a recovery path",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(COISize)
	prometheus.MustRegister(COIHeight)
	prometheus.MustRegister(COIMaxHeight)
	prometheus.MustRegister(COIOpsTotal)

	prometheus.MustRegister(TPSPagesByTier)
	prometheus.MustRegister(TPSMigrationsTotal)
	prometheus.MustRegister(TPSCompressionRatio)
	prometheus.MustRegister(TPSCacheHitsTotal)
	prometheus.MustRegister(TPSGetDuration)
	prometheus.MustRegister(TPSMaintenanceDuration)

	prometheus.MustRegister(CatalogBackupSetsTotal)
	prometheus.MustRegister(CatalogObsoleteSetsTotal)
	prometheus.MustRegister(CatalogCompliantDatabases)
	prometheus.MustRegister(CatalogRecoveryPathDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
