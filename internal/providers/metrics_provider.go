package providers

import (
	"medhistory/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons for removing records or files.
const (
	ReasonCap       = "cap"
	ReasonDuplicate = "duplicate"
	ReasonRetention = "retention"
	ReasonDelete    = "delete"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveCommitDuration(duration time.Duration)
	AddRecordsAppended(count int)
	AddRecordsRemoved(reason string, count int)
	AddFilesRemoved(reason string, count int)
	IncLockTimeouts()
	SetUsersTotal(count int)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	commitDuration  prometheus.Histogram
	recordsAppended prometheus.Counter
	recordsRemoved  *prometheus.CounterVec
	filesRemoved    *prometheus.CounterVec
	lockTimeouts    prometheus.Counter
	usersTotal      prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveCommitDuration(duration time.Duration) {
	m.commitDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) AddRecordsAppended(count int) {
	m.recordsAppended.Add(float64(count))
}

func (m *MetricsProvider) AddRecordsRemoved(reason string, count int) {
	if count > 0 {
		m.recordsRemoved.WithLabelValues(reason).Add(float64(count))
	}
}

func (m *MetricsProvider) AddFilesRemoved(reason string, count int) {
	if count > 0 {
		m.filesRemoved.WithLabelValues(reason).Add(float64(count))
	}
}

func (m *MetricsProvider) IncLockTimeouts() {
	m.lockTimeouts.Inc()
}

func (m *MetricsProvider) SetUsersTotal(count int) {
	m.usersTotal.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mh_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mh_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mh_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mh_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		commitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mh_commit_duration_seconds",
			Help:    "Duration of history collection commits in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		recordsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mh_records_appended_total",
			Help: "Total number of appended history records",
		}),

		recordsRemoved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mh_records_removed_total",
			Help: "Total number of removed history records by reason",
		}, []string{"reason"}),

		filesRemoved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mh_files_removed_total",
			Help: "Total number of removed image files by reason",
		}, []string{"reason"}),

		lockTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mh_lock_timeouts_total",
			Help: "Total number of per-user lock acquisitions that timed out",
		}),

		usersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mh_users_total",
			Help: "Number of users with history records",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveCommitDuration(_ time.Duration)            {}
func (n *noopMetrics) AddRecordsAppended(_ int)                         {}
func (n *noopMetrics) AddRecordsRemoved(_ string, _ int)                {}
func (n *noopMetrics) AddFilesRemoved(_ string, _ int)                  {}
func (n *noopMetrics) IncLockTimeouts()                                 {}
func (n *noopMetrics) SetUsersTotal(_ int)                              {}
