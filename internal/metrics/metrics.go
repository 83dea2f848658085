package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the attribution service.
type Metrics struct {
	// Compute pass metrics
	ComputePasses   *prometheus.CounterVec
	ComputeDuration *prometheus.HistogramVec
	ComputeFailures *prometheus.CounterVec

	// Report metrics
	ReportsGenerated *prometheus.CounterVec
	ReportConfidence *prometheus.CounterVec

	// Data volume metrics
	ActivitiesSeen *prometheus.GaugeVec
	MetricDaysSeen *prometheus.GaugeVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ComputePasses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compute_passes_total",
				Help:      "Attribution passes run, by channel",
			},
			[]string{"channel"},
		),
		ComputeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compute_duration_seconds",
				Help:      "Duration of one channel's attribution pass",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
			},
			[]string{"channel"},
		),
		ComputeFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compute_failures_total",
				Help:      "Attribution passes that failed to load or persist",
			},
			[]string{"channel", "stage"},
		),
		ReportsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_generated_total",
				Help:      "Activity reports produced, by channel",
			},
			[]string{"channel"},
		),
		ReportConfidence: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_confidence_total",
				Help:      "Reports produced by confidence tier",
			},
			[]string{"channel", "tier"},
		),
		ActivitiesSeen: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "activities_seen",
				Help:      "Activities included in the latest pass",
			},
			[]string{"channel"},
		),
		MetricDaysSeen: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "metric_days_seen",
				Help:      "Daily metric rows included in the latest pass",
			},
			[]string{"channel"},
		),
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_hits_total",
				Help:      "Report cache hits",
			},
			[]string{"channel"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_misses_total",
				Help:      "Report cache misses",
			},
			[]string{"channel"},
		),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by path and status",
			},
			[]string{"path", "status"},
		),
		HTTPLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by rate limiting",
			},
			[]string{"path"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordComputePass records one completed attribution pass.
func (m *Metrics) RecordComputePass(channel string, duration time.Duration, activities, metricDays int) {
	m.ComputePasses.WithLabelValues(channel).Inc()
	m.ComputeDuration.WithLabelValues(channel).Observe(duration.Seconds())
	m.ActivitiesSeen.WithLabelValues(channel).Set(float64(activities))
	m.MetricDaysSeen.WithLabelValues(channel).Set(float64(metricDays))
}

// RecordComputeFailure records a failed pass and the stage it died in.
func (m *Metrics) RecordComputeFailure(channel, stage string) {
	m.ComputeFailures.WithLabelValues(channel, stage).Inc()
}

// RecordReport records a generated report and its confidence tier.
func (m *Metrics) RecordReport(channel, tier string) {
	m.ReportsGenerated.WithLabelValues(channel).Inc()
	m.ReportConfidence.WithLabelValues(channel, tier).Inc()
}

// RecordCacheHit records a report cache hit or miss.
func (m *Metrics) RecordCacheHit(channel string, hit bool) {
	if hit {
		m.CacheHits.WithLabelValues(channel).Inc()
	} else {
		m.CacheMisses.WithLabelValues(channel).Inc()
	}
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(path, status string, latency time.Duration) {
	m.HTTPRequests.WithLabelValues(path, status).Inc()
	m.HTTPLatency.WithLabelValues(path).Observe(latency.Seconds())
}

// RecordRateLimitHit records a rate-limited request.
func (m *Metrics) RecordRateLimitHit(path string) {
	m.RateLimitHits.WithLabelValues(path).Inc()
}
