package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nglaser3/stochvol/internal/ports"
)

// Compile-time verification that PrometheusMetrics implements
// MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides real-time monitoring of sampling throughput,
// per-domain hit rates, convergence progress, and classifier cost.
type PrometheusMetrics struct {
	samplesTotal      *prometheus.CounterVec
	domainHits        *prometheus.CounterVec
	classifications   *prometheus.CounterVec
	convergenceChecks *prometheus.CounterVec
	operationLatency  *prometheus.HistogramVec
	estimateGauges    *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and
// registers its metrics with the given registerer. Pass
// prometheus.DefaultRegisterer for the process-wide registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		samplesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volume_samples_total",
				Help: "Total number of points drawn across all sessions.",
			},
			[]string{"session_id"},
		),
		domainHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volume_domain_hits_total",
				Help: "Total number of sampled points classified into each domain.",
			},
			[]string{"session_id", "domain"},
		),
		classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volume_classifications_total",
				Help: "Total number of oracle classification calls by outcome.",
			},
			[]string{"status"},
		),
		convergenceChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volume_convergence_checks_total",
				Help: "Total number of trigger evaluations performed.",
			},
			[]string{"session_id"},
		),
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volume_operation_duration_seconds",
				Help:    "Latency of sampling batches and classification calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		estimateGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "volume_estimate_std_dev",
				Help: "Current standard deviation of each domain's volume estimate.",
			},
			[]string{"session_id", "domain"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// operation latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by
// incrementing Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "samples_total":
		pm.samplesTotal.WithLabelValues(labels["session_id"]).Add(value)
	case "domain_hits_total":
		pm.domainHits.WithLabelValues(labels["session_id"], labels["domain"]).Add(value)
	case "classifications_total":
		pm.classifications.WithLabelValues(labels["status"]).Add(value)
	case "convergence_checks_total":
		pm.convergenceChecks.WithLabelValues(labels["session_id"]).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "estimate_std_dev":
		pm.estimateGauges.WithLabelValues(labels["session_id"], labels["domain"]).Set(value)
	}
}
