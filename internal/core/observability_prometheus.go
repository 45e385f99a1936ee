package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ifcqa/pkg/domain"
)

// PrometheusMetricsRecorder exports operation latency, outcomes, and issue
// counts to a Prometheus registry.
type PrometheusMetricsRecorder struct {
	registry   *prometheus.Registry
	latency    *prometheus.HistogramVec
	operations *prometheus.CounterVec
	issues     *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the ifcqa collectors on reg. A nil
// reg gets a fresh registry.
func NewPrometheusMetricsRecorder(reg *prometheus.Registry) *PrometheusMetricsRecorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &PrometheusMetricsRecorder{
		registry: reg,
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ifcqa",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"operation"}),
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ifcqa",
			Name:      "operations_total",
			Help:      "Service operations by outcome",
		}, []string{"operation", "status"}),
		issues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ifcqa",
			Name:      "issues_total",
			Help:      "Issues raised by rule and severity",
		}, []string{"rule", "severity"}),
	}
}

// Registry returns the registry the collectors live on.
func (r *PrometheusMetricsRecorder) Registry() *prometheus.Registry { return r.registry }

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.latency.WithLabelValues(operation).Observe(duration.Seconds())
	r.operations.WithLabelValues(operation, status).Inc()
}

// ObserveIssues implements IssueRecorder.
func (r *PrometheusMetricsRecorder) ObserveIssues(ruleID string, severity domain.Severity, count int) {
	if count <= 0 {
		return
	}
	r.issues.WithLabelValues(ruleID, string(severity)).Add(float64(count))
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector.
func (r *PrometheusMetricsRecorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
