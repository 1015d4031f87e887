// Package metrics exports engine measurements to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

const namespace = "compliance"

// Write results.
const (
	resultSuccess = "success"
	resultError   = "error"
)

var _ ports.MetricsRecorder = (*Collector)(nil)

// Collector implements ports.MetricsRecorder on a Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	score        *prometheus.GaugeVec
	trend        *prometheus.GaugeVec
	pendingCases *prometheus.GaugeVec
	expiringDocs *prometheus.GaugeVec
	loadDuration *prometheus.HistogramVec
	loadErrors   *prometheus.CounterVec
	insights     *prometheus.CounterVec
	writes       *prometheus.CounterVec
}

// NewCollector registers the engine metrics on registry. A nil registry
// gets a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		score: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Share of scored checks that passed, 0-100.",
		}, []string{"tenant"}),
		trend: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "score_trend",
			Help:      "Score of the last 30 days minus the score of older checks.",
		}, []string{"tenant"}),
		pendingCases: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_cases",
			Help:      "Cases that are open or under review.",
		}, []string{"tenant"}),
		expiringDocs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expiring_documents",
			Help:      "Documents expiring within 30 days.",
		}, []string{"tenant"}),
		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time taken to load and aggregate one view.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"tenant"}),
		loadErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failed store reads by entity.",
		}, []string{"tenant", "entity"}),
		insights: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_generations_total",
			Help:      "Insight generations by source.",
		}, []string{"tenant", "source"}),
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Store writes by operation and result.",
		}, []string{"tenant", "op", "result"}),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordLoad(tenant string, duration time.Duration, stats entities.DashboardStats) {
	c.loadDuration.WithLabelValues(tenant).Observe(duration.Seconds())
	c.score.WithLabelValues(tenant).Set(float64(stats.OverallScore))
	c.trend.WithLabelValues(tenant).Set(float64(stats.Trend))
	c.pendingCases.WithLabelValues(tenant).Set(float64(stats.PendingCases))
	c.expiringDocs.WithLabelValues(tenant).Set(float64(stats.ExpiringDocs))
}

func (c *Collector) RecordLoadError(tenant, entity string) {
	c.loadErrors.WithLabelValues(tenant, entity).Inc()
}

func (c *Collector) RecordInsights(tenant string, source entities.InsightSource) {
	c.insights.WithLabelValues(tenant, string(source)).Inc()
}

func (c *Collector) RecordWrite(tenant, op string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	c.writes.WithLabelValues(tenant, op, result).Inc()
}
