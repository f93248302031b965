package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Report generation metrics
	ReportsGenerated *prometheus.CounterVec
	ReportErrors     *prometheus.CounterVec
	ReportDuration   *prometheus.HistogramVec

	// Database metrics
	DatabaseConnections prometheus.Gauge
}

// NewMetrics creates and registers all application metrics against the given
// registerer. Tests pass a fresh registry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ReportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Total number of analytics reports generated",
		}, []string{"role"}),
		ReportErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_errors_total",
			Help:      "Total number of failed report generations",
		}, []string{"role"}),
		ReportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Time spent generating analytics reports",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"role"}),
		DatabaseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_connections",
			Help:      "Current number of open database connections",
		}),
	}
}
