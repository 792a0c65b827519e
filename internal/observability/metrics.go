package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the analyzer.
type Metrics struct {
	Estimates        *prometheus.CounterVec // labels: category
	Errors           *prometheus.CounterVec // labels: kind={invalid_input,category_not_found,classifier,not_image,superseded}
	Uploads          prometheus.Counter
	ClassifyDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates metrics and registers them with reg.
func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_analyzer",
			Name:      "estimates_total",
			Help:      "Successful AQI estimates by top category.",
		}, []string{"category"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_analyzer",
			Name:      "errors_total",
			Help:      "Failed requests by error kind.",
		}, []string{"kind"}),
		Uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_analyzer",
			Name:      "uploads_total",
			Help:      "Images received for analysis.",
		}),
		ClassifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aqi_analyzer",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete image analysis including the model call.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
	}

	reg.MustRegister(
		m.Estimates,
		m.Errors,
		m.Uploads,
		m.ClassifyDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewMetricsWithRegisterer(prometheus.NewRegistry())
}
