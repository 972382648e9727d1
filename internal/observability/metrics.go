package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by the pipeline and the HTTP server
type Metrics struct {
	Registry *prometheus.Registry

	outcomes        *prometheus.CounterVec
	completionTime  prometheus.Histogram
	requestDuration *prometheus.SummaryVec
	requests        *prometheus.CounterVec
}

// NewMetrics creates the collectors on a dedicated registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_pipeline_outcomes_total",
				Help: "Pipeline runs by outcome status and error kind",
			},
			[]string{"operation", "status", "kind"},
		),
		completionTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resume_completion_duration_seconds",
			Help:    "Latency of text-completion calls",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		requestDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request duration in seconds",
				Objectives: map[float64]float64{
					0.5:  0.05,
					0.9:  0.01,
					0.99: 0.001,
				},
			},
			[]string{"method", "path", "status_code"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
	}
	m.Registry.MustRegister(m.outcomes, m.completionTime, m.requestDuration, m.requests)
	return m
}

// ObserveOutcome counts one pipeline run. A nil receiver is a no-op.
func (m *Metrics) ObserveOutcome(operation, status, kind string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(operation, status, kind).Inc()
}

// ObserveCompletion records the latency of one completion call
func (m *Metrics) ObserveCompletion(d time.Duration) {
	if m == nil {
		return
	}
	m.completionTime.Observe(d.Seconds())
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, path, statusCode string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, statusCode).Observe(d.Seconds())
	m.requests.WithLabelValues(method, path, statusCode).Inc()
}
