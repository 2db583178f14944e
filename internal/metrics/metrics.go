// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teddywatch"

const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

type Metrics struct {
	Uploads          *prometheus.CounterVec
	InferenceSeconds prometheus.Histogram
	StoreErrors      prometheus.Counter
	SinkErrors       *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors on a private registry so tests can build as
// many instances as they like.
func New() *Metrics {
	m := &Metrics{
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Processed uploads by outcome",
		}, []string{"outcome"}),
		InferenceSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_seconds",
			Help:      "Time spent in model inference",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed statistics writes",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed event sink deliveries",
		}, []string{"sink"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.Uploads,
		m.InferenceSeconds,
		m.StoreErrors,
		m.SinkErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
