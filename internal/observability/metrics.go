// Package observability provides Prometheus metrics functionality for
// monitoring the EcoGuard pipeline.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	metricspkg "github.com/ecoguard/ecoguard-go/internal/observability/metrics"
)

// Metrics bundles all pipeline metric collectors behind one registry.
type Metrics struct {
	registry *prometheus.Registry
	Pipeline *metricspkg.PipelineMetrics
}

// NewMetrics creates a registry with process/runtime collectors plus the
// pipeline metrics.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pipeline, err := metricspkg.NewPipelineMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("initializing pipeline metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Pipeline: pipeline,
	}, nil
}

// RegisterHandlers mounts the /metrics scrape handler on the given mux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
