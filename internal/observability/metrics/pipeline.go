// Package metrics provides custom Prometheus metrics for the EcoGuard
// processing pipeline.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShutdownTimeout is the grace period for stopping the metrics endpoint.
const ShutdownTimeout = 5 * time.Second

// PipelineMetrics contains all Prometheus metrics related to batch processing.
type PipelineMetrics struct {
	BatchesProcessed  prometheus.Counter
	BatchFailures     prometheus.Counter
	RecordsProcessed  prometheus.Counter
	RecordFailures    prometheus.Counter
	PoacherDetections prometheus.Counter
	DeliveryFailures  prometheus.Counter
	AlertFailures     prometheus.Counter
	TabularLatency    prometheus.Histogram
	ImageLatency      prometheus.Histogram
	registry          *prometheus.Registry
}

// NewPipelineMetrics creates a new instance of PipelineMetrics and registers
// it with the provided registry.
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
	}
	return m, nil
}

func (m *PipelineMetrics) initMetrics() {
	m.BatchesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecoguard_batches_processed_total",
		Help: "Total number of timestamp batches processed",
	})
	m.BatchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecoguard_batch_failures_total",
		Help: "Total number of batches abandoned before persistence",
	})
	m.RecordsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecoguard_records_processed_total",
		Help: "Total number of movement records classified and persisted",
	})
	m.RecordFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecoguard_record_failures_total",
		Help: "Total number of records skipped due to processing errors",
	})
	m.PoacherDetections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecoguard_poacher_detections_total",
		Help: "Total number of camera captures classified as poacher",
	})
	m.DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecoguard_delivery_failures_total",
		Help: "Total number of failed batch deliveries to the results sink",
	})
	m.AlertFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ecoguard_alert_failures_total",
		Help: "Total number of failed MQTT alert publishes",
	})
	m.TabularLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecoguard_tabular_inference_duration_seconds",
		Help:    "Duration of batched movement model inference in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
	m.ImageLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ecoguard_image_inference_duration_seconds",
		Help:    "Duration of per-capture camera model inference in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
}

// Describe implements the prometheus.Collector interface.
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.BatchesProcessed.Describe(ch)
	m.BatchFailures.Describe(ch)
	m.RecordsProcessed.Describe(ch)
	m.RecordFailures.Describe(ch)
	m.PoacherDetections.Describe(ch)
	m.DeliveryFailures.Describe(ch)
	m.AlertFailures.Describe(ch)
	m.TabularLatency.Describe(ch)
	m.ImageLatency.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.BatchesProcessed.Collect(ch)
	m.BatchFailures.Collect(ch)
	m.RecordsProcessed.Collect(ch)
	m.RecordFailures.Collect(ch)
	m.PoacherDetections.Collect(ch)
	m.DeliveryFailures.Collect(ch)
	m.AlertFailures.Collect(ch)
	m.TabularLatency.Collect(ch)
	m.ImageLatency.Collect(ch)
}

// ObserveTabularInference records the duration of one batched stage-1 call.
func (m *PipelineMetrics) ObserveTabularInference(d time.Duration) {
	m.TabularLatency.Observe(d.Seconds())
}

// ObserveImageInference records the duration of one stage-2 classification.
func (m *PipelineMetrics) ObserveImageInference(d time.Duration) {
	m.ImageLatency.Observe(d.Seconds())
}
