package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/datastore"
	"github.com/ecoguard/ecoguard-go/internal/logging"
	"github.com/ecoguard/ecoguard-go/internal/observability/metrics"
)

// Monitor drives the polling loop: every interval it re-enumerates the
// distinct batch timestamps in the store, ascending, and processes each one
// sequentially. There is no internal parallelism, batch order is the
// timestamp order.
type Monitor struct {
	processor    *Processor
	store        datastore.Interface
	interval     time.Duration
	useWatermark bool
	metrics      *metrics.PipelineMetrics
	logger       *slog.Logger
}

// NewMonitor creates the polling loop from the monitor settings.
func NewMonitor(settings *conf.MonitorSettings, processor *Processor, store datastore.Interface,
	pipelineMetrics *metrics.PipelineMetrics) *Monitor {

	logger := logging.ForService("pipeline")
	if logger == nil {
		logger = slog.Default().With("service", "pipeline")
	}

	return &Monitor{
		processor:    processor,
		store:        store,
		interval:     time.Duration(settings.Interval) * time.Second,
		useWatermark: settings.Watermark,
		metrics:      pipelineMetrics,
		logger:       logger,
	}
}

// Run executes polling cycles until the context is cancelled. A cycle always
// runs to completion or to the first cancellation check; the fixed interval
// is then waited out before the next cycle starts.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("monitor started",
		"interval", m.interval,
		"watermark", m.useWatermark)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.runCycle(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.interval):
		}
	}
}

// runCycle processes every pending batch timestamp once. Failures are
// contained per batch: a failed batch is logged and, without a watermark,
// retried on the next cycle like everything else. With a watermark enabled
// the cycle stops at the first failed batch so the watermark never advances
// past it.
func (m *Monitor) runCycle(ctx context.Context) {
	timestamps, err := m.store.DistinctTimestamps()
	if err != nil {
		m.logger.Error("cycle aborted, cannot enumerate timestamps", "error", err)
		return
	}

	var watermark time.Time
	haveWatermark := false
	if m.useWatermark {
		watermark, haveWatermark, err = m.store.Watermark()
		if err != nil {
			m.logger.Error("cycle aborted, cannot read watermark", "error", err)
			return
		}
	}

	for _, ts := range timestamps {
		if ctx.Err() != nil {
			return
		}
		if m.useWatermark && haveWatermark && !ts.After(watermark) {
			continue
		}

		if err := m.processor.ProcessBatch(ctx, ts); err != nil {
			m.logger.Error("batch failed",
				"timestamp", ts,
				"error", err)
			if m.metrics != nil {
				m.metrics.BatchFailures.Inc()
			}
			if m.useWatermark {
				return
			}
			continue
		}

		if m.useWatermark {
			if err := m.store.SetWatermark(ts); err != nil {
				m.logger.Error("cannot advance watermark", "timestamp", ts, "error", err)
				return
			}
			watermark = ts
			haveWatermark = true
		}
	}
}
