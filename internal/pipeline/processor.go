// Package pipeline implements the two-stage detection cascade: a batched
// movement classification pass, a conditional camera-capture classification
// per flagged record, persistence of the verdicts and delivery of the batch
// to the downstream results API.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ecoguard/ecoguard-go/internal/datastore"
	"github.com/ecoguard/ecoguard-go/internal/errors"
	"github.com/ecoguard/ecoguard-go/internal/geozone"
	"github.com/ecoguard/ecoguard-go/internal/imageclass"
	"github.com/ecoguard/ecoguard-go/internal/logging"
	"github.com/ecoguard/ecoguard-go/internal/notify"
	"github.com/ecoguard/ecoguard-go/internal/observability/metrics"
	"github.com/ecoguard/ecoguard-go/internal/sink"
	"github.com/ecoguard/ecoguard-go/internal/tabular"
)

// poacherClass is the stage-2 class that triggers ranger alerts.
const poacherClass = "poacher"

// MovementClassifier is the stage-1 batched movement classifier.
type MovementClassifier interface {
	ClassifyBatch(records []datastore.MovementRecord) ([]int, error)
}

// CaptureClassifier is the stage-2 camera-capture classifier.
type CaptureClassifier interface {
	ClassifyZoneCapture(zone string, ts time.Time) (imageclass.Prediction, error)
}

// Deliverer posts consolidated batch payloads downstream.
type Deliverer interface {
	Deliver(ctx context.Context, entries []sink.Entry) error
}

// Processor runs the cascade for one batch timestamp at a time.
type Processor struct {
	store    datastore.Interface
	movement MovementClassifier
	camera   CaptureClassifier
	zones    *geozone.Resolver
	sink     Deliverer
	notifier notify.Notifier          // nil when alerting is disabled
	metrics  *metrics.PipelineMetrics // nil when metrics are disabled
	logger   *slog.Logger
}

// NewProcessor wires the cascade components together.
func NewProcessor(store datastore.Interface, movement MovementClassifier, camera CaptureClassifier,
	zones *geozone.Resolver, deliverer Deliverer, notifier notify.Notifier,
	pipelineMetrics *metrics.PipelineMetrics) *Processor {

	logger, _, err := logging.NewFileLogger("logs/pipeline.log", "pipeline", slog.LevelDebug)
	if err != nil {
		logging.Warn("Failed to initialize pipeline file logger, using default", "error", err)
		logger = slog.Default().With("service", "pipeline")
	}

	return &Processor{
		store:    store,
		movement: movement,
		camera:   camera,
		zones:    zones,
		sink:     deliverer,
		notifier: notifier,
		metrics:  pipelineMetrics,
		logger:   logger,
	}
}

// ProcessBatch runs the cascade for every movement record sharing the given
// timestamp. Stage 1 is one batched call; its failure abandons the whole
// batch with no rows persisted and no delivery. Record-level failures skip
// the affected record only. Delivery failure is logged but never fails the
// batch, the rows are already durable at that point.
func (p *Processor) ProcessBatch(ctx context.Context, ts time.Time) error {
	records, err := p.store.MovementsAt(ts)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	labels, err := p.movement.ClassifyBatch(records)
	if err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.ObserveTabularInference(time.Since(start))
	}

	entries := make([]sink.Entry, 0, len(records))
	bySpecies := make(map[string]int, 4)
	poachersFlagged := 0
	for i := range records {
		bySpecies[records[i].Species]++
		entry, err := p.processRecord(ctx, &records[i], labels[i], ts)
		if err != nil {
			p.logger.Warn("record skipped",
				"timestamp", ts,
				"animal_id", records[i].AnimalID,
				"error", err)
			if p.metrics != nil {
				p.metrics.RecordFailures.Inc()
			}
			continue
		}
		if labels[i] == tabular.LabelPoacher {
			poachersFlagged++
		}
		entries = append(entries, entry)
		if p.metrics != nil {
			p.metrics.RecordsProcessed.Inc()
		}
	}

	if len(entries) > 0 {
		if err := p.sink.Deliver(ctx, entries); err != nil {
			// The verdict rows are already persisted, delivery is best effort.
			p.logger.Warn("batch delivery failed",
				"timestamp", ts,
				"entries", len(entries),
				"error", err)
			if p.metrics != nil {
				p.metrics.DeliveryFailures.Inc()
			}
		}
	}

	if p.metrics != nil {
		p.metrics.BatchesProcessed.Inc()
	}
	p.logger.Info("batch processed",
		"timestamp", ts,
		"records", len(records),
		"species", bySpecies,
		"delivered", len(entries),
		"flagged", poachersFlagged,
		"duration", time.Since(start))
	return nil
}

// processRecord runs zone resolution, the conditional stage-2 pass and
// persistence for one record, and builds its payload entry.
func (p *Processor) processRecord(ctx context.Context, record *datastore.MovementRecord, label int, ts time.Time) (sink.Entry, error) {
	formatted := sink.FormatTimestamp(ts)

	result := datastore.PredictionResult{
		Timestamp: ts,
		AnimalID:  record.AnimalID,
		Species:   record.Species,
		Latitude:  record.Latitude,
		Longitude: record.Longitude,
	}
	entry := sink.Entry{
		AnimalID:  record.AnimalID,
		Species:   record.Species,
		Datetime:  formatted,
		Timestamp: formatted,
		Latitude:  record.Latitude,
		Longitude: record.Longitude,
	}

	if label == tabular.LabelPoacher {
		result.XGBPrediction = "poacher"
	} else {
		result.XGBPrediction = "normal"
	}
	entry.Prediction = result.XGBPrediction

	var capture *imageclass.Prediction
	if label == tabular.LabelPoacher {
		if zone, ok := p.zones.Resolve(record.Latitude, record.Longitude); ok {
			result.Zone = &zone
			entry.Zone = &zone

			pred, err := p.classifyCapture(zone, ts)
			switch {
			case errors.IsNotFound(err):
				// No capture for this zone and timestamp, the stage-1
				// verdict stands on its own.
				p.logger.Debug("no camera capture for flagged record",
					"zone", zone,
					"timestamp", ts,
					"animal_id", record.AnimalID)
			case err != nil:
				return sink.Entry{}, err
			default:
				capture = &pred
				result.ImagePath = &pred.ImagePath
				result.ImageClassPrediction = &pred.ClassName
				result.Probability = &pred.Probability
				entry.ImageURL = &pred.ImagePath
				entry.ClassName = &pred.ClassName
				entry.Probability = &pred.Probability
			}
		}
	}

	if err := p.store.SavePrediction(&result); err != nil {
		return sink.Entry{}, err
	}

	if capture != nil && capture.ClassName == poacherClass {
		if p.metrics != nil {
			p.metrics.PoacherDetections.Inc()
		}
		p.alert(ctx, record, &result, capture, formatted)
	}

	return entry, nil
}

func (p *Processor) classifyCapture(zone string, ts time.Time) (imageclass.Prediction, error) {
	start := time.Now()
	pred, err := p.camera.ClassifyZoneCapture(zone, ts)
	if err == nil && p.metrics != nil {
		p.metrics.ObserveImageInference(time.Since(start))
	}
	return pred, err
}

// alert publishes a ranger notification for a camera-confirmed poacher.
// Alerting is best effort and never fails the record.
func (p *Processor) alert(ctx context.Context, record *datastore.MovementRecord, result *datastore.PredictionResult, capture *imageclass.Prediction, formatted string) {
	if p.notifier == nil {
		return
	}

	zone := ""
	if result.Zone != nil {
		zone = *result.Zone
	}
	err := p.notifier.Publish(ctx, &notify.Alert{
		AnimalID:    record.AnimalID,
		Species:     record.Species,
		Timestamp:   formatted,
		Latitude:    record.Latitude,
		Longitude:   record.Longitude,
		Zone:        zone,
		ClassName:   capture.ClassName,
		Probability: capture.Probability,
	})
	if err != nil {
		p.logger.Warn("poacher alert publish failed",
			"zone", zone,
			"animal_id", record.AnimalID,
			"error", err)
		if p.metrics != nil {
			p.metrics.AlertFailures.Inc()
		}
	}
}
