// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/errors"
)

// Interface abstracts the underlying database implementation and defines the
// operations the pipeline needs: enumeration of batch timestamps, record
// retrieval by timestamp, and persistence of cascade results.
type Interface interface {
	Open() error
	Close() error
	SaveMovements(records []MovementRecord) error
	MovementsAt(ts time.Time) ([]MovementRecord, error)
	DistinctTimestamps() ([]time.Time, error)
	SavePrediction(result *PredictionResult) error
	PredictionsAt(ts time.Time) ([]PredictionResult, error)
	Watermark() (time.Time, bool, error)
	SetWatermark(ts time.Time) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		// Settings validation rejects this before the store is constructed.
		return nil
	}
}

// SaveMovements bulk-inserts movement records in batches.
func (ds *DataStore) SaveMovements(records []MovementRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ds.DB.CreateInBatches(records, 500).Error; err != nil {
		return errors.New(fmt.Errorf("saving movement records: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("record_count", len(records)).
			Build()
	}
	return nil
}

// MovementsAt retrieves all movement records with the exact timestamp.
func (ds *DataStore) MovementsAt(ts time.Time) ([]MovementRecord, error) {
	var records []MovementRecord
	if err := ds.DB.Where("timestamp = ?", ts).Order("id asc").Find(&records).Error; err != nil {
		return nil, errors.New(fmt.Errorf("getting movements at %s: %w", ts, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return records, nil
}

// DistinctTimestamps enumerates every distinct movement timestamp in the
// store, ascending. The pipeline walks this list on every polling cycle.
func (ds *DataStore) DistinctTimestamps() ([]time.Time, error) {
	var timestamps []time.Time
	err := ds.DB.Model(&MovementRecord{}).
		Distinct("timestamp").
		Order("timestamp asc").
		Pluck("timestamp", &timestamps).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("enumerating distinct timestamps: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return timestamps, nil
}

// SavePrediction inserts one cascade result row.
func (ds *DataStore) SavePrediction(result *PredictionResult) error {
	if err := ds.DB.Create(result).Error; err != nil {
		return errors.New(fmt.Errorf("saving prediction result: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("animal_id", result.AnimalID).
			Build()
	}
	return nil
}

// PredictionsAt retrieves the persisted prediction rows for one batch
// timestamp, in insertion order.
func (ds *DataStore) PredictionsAt(ts time.Time) ([]PredictionResult, error) {
	var results []PredictionResult
	if err := ds.DB.Where("timestamp = ?", ts).Order("id asc").Find(&results).Error; err != nil {
		return nil, errors.New(fmt.Errorf("getting predictions at %s: %w", ts, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return results, nil
}

// Watermark returns the persisted watermark timestamp. The second return
// value is false when no watermark row exists yet.
func (ds *DataStore) Watermark() (time.Time, bool, error) {
	var wm ProcessingWatermark
	err := ds.DB.First(&wm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, errors.New(fmt.Errorf("getting watermark: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return wm.Timestamp, true, nil
}

// SetWatermark creates or advances the single watermark row.
func (ds *DataStore) SetWatermark(ts time.Time) error {
	var wm ProcessingWatermark
	err := ds.DB.First(&wm).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		wm = ProcessingWatermark{Timestamp: ts}
		err = ds.DB.Create(&wm).Error
	case err == nil:
		err = ds.DB.Model(&wm).Update("timestamp", ts).Error
	}
	if err != nil {
		return errors.New(fmt.Errorf("setting watermark to %s: %w", ts, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return nil
}
