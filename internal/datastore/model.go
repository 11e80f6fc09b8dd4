// model.go this code defines the data model for the application
package datastore

import "time"

// MovementRecord represents a single GPS telemetry sighting ingested from
// the field collars. Records sharing one exact timestamp form a batch, the
// unit of cascade execution and downstream delivery.
type MovementRecord struct {
	ID        uint      `gorm:"primaryKey"`
	AnimalID  string    `gorm:"index:idx_movements_animal"`
	Species   string    `gorm:"index:idx_movements_species"`
	Sex       string    // "male" or "female", label-encoded for the classifier
	TimeOfDay string    `gorm:"column:tod"` // categorical time-of-day bucket, e.g. "day", "night"
	Timestamp time.Time `gorm:"index:idx_movements_timestamp;not null"`
	Latitude  float64
	Longitude float64

	// Numeric movement features consumed by the stage-1 classifier.
	Speed      float64 // km/h
	StepLength float64 // metres travelled since previous fix
	TurnAngle  float64 // degrees turned since previous heading
}

// PredictionResult is the durable record of one cascade pass over one
// movement record. Rows are created once per record per pipeline pass and
// never mutated or deleted by the pipeline; review state belongs to the
// downstream application.
type PredictionResult struct {
	ID                   uint      `gorm:"primaryKey"`
	Timestamp            time.Time `gorm:"index:idx_predictions_timestamp"`
	AnimalID             string
	Species              string
	XGBPrediction        string `gorm:"type:varchar(20)"` // "poacher" or "normal"
	Latitude             float64
	Longitude            float64
	Zone                 *string  `gorm:"type:varchar(20)"` // nil when the coordinate matched no zone
	ImagePath            *string  // nil unless stage 2 ran successfully
	ImageClassPrediction *string  `gorm:"type:varchar(20)"` // one of elephant, poacher, rhino
	Probability          *float64 // confidence of ImageClassPrediction
	CreatedAt            time.Time
}

// ProcessingWatermark marks the last fully processed batch timestamp. A
// single row exists when watermarking is enabled; without it every polling
// cycle reprocesses the whole store.
type ProcessingWatermark struct {
	ID        uint `gorm:"primaryKey"`
	Timestamp time.Time
	UpdatedAt time.Time
}
