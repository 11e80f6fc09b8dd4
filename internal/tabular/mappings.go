package tabular

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ecoguard/ecoguard-go/internal/datastore"
	"github.com/ecoguard/ecoguard-go/internal/errors"
)

// Mappings holds the preprocessing artifacts exported at training time: the
// standard-scaler parameters for the numeric movement features and the class
// lists of the two categorical label encoders. The feature column order the
// model was trained with is fixed: speed, step_length, turn_angle, sex, tod.
type Mappings struct {
	Scaler struct {
		Mean []float64 `json:"mean"` // per numeric column, training-set mean
		Std  []float64 `json:"std"`  // per numeric column, training-set standard deviation
	} `json:"scaler"`
	SexClasses []string `json:"sex_classes"` // label-encoder classes for sex, index = encoded value
	TodClasses []string `json:"tod_classes"` // label-encoder classes for time of day
}

// NumNumericFeatures is the number of standard-scaled numeric columns.
const NumNumericFeatures = 3

// NumFeatures is the total model input width: numeric columns plus the two
// encoded categoricals.
const NumFeatures = NumNumericFeatures + 2

// LoadMappings reads and validates the mappings JSON file.
func LoadMappings(path string) (*Mappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading mappings file: %w", err)).
			Component("tabular").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	var m Mappings
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New(fmt.Errorf("parsing mappings file: %w", err)).
			Component("tabular").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Mappings) validate() error {
	if len(m.Scaler.Mean) != NumNumericFeatures || len(m.Scaler.Std) != NumNumericFeatures {
		return errors.Newf("scaler expects %d numeric columns, got mean=%d std=%d",
			NumNumericFeatures, len(m.Scaler.Mean), len(m.Scaler.Std)).
			Component("tabular").
			Category(errors.CategoryValidation).
			Build()
	}
	for i, std := range m.Scaler.Std {
		if std == 0 {
			return errors.Newf("scaler std for column %d is zero", i).
				Component("tabular").
				Category(errors.CategoryValidation).
				Build()
		}
	}
	if len(m.SexClasses) == 0 || len(m.TodClasses) == 0 {
		return errors.Newf("label encoder class lists must not be empty").
			Component("tabular").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

func (m *Mappings) encodeSex(value string) (float32, error) {
	for i, class := range m.SexClasses {
		if class == value {
			return float32(i), nil
		}
	}
	return 0, errors.Newf("unknown sex value %q", value).
		Component("tabular").
		Category(errors.CategoryValidation).
		Build()
}

func (m *Mappings) encodeTod(value string) (float32, error) {
	for i, class := range m.TodClasses {
		if class == value {
			return float32(i), nil
		}
	}
	return 0, errors.Newf("unknown time-of-day value %q", value).
		Component("tabular").
		Category(errors.CategoryValidation).
		Build()
}

// Transform builds the model input matrix for a batch of movement records:
// identifier and coordinate columns are dropped, numeric columns are
// standard-scaled, and the categorical columns are label-encoded. Row order
// matches the input record order.
func (m *Mappings) Transform(records []datastore.MovementRecord) ([][]float32, error) {
	features := make([][]float32, 0, len(records))
	for i := range records {
		rec := &records[i]

		numeric := [NumNumericFeatures]float64{rec.Speed, rec.StepLength, rec.TurnAngle}
		row := make([]float32, 0, NumFeatures)
		for j, v := range numeric {
			row = append(row, float32((v-m.Scaler.Mean[j])/m.Scaler.Std[j]))
		}

		sex, err := m.encodeSex(rec.Sex)
		if err != nil {
			return nil, err
		}
		tod, err := m.encodeTod(rec.TimeOfDay)
		if err != nil {
			return nil, err
		}
		row = append(row, sex, tod)

		features = append(features, row)
	}
	return features, nil
}
