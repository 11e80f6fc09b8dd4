// Package importer loads historical movement data from CSV exports into the
// database.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ecoguard/ecoguard-go/internal/datastore"
	"github.com/ecoguard/ecoguard-go/internal/errors"
)

// csvTimeLayout matches the datetime rendering of the collar data exports.
const csvTimeLayout = "2006-01-02 15:04:05"

// flushSize bounds how many parsed rows are buffered before a bulk insert.
const flushSize = 500

// Column headers of the movement data export. The longitude header keeps the
// historical spelling used throughout the dataset.
var requiredColumns = []string{
	"animal_id", "species", "sex", "ToD", "datetime",
	"latitude", "longtitude", "speed", "step_length", "turn_angle",
}

// ImportCSV reads a movement data export and bulk-inserts its rows. Returns
// the number of imported records.
func ImportCSV(store datastore.Interface, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.New(fmt.Errorf("opening movement data export: %w", err)).
			Component("importer").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, parseError(path, 1, fmt.Errorf("reading header: %w", err))
	}
	columns, err := mapColumns(header)
	if err != nil {
		return 0, parseError(path, 1, err)
	}

	imported := 0
	line := 1
	batch := make([]datastore.MovementRecord, 0, flushSize)
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, parseError(path, line, err)
		}

		record, err := parseRow(columns, row)
		if err != nil {
			return imported, parseError(path, line, err)
		}
		batch = append(batch, record)

		if len(batch) >= flushSize {
			if err := store.SaveMovements(batch); err != nil {
				return imported, err
			}
			imported += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := store.SaveMovements(batch); err != nil {
			return imported, err
		}
		imported += len(batch)
	}

	return imported, nil
}

// mapColumns resolves each required column to its index in the header. Extra
// columns, like the unnamed pandas index, are ignored.
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return columns, nil
}

func parseRow(columns map[string]int, row []string) (datastore.MovementRecord, error) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	ts, err := time.Parse(csvTimeLayout, field("datetime"))
	if err != nil {
		return datastore.MovementRecord{}, fmt.Errorf("parsing datetime: %w", err)
	}

	numeric := func(name string) (float64, error) {
		v, err := strconv.ParseFloat(field(name), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %s: %w", name, err)
		}
		return v, nil
	}

	latitude, err := numeric("latitude")
	if err != nil {
		return datastore.MovementRecord{}, err
	}
	longitude, err := numeric("longtitude")
	if err != nil {
		return datastore.MovementRecord{}, err
	}
	speed, err := numeric("speed")
	if err != nil {
		return datastore.MovementRecord{}, err
	}
	stepLength, err := numeric("step_length")
	if err != nil {
		return datastore.MovementRecord{}, err
	}
	turnAngle, err := numeric("turn_angle")
	if err != nil {
		return datastore.MovementRecord{}, err
	}

	return datastore.MovementRecord{
		AnimalID:   field("animal_id"),
		Species:    field("species"),
		Sex:        field("sex"),
		TimeOfDay:  field("ToD"),
		Timestamp:  ts,
		Latitude:   latitude,
		Longitude:  longitude,
		Speed:      speed,
		StepLength: stepLength,
		TurnAngle:  turnAngle,
	}, nil
}

func parseError(path string, line int, err error) error {
	return errors.New(fmt.Errorf("movement data export line %d: %w", line, err)).
		Component("importer").
		Category(errors.CategoryValidation).
		Context("path", path).
		Context("line", line).
		Build()
}
