package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoguard/ecoguard-go/internal/conf"
)

// newTestStore opens a SQLite store backed by a temporary file.
func newTestStore(t *testing.T) Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := New(settings)
	require.NotNil(t, store, "expected a store for SQLite settings")
	require.NoError(t, store.Open(), "failed to open test database")
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func testMovement(ts time.Time, animalID string) MovementRecord {
	return MovementRecord{
		AnimalID:   animalID,
		Species:    "elephant",
		Sex:        "female",
		TimeOfDay:  "night",
		Timestamp:  ts,
		Latitude:   -22.12,
		Longitude:  32.32,
		Speed:      4.2,
		StepLength: 118.5,
		TurnAngle:  12.0,
	}
}

func TestSaveAndQueryMovements(t *testing.T) {
	store := newTestStore(t)
	ts := time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)

	records := []MovementRecord{
		testMovement(ts, "A1"),
		testMovement(ts, "A2"),
		testMovement(ts.Add(time.Hour), "A3"),
	}
	require.NoError(t, store.SaveMovements(records))

	got, err := store.MovementsAt(ts)
	require.NoError(t, err)
	require.Len(t, got, 2, "expected the two records sharing the timestamp")
	assert.Equal(t, "A1", got[0].AnimalID)
	assert.Equal(t, "A2", got[1].AnimalID)

	empty, err := store.MovementsAt(ts.Add(2 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, empty, "unknown timestamp yields no records, not an error")
}

func TestSaveMovementsEmptySlice(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveMovements(nil), "empty import is a no-op")
}

func TestDistinctTimestampsAscending(t *testing.T) {
	store := newTestStore(t)
	base := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)

	// Insert out of order, with a duplicate timestamp.
	require.NoError(t, store.SaveMovements([]MovementRecord{
		testMovement(base.Add(2*time.Hour), "A1"),
		testMovement(base, "A2"),
		testMovement(base.Add(time.Hour), "A3"),
		testMovement(base, "A4"),
	}))

	timestamps, err := store.DistinctTimestamps()
	require.NoError(t, err)
	require.Len(t, timestamps, 3, "duplicates must collapse")
	assert.True(t, timestamps[0].Equal(base))
	assert.True(t, timestamps[1].Equal(base.Add(time.Hour)))
	assert.True(t, timestamps[2].Equal(base.Add(2*time.Hour)))
}

func TestSaveAndQueryPredictions(t *testing.T) {
	store := newTestStore(t)
	ts := time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)

	zone := "Z01"
	class := "poacher"
	probability := 0.92
	imagePath := "media/camera_zones/Z01/2024-03-15_06-30-00.jpg"

	require.NoError(t, store.SavePrediction(&PredictionResult{
		Timestamp:            ts,
		AnimalID:             "A1",
		Species:              "elephant",
		XGBPrediction:        "poacher",
		Latitude:             -22.12,
		Longitude:            32.32,
		Zone:                 &zone,
		ImagePath:            &imagePath,
		ImageClassPrediction: &class,
		Probability:          &probability,
	}))
	require.NoError(t, store.SavePrediction(&PredictionResult{
		Timestamp:     ts,
		AnimalID:      "A2",
		Species:       "rhino",
		XGBPrediction: "normal",
		Latitude:      -22.01,
		Longitude:     32.16,
	}))

	results, err := store.PredictionsAt(ts)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "poacher", results[0].XGBPrediction)
	require.NotNil(t, results[0].Zone)
	assert.Equal(t, "Z01", *results[0].Zone)
	require.NotNil(t, results[0].Probability)
	assert.InDelta(t, 0.92, *results[0].Probability, 1e-9)

	assert.Equal(t, "normal", results[1].XGBPrediction)
	assert.Nil(t, results[1].Zone, "no-zone record persists with null zone")
	assert.Nil(t, results[1].ImageClassPrediction)
	assert.Nil(t, results[1].Probability)
	assert.Nil(t, results[1].ImagePath)
}

func TestReprocessingDuplicatesRows(t *testing.T) {
	store := newTestStore(t)
	ts := time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)

	row := PredictionResult{
		Timestamp:     ts,
		AnimalID:      "A1",
		Species:       "elephant",
		XGBPrediction: "normal",
	}
	first := row
	second := row
	require.NoError(t, store.SavePrediction(&first))
	require.NoError(t, store.SavePrediction(&second))

	results, err := store.PredictionsAt(ts)
	require.NoError(t, err)
	assert.Len(t, results, 2, "reprocessing the same batch appends duplicate rows")
}

func TestWatermark(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Watermark()
	require.NoError(t, err)
	assert.False(t, ok, "fresh store has no watermark")

	first := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetWatermark(first))

	got, ok, err := store.Watermark()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(first))

	// Advancing updates the single row rather than adding another.
	second := first.Add(time.Hour)
	require.NoError(t, store.SetWatermark(second))

	got, ok, err = store.Watermark()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(second))
}

func TestNewSelectsBackend(t *testing.T) {
	sqliteSettings := &conf.Settings{}
	sqliteSettings.Output.SQLite.Enabled = true
	_, ok := New(sqliteSettings).(*SQLiteStore)
	assert.True(t, ok, "expected SQLite store")

	mysqlSettings := &conf.Settings{}
	mysqlSettings.Output.MySQL.Enabled = true
	_, ok = New(mysqlSettings).(*MySQLStore)
	assert.True(t, ok, "expected MySQL store")

	assert.Nil(t, New(&conf.Settings{}), "no backend enabled yields nil")
}
