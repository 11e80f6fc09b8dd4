package importer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/datastore"
	"github.com/ecoguard/ecoguard-go/internal/errors"
)

const sampleCSV = `,animal_id,species,sex,ToD,datetime,latitude,longtitude,speed,step_length,turn_angle
0,A1,elephant,female,night,2024-03-15 06:30:00,-22.12,32.32,4.2,118.5,12.0
1,A2,rhino,male,day,2024-03-15 06:30:00,-22.01,32.16,1.1,40.2,-3.5
2,A1,elephant,female,day,2024-03-15 07:30:00,-22.11,32.33,3.8,102.0,8.1
`

func newTestStore(t *testing.T) datastore.Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := datastore.New(settings)
	require.NotNil(t, store)
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movements.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCSV(t *testing.T) {
	store := newTestStore(t)

	count, err := ImportCSV(store, writeCSV(t, sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	ts := time.Date(2024, 3, 15, 6, 30, 0, 0, time.UTC)
	records, err := store.MovementsAt(ts)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "A1", first.AnimalID)
	assert.Equal(t, "elephant", first.Species)
	assert.Equal(t, "night", first.TimeOfDay)
	assert.InDelta(t, -22.12, first.Latitude, 1e-9)
	assert.InDelta(t, 118.5, first.StepLength, 1e-9)

	timestamps, err := store.DistinctTimestamps()
	require.NoError(t, err)
	assert.Len(t, timestamps, 2)
}

func TestImportCSVMissingFile(t *testing.T) {
	store := newTestStore(t)

	_, err := ImportCSV(store, filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryFileIO, errors.CategoryOf(err))
}

func TestImportCSVMissingColumn(t *testing.T) {
	store := newTestStore(t)
	path := writeCSV(t, "animal_id,species\nA1,elephant\n")

	_, err := ImportCSV(store, path)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.CategoryOf(err))
	assert.Contains(t, err.Error(), "datetime")
}

func TestImportCSVBadRow(t *testing.T) {
	store := newTestStore(t)
	bad := `animal_id,species,sex,ToD,datetime,latitude,longtitude,speed,step_length,turn_angle
A1,elephant,female,night,not-a-date,-22.12,32.32,4.2,118.5,12.0
`
	_, err := ImportCSV(store, writeCSV(t, bad))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.CategoryOf(err))
}
