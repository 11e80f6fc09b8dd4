package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoguard/ecoguard-go/internal/errors"
)

// validSettings returns a settings struct that passes validation, for tests
// to break one field at a time.
func validSettings() *Settings {
	s := &Settings{}
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "ecoguard.db"
	s.Monitor.Interval = 60
	s.Monitor.Sink.URL = "http://127.0.0.1:8000/api/receive-prediction/"
	s.Monitor.Sink.Timeout = 30
	s.Models.Movement.ModelPath = "models/movement.tflite"
	s.Models.Movement.MappingsPath = "models/mappings.json"
	s.Models.Movement.Threshold = 0.5
	s.Models.Camera.ModelPath = "models/camera.tflite"
	s.Models.Camera.ImageRoot = "media/camera_zones"
	s.Models.Camera.InputSize = 224
	s.Zones = DefaultZones()
	return s
}

func TestValidateSettings(t *testing.T) {
	require.NoError(t, ValidateSettings(validSettings()), "baseline settings should validate")
}

func TestValidateSettingsFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"no database", func(s *Settings) { s.Output.SQLite.Enabled = false }},
		{"both databases", func(s *Settings) { s.Output.MySQL.Enabled = true }},
		{"empty sqlite path", func(s *Settings) { s.Output.SQLite.Path = "" }},
		{"zero interval", func(s *Settings) { s.Monitor.Interval = 0 }},
		{"negative interval", func(s *Settings) { s.Monitor.Interval = -5 }},
		{"zero sink timeout", func(s *Settings) { s.Monitor.Sink.Timeout = 0 }},
		{"empty sink url", func(s *Settings) { s.Monitor.Sink.URL = "" }},
		{"relative sink url", func(s *Settings) { s.Monitor.Sink.URL = "receive-prediction" }},
		{"empty movement model", func(s *Settings) { s.Models.Movement.ModelPath = "" }},
		{"empty mappings path", func(s *Settings) { s.Models.Movement.MappingsPath = "" }},
		{"threshold too high", func(s *Settings) { s.Models.Movement.Threshold = 1.0 }},
		{"empty camera model", func(s *Settings) { s.Models.Camera.ModelPath = "" }},
		{"zero input size", func(s *Settings) { s.Models.Camera.InputSize = 0 }},
		{"no zones", func(s *Settings) { s.Zones = nil }},
		{"duplicate zone id", func(s *Settings) { s.Zones = append(s.Zones, s.Zones[0]) }},
		{"inverted latitude box", func(s *Settings) { s.Zones[0].MinLatitude = 10; s.Zones[0].MaxLatitude = -10 }},
		{"inverted longitude box", func(s *Settings) { s.Zones[0].MinLongitude = 40; s.Zones[0].MaxLongitude = 30 }},
		{"notify enabled without broker", func(s *Settings) { s.Monitor.Notify.Enabled = true; s.Monitor.Notify.Broker = "" }},
		{"notify enabled without topic", func(s *Settings) {
			s.Monitor.Notify.Enabled = true
			s.Monitor.Notify.Broker = "tcp://localhost:1883"
			s.Monitor.Notify.Topic = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err, "expected validation failure")
			assert.Equal(t, errors.CategoryValidation, errors.CategoryOf(err), "expected validation category")
		})
	}
}

func TestDefaultZones(t *testing.T) {
	zones := DefaultZones()
	require.Len(t, zones, 10, "expected ten built-in zones")
	assert.Equal(t, "Z01", zones[0].ID, "declaration order must be stable")
	assert.Equal(t, "Z10", zones[9].ID, "declaration order must be stable")
	require.NoError(t, validateZones(zones), "built-in zones must validate")
}
