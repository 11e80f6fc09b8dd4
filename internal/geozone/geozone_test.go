package geozone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoguard/ecoguard-go/internal/conf"
)

func TestResolveInsideZone(t *testing.T) {
	r := New(conf.DefaultZones())

	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"inside Z01", -22.12, 32.32, "Z01"},
		{"inside Z02", -22.12, 32.17, "Z02"},
		{"inside Z06", -22.01, 32.16, "Z06"},
		{"inside Z07", -21.15, 31.65, "Z07"},
		{"inside Z10", -20.85, 31.95, "Z10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, ok := r.Resolve(tt.lat, tt.lon)
			require.True(t, ok, "coordinate should resolve")
			assert.Equal(t, tt.want, zone)
		})
	}
}

func TestResolveOutsideAllZones(t *testing.T) {
	r := New(conf.DefaultZones())

	zone, ok := r.Resolve(0, 0)
	assert.False(t, ok, "equator point is outside the reserve")
	assert.Empty(t, zone)

	// Just beyond the northern edge of Z10.
	zone, ok = r.Resolve(-20.79, 31.95)
	assert.False(t, ok)
	assert.Empty(t, zone)
}

func TestResolveBoundsAreInclusive(t *testing.T) {
	r := New([]conf.ZoneBox{
		{ID: "Z01", MinLatitude: -22.15, MaxLatitude: -22.10, MinLongitude: 32.30, MaxLongitude: 32.35},
	})

	corners := [][2]float64{
		{-22.15, 32.30},
		{-22.15, 32.35},
		{-22.10, 32.30},
		{-22.10, 32.35},
	}
	for _, c := range corners {
		zone, ok := r.Resolve(c[0], c[1])
		require.True(t, ok, "corner %v should be inside", c)
		assert.Equal(t, "Z01", zone)
	}
}

func TestResolveOverlapPicksFirstDeclared(t *testing.T) {
	overlapping := []conf.ZoneBox{
		{ID: "FIRST", MinLatitude: -1, MaxLatitude: 1, MinLongitude: -1, MaxLongitude: 1},
		{ID: "SECOND", MinLatitude: -1, MaxLatitude: 1, MinLongitude: -1, MaxLongitude: 1},
	}
	r := New(overlapping)

	for i := 0; i < 100; i++ {
		zone, ok := r.Resolve(0.5, 0.5)
		require.True(t, ok)
		require.Equal(t, "FIRST", zone, "overlap resolution must be stable")
	}
}

func TestNewCopiesZoneTable(t *testing.T) {
	zones := []conf.ZoneBox{
		{ID: "Z01", MinLatitude: -1, MaxLatitude: 1, MinLongitude: -1, MaxLongitude: 1},
	}
	r := New(zones)

	zones[0].ID = "MUTATED"
	zone, ok := r.Resolve(0, 0)
	require.True(t, ok)
	assert.Equal(t, "Z01", zone, "resolver must not observe caller mutation")
}
