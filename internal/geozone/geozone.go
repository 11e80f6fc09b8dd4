// Package geozone maps GPS coordinates to camera-trap zones.
package geozone

import (
	"github.com/ecoguard/ecoguard-go/internal/conf"
)

// Resolver maps a coordinate to the identifier of the zone covering it.
// Zones are evaluated in the order they were configured and the first
// matching box wins, so resolution of overlapping zones is deterministic.
type Resolver struct {
	zones []conf.ZoneBox
}

// New creates a Resolver over the given zone table. The slice is copied so
// later mutation of the caller's table cannot change resolution order.
func New(zones []conf.ZoneBox) *Resolver {
	copied := make([]conf.ZoneBox, len(zones))
	copy(copied, zones)
	return &Resolver{zones: copied}
}

// Resolve returns the identifier of the first zone whose bounding box
// contains the coordinate. All four bounds are inclusive. The second return
// value is false when the coordinate lies outside every zone, which is a
// valid outcome, not an error.
func (r *Resolver) Resolve(latitude, longitude float64) (string, bool) {
	for i := range r.zones {
		z := &r.zones[i]
		if latitude >= z.MinLatitude && latitude <= z.MaxLatitude &&
			longitude >= z.MinLongitude && longitude <= z.MaxLongitude {
			return z.ID, true
		}
	}
	return "", false
}

// Zones returns the number of configured zones.
func (r *Resolver) Zones() int {
	return len(r.zones)
}
