package geo

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// Location represents a geographic coordinate.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Bounds is a fixed latitude/longitude rectangle the map view cannot leave.
type Bounds struct {
	bound orb.Bound
}

// NewBounds builds a box from its south-west and north-east corners.
func NewBounds(sw, ne Location) Bounds {
	return Bounds{bound: orb.Bound{
		Min: orb.Point{sw.Longitude, sw.Latitude},
		Max: orb.Point{ne.Longitude, ne.Latitude},
	}}
}

// SouthWest returns the lower-left corner.
func (b Bounds) SouthWest() Location {
	return Location{Latitude: b.bound.Min.Lat(), Longitude: b.bound.Min.Lon()}
}

// NorthEast returns the upper-right corner.
func (b Bounds) NorthEast() Location {
	return Location{Latitude: b.bound.Max.Lat(), Longitude: b.bound.Max.Lon()}
}

// Contains reports whether loc lies inside the box, edges included.
func (b Bounds) Contains(loc Location) bool {
	return b.bound.Contains(orb.Point{loc.Longitude, loc.Latitude})
}

// Clamp moves loc to the nearest point inside the box. With a viscosity of
// 1.0 this is exactly where a pan that tries to leave the box ends up.
func (b Bounds) Clamp(loc Location) Location {
	return Location{
		Latitude:  clamp(loc.Latitude, b.bound.Min.Lat(), b.bound.Max.Lat()),
		Longitude: clamp(loc.Longitude, b.bound.Min.Lon(), b.bound.Max.Lon()),
	}
}

// Pan shifts center by the given deltas and keeps the result inside the box.
func (b Bounds) Pan(center Location, dLat, dLng float64) Location {
	return b.Clamp(Location{
		Latitude:  center.Latitude + dLat,
		Longitude: center.Longitude + dLng,
	})
}

// LeafletBounds returns [[swLat, swLng], [neLat, neLng]].
func (b Bounds) LeafletBounds() [2][2]float64 {
	sw, ne := b.SouthWest(), b.NorthEast()
	return [2][2]float64{{sw.Latitude, sw.Longitude}, {ne.Latitude, ne.Longitude}}
}

// Identity returns a stable key for a coordinate: the leaf S2 cell token
// (roughly one square centimetre), so re-encoded floats of the same spot match.
func Identity(loc Location) string {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(loc.Latitude, loc.Longitude)).ToToken()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
