package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// DefaultIntensity is used when an upstream point carries no intensity.
const DefaultIntensity = 0.5

// HeatPoint is a single weighted location on the heat overlay.
type HeatPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Intensity float64 `json:"intensity"`
}

// NewHeatPoint builds a point. A missing, zero or NaN intensity becomes
// DefaultIntensity; anything else is clamped into [0,1].
func NewHeatPoint(lat, lng float64, intensity *float64) HeatPoint {
	i := DefaultIntensity
	if intensity != nil && *intensity != 0 && !math.IsNaN(*intensity) {
		i = clampUnit(*intensity)
	}
	return HeatPoint{Latitude: lat, Longitude: lng, Intensity: i}
}

// Tuple returns the [lat, lng, intensity] form consumed by the heat layer.
func (p HeatPoint) Tuple() [3]float64 {
	return [3]float64{p.Latitude, p.Longitude, p.Intensity}
}

// UnmarshalJSON accepts both {"latitude":..,"longitude":..,"intensity":..}
// and the positional [lat, lng, intensity] form the campaign API emits.
func (p *HeatPoint) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return fmt.Errorf("heat point: empty value")
	}

	if trimmed[0] == '[' {
		var tuple []*float64
		if err := json.Unmarshal(trimmed, &tuple); err != nil {
			return fmt.Errorf("heat point tuple: %w", err)
		}
		if len(tuple) < 2 || tuple[0] == nil || tuple[1] == nil {
			return fmt.Errorf("heat point tuple: need at least latitude and longitude, got %d values", len(tuple))
		}
		var intensity *float64
		if len(tuple) > 2 {
			intensity = tuple[2]
		}
		*p = NewHeatPoint(*tuple[0], *tuple[1], intensity)
		return nil
	}

	var obj struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Intensity *float64 `json:"intensity"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("heat point object: %w", err)
	}
	if obj.Latitude == nil || obj.Longitude == nil {
		return fmt.Errorf("heat point object: missing latitude or longitude")
	}
	*p = NewHeatPoint(*obj.Latitude, *obj.Longitude, obj.Intensity)
	return nil
}

// LocationUpdate is the payload of a live "location_update" event.
type LocationUpdate struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Intensity *float64 `json:"intensity,omitempty"`
}

// UnmarshalJSON rejects updates without both coordinates, so a bare
// {"intensity":..} never turns into a point at (0,0).
func (u *LocationUpdate) UnmarshalJSON(b []byte) error {
	var obj struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Intensity *float64 `json:"intensity"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("location update: %w", err)
	}
	if obj.Latitude == nil || obj.Longitude == nil {
		return fmt.Errorf("location update: missing latitude or longitude")
	}
	*u = LocationUpdate{Latitude: *obj.Latitude, Longitude: *obj.Longitude, Intensity: obj.Intensity}
	return nil
}

// Point converts the update into a HeatPoint.
func (u LocationUpdate) Point() HeatPoint {
	return NewHeatPoint(u.Latitude, u.Longitude, u.Intensity)
}

// HeatmapSnapshot is the body of GET /api/v1/locations/heatmap-data.
type HeatmapSnapshot struct {
	Points []HeatPoint `json:"heatmap_points"`
}

// Tuples converts points into the [lat, lng, intensity] rows used by the overlay.
func Tuples(points []HeatPoint) [][3]float64 {
	out := make([][3]float64, len(points))
	for i, p := range points {
		out[i] = p.Tuple()
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
