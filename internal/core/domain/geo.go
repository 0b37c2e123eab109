package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Position is a WGS 84 coordinate. On the wire it is a two-element
// array [lat, lng], the layout the map widget and saved snapshots use.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both coordinates are finite and in range.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// String formats the position the way marker popups show it.
func (p Position) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Lat, p.Lng)
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("position: expected [lat, lng], got %d values", len(pair))
	}
	p.Lat, p.Lng = pair[0], pair[1]
	return nil
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Extend grows b to include p.
func (b Bounds) Extend(p Position) Bounds {
	return Bounds{
		MinLat: math.Min(b.MinLat, p.Lat),
		MinLng: math.Min(b.MinLng, p.Lng),
		MaxLat: math.Max(b.MaxLat, p.Lat),
		MaxLng: math.Max(b.MaxLng, p.Lng),
	}
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Position {
	return Position{Lat: (b.MinLat + b.MaxLat) / 2, Lng: (b.MinLng + b.MaxLng) / 2}
}
