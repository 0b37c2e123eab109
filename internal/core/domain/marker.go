package domain

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Marker is a named point location on the map.
type Marker struct {
	ID       string   `json:"id,omitempty"`
	Position Position `json:"position"`
	Name     string   `json:"name"`
}

// NewMarker returns a marker with a freshly generated id.
func NewMarker(name string, pos Position) Marker {
	return Marker{ID: uuid.NewString(), Position: pos, Name: name}
}

// DefaultMarkers is the collection shown before anything has been saved.
func DefaultMarkers() []Marker {
	return []Marker{
		NewMarker("Dorobantilor", Position{Lat: 46.772397, Lng: 23.603139}),
		NewMarker("Teatrul National Cluj-Napoca", Position{Lat: 46.770578, Lng: 23.597259}),
		NewMarker("Vivo Mall Cluj-Napoca", Position{Lat: 46.752730, Lng: 23.531464}),
	}
}

// IndexOf returns the index of the marker with the given id, or -1.
func IndexOf(markers []Marker, id string) int {
	return slices.IndexFunc(markers, func(m Marker) bool { return m.ID == id })
}

// EncodeSnapshot serialises the collection in order.
func EncodeSnapshot(markers []Marker) ([]byte, error) {
	if markers == nil {
		markers = []Marker{}
	}
	return json.Marshal(markers)
}

// snapshotElement mirrors Marker with a nullable position so that missing
// coordinates are told apart from (0, 0).
type snapshotElement struct {
	ID       string    `json:"id"`
	Position *Position `json:"position"`
	Name     string    `json:"name"`
}

// DecodeSnapshot parses a saved collection. Elements written without an id
// get one assigned; duplicate ids are reassigned so every marker stays addressable.
func DecodeSnapshot(data []byte) ([]Marker, error) {
	var elems []*snapshotElement
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	markers := make([]Marker, 0, len(elems))
	seen := make(map[string]struct{}, len(elems))
	for i, e := range elems {
		if e == nil {
			return nil, fmt.Errorf("%w: marker %d is null", ErrCorruptSnapshot, i)
		}
		if e.Position == nil {
			return nil, fmt.Errorf("%w: marker %d has no position", ErrCorruptSnapshot, i)
		}
		if !e.Position.Valid() {
			return nil, fmt.Errorf("%w: marker %d has position %v", ErrCorruptSnapshot, i, *e.Position)
		}
		m := Marker{ID: e.ID, Position: *e.Position, Name: e.Name}
		if _, dup := seen[m.ID]; m.ID == "" || dup {
			m.ID = uuid.NewString()
		}
		seen[m.ID] = struct{}{}
		markers = append(markers, m)
	}
	return markers, nil
}
