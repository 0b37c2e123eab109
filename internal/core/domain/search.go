package domain

import (
	"strings"

	"github.com/samber/lo"
)

// Filter returns the markers whose name contains query, ignoring case.
// An empty query matches everything. The input slice is never modified.
func Filter(markers []Marker, query string) []Marker {
	needle := strings.ToLower(query)
	return lo.Filter(markers, func(m Marker, _ int) bool {
		return strings.Contains(strings.ToLower(m.Name), needle)
	})
}

// BoundsOf returns the smallest box containing every marker.
// ok is false for an empty collection.
func BoundsOf(markers []Marker) (b Bounds, ok bool) {
	if len(markers) == 0 {
		return Bounds{}, false
	}
	first := markers[0].Position
	b = Bounds{MinLat: first.Lat, MinLng: first.Lng, MaxLat: first.Lat, MaxLng: first.Lng}
	for _, m := range markers[1:] {
		b = b.Extend(m.Position)
	}
	return b, true
}
