package geospatial

import "math"

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
// Longitude deltas are clamped near the poles where cos(lat) approaches zero.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	cos := math.Cos(toRad(lat))
	lonDelta := 180.0
	if cos > 1e-9 {
		lonDelta = math.Min(180, radiusMeters/(111320.0*cos))
	}

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

// InBox reports whether (lat, lon) lies inside the box.
func InBox(lat, lon, minLat, minLon, maxLat, maxLon float64) bool {
	return lat >= minLat && lat <= maxLat && lon >= minLon && lon <= maxLon
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
