// Package geo holds the small amount of spherical geometry the scrap map needs.
package geo

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius
	EarthRadiusMeters = 6371000.0
	// MetersPerDegreeLat approximates the length of one degree of latitude
	MetersPerDegreeLat = 111000.0
)

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceFunc returns the distance between two points in metres
type DistanceFunc func(a, b Point) float64

// Haversine returns the great-circle distance between a and b in metres
func Haversine(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Centroid returns the arithmetic mean of points. ok is false for an empty slice.
func Centroid(points []Point) (c Point, ok bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	for _, p := range points {
		c.Lat += p.Lat
		c.Lng += p.Lng
	}
	n := float64(len(points))
	c.Lat /= n
	c.Lng /= n
	return c, true
}

// MaxDistance returns the largest distance from center to any of points
func MaxDistance(center Point, points []Point, distance DistanceFunc) float64 {
	var farthest float64
	for _, p := range points {
		if d := distance(center, p); d > farthest {
			farthest = d
		}
	}
	return farthest
}

// LatitudeSpread approximates a radius from the largest latitude offset only.
// Longitude is ignored, so the result undershoots for east-west spreads.
func LatitudeSpread(center Point, points []Point) float64 {
	var farthest float64
	for _, p := range points {
		if d := math.Abs(p.Lat - center.Lat); d > farthest {
			farthest = d
		}
	}
	return farthest * MetersPerDegreeLat
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
