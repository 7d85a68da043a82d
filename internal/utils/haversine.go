package utils

import (
	"math"

	"github.com/salesday/backend/internal/models"
)

const earthRadiusKm = 6371.0

func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	lat1R := degreesToRadians(lat1)
	lat2R := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1R)*math.Cos(lat2R)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// DistanceMeters is the great-circle distance between two points, rounded to
// whole meters.
func DistanceMeters(from, to models.Coordinates) int {
	return int(math.Round(HaversineKm(from.Lat, from.Lon, to.Lat, to.Lon) * 1000))
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180
}
