package utils

import (
	"math"

	"safeher/internal/models"
)

// EarthRadiusMeters is the spherical-Earth radius used by the Haversine
// formula. City-scale distances are accurate to well under a meter.
const EarthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two points.
// Symmetric, zero at identity; spherical approximation only.
func DistanceMeters(a, b models.GeoPoint) float64 {
	return haversineMeters(a.Lat, a.Lng, b.Lat, b.Lng)
}

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// IsWithinRadiusMeters reports whether point lies within radius of center.
func IsWithinRadiusMeters(center, point models.GeoPoint, radius float64) bool {
	return DistanceMeters(center, point) <= radius
}

// IsValidCoordinates rejects out-of-range and non-finite coordinates.
func IsValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// CalculateCenter returns the arithmetic mean of a point set.
func CalculateCenter(points []models.GeoPoint) models.GeoPoint {
	if len(points) == 0 {
		return models.GeoPoint{}
	}

	var totalLat, totalLng float64
	for _, p := range points {
		totalLat += p.Lat
		totalLng += p.Lng
	}

	return models.GeoPoint{
		Lat: totalLat / float64(len(points)),
		Lng: totalLng / float64(len(points)),
	}
}

type Bounds struct {
	Northeast models.GeoPoint `json:"northeast"`
	Southwest models.GeoPoint `json:"southwest"`
}

// CalculateBounds returns the bounding box of a point set, or nil for an
// empty set.
func CalculateBounds(points []models.GeoPoint) *Bounds {
	if len(points) == 0 {
		return nil
	}

	minLat, maxLat := points[0].Lat, points[0].Lat
	minLng, maxLng := points[0].Lng, points[0].Lng

	for _, p := range points {
		if p.Lat < minLat {
			minLat = p.Lat
		}
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
		if p.Lng < minLng {
			minLng = p.Lng
		}
		if p.Lng > maxLng {
			maxLng = p.Lng
		}
	}

	return &Bounds{
		Northeast: models.GeoPoint{Lat: maxLat, Lng: maxLng},
		Southwest: models.GeoPoint{Lat: minLat, Lng: minLng},
	}
}
