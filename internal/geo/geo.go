// Package geo has the great-circle helpers used for nearby posts and buddy
// proximity.
package geo

import (
	"errors"
	"math"
)

const earthRadiusKm = 6371.0088

var ErrInvalidCoordinate = errors.New("coordinate out of range")

type Point struct {
	Lat float64
	Lng float64
}

// Validate checks latitude is within ±90 and longitude within ±180.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) ||
		p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// DistanceKm is the haversine distance between two points.
func DistanceKm(a, b Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLat := lat2 - lat1
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Box is a lat/lng rectangle. When it crosses the antimeridian MinLng > MaxLng.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// WrapsAntimeridian reports whether the longitude range crosses ±180.
func (b Box) WrapsAntimeridian() bool {
	return b.MinLng > b.MaxLng
}

// BoundingBox returns a rectangle that contains every point within radiusKm
// of center. It over-covers, so results still need a DistanceKm check.
func BoundingBox(center Point, radiusKm float64) Box {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi
	minLat := center.Lat - dLat
	maxLat := center.Lat + dLat

	// Near a pole every longitude is in range.
	if minLat <= -90 || maxLat >= 90 {
		return Box{
			MinLat: math.Max(minLat, -90),
			MaxLat: math.Min(maxLat, 90),
			MinLng: -180,
			MaxLng: 180,
		}
	}

	dLng := dLat / math.Cos(toRad(center.Lat))
	if dLng >= 180 {
		return Box{MinLat: minLat, MaxLat: maxLat, MinLng: -180, MaxLng: 180}
	}
	return Box{
		MinLat: minLat,
		MaxLat: maxLat,
		MinLng: normalizeLng(center.Lng - dLng),
		MaxLng: normalizeLng(center.Lng + dLng),
	}
}

func normalizeLng(lng float64) float64 {
	for lng > 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return lng
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
