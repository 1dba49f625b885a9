package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	testCases := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{48.8566, 2.3522}, Point{48.8566, 2.3522}, 0},
		{"paris to london", Point{48.8566, 2.3522}, Point{51.5074, -0.1278}, 343.5},
		{"lisbon to madrid", Point{38.7223, -9.1393}, Point{40.4168, -3.7038}, 502.6},
		{"across antimeridian", Point{0, 179.9}, Point{0, -179.9}, 22.2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, DistanceKm(tc.a, tc.b), 1.0)
		})
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := Point{-33.8688, 151.2093}
	b := Point{35.6762, 139.6503}
	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
}

func TestPointValidate(t *testing.T) {
	assert.NoError(t, Point{0, 0}.Validate())
	assert.NoError(t, Point{-90, 180}.Validate())
	assert.ErrorIs(t, Point{91, 0}.Validate(), ErrInvalidCoordinate)
	assert.ErrorIs(t, Point{0, -181}.Validate(), ErrInvalidCoordinate)
	assert.ErrorIs(t, Point{math.NaN(), 0}.Validate(), ErrInvalidCoordinate)
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	center := Point{52.52, 13.405}
	box := BoundingBox(center, 50)

	assert.False(t, box.WrapsAntimeridian())
	assert.Less(t, box.MinLat, center.Lat)
	assert.Greater(t, box.MaxLat, center.Lat)

	// Points 49km due north/east are inside the box.
	north := Point{center.Lat + 49/111.2, center.Lng}
	assert.LessOrEqual(t, north.Lat, box.MaxLat)
	east := Point{center.Lat, center.Lng + 49/(111.2*math.Cos(center.Lat*math.Pi/180))}
	assert.LessOrEqual(t, east.Lng, box.MaxLng)
}

func TestBoundingBox_Antimeridian(t *testing.T) {
	box := BoundingBox(Point{-17.7, 179.8}, 100)
	assert.True(t, box.WrapsAntimeridian())
	assert.Greater(t, box.MinLng, 0.0)
	assert.Less(t, box.MaxLng, 0.0)
}

func TestBoundingBox_Pole(t *testing.T) {
	box := BoundingBox(Point{89.9, 0}, 50)
	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
	assert.Equal(t, 90.0, box.MaxLat)
}
