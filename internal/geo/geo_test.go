package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineZeroDistance(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(12.9716, 77.5946, 12.9716, 77.5946))
}

func TestHaversineKnownDistances(t *testing.T) {
	// One degree of longitude at the equator is ~111.19 km.
	d := Haversine(0, 0, 0, 1)
	assert.InDelta(t, 111195, d, 50)

	// One degree of latitude is the same length at any longitude.
	d = Haversine(45, 10, 46, 10)
	assert.InDelta(t, 111195, d, 50)

	// Bangalore city center to Mysore is roughly 128-130 km.
	d = Haversine(12.9716, 77.5946, 12.2958, 76.6394)
	assert.InDelta(t, 128500, d, 3000)
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(12.9716, 77.5946, 13.0827, 80.2707)
	b := Haversine(13.0827, 80.2707, 12.9716, 77.5946)
	assert.InDelta(t, a, b, 1e-6)
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	lat, lng := 12.9716, 77.5946
	radius := 10000.0
	box := BoundingBoxAround(lat, lng, radius)

	assert.False(t, box.FullLngScan)

	// Points just inside the radius in each cardinal direction must fall
	// inside the box.
	probes := []struct{ plat, plng float64 }{
		{lat + 0.089, lng}, // ~9.9 km north
		{lat - 0.089, lng},
		{lat, lng + 0.091}, // ~9.9 km east at this latitude
		{lat, lng - 0.091},
	}
	for _, p := range probes {
		assert.LessOrEqual(t, box.MinLat, p.plat)
		assert.GreaterOrEqual(t, box.MaxLat, p.plat)
		assert.LessOrEqual(t, box.MinLng, p.plng)
		assert.GreaterOrEqual(t, box.MaxLng, p.plng)
	}
}

func TestBoundingBoxAntimeridian(t *testing.T) {
	box := BoundingBoxAround(0, 179.99, 50000)
	assert.True(t, box.FullLngScan)
}

func TestBoundingBoxNearPole(t *testing.T) {
	box := BoundingBoxAround(89.9, 0, 50000)
	assert.True(t, box.FullLngScan)
	assert.Equal(t, 90.0, box.MaxLat)
}

func TestBoundingBoxClampsLatitude(t *testing.T) {
	box := BoundingBoxAround(-89.99, 0, 100000)
	assert.Equal(t, -90.0, box.MinLat)
}
