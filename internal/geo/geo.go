// Package geo provides the spherical distance math behind proximity queries.
package geo

import "math"

// EarthRadiusMeters is the mean earth radius used for spherical distance.
const EarthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two
// coordinate pairs.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// BoundingBox is a rectangular lat/lng window. When FullLngScan is set the
// longitude bounds are meaningless and callers must scan all longitudes; this
// happens near the poles and across the antimeridian.
type BoundingBox struct {
	MinLat      float64
	MaxLat      float64
	MinLng      float64
	MaxLng      float64
	FullLngScan bool
}

// BoundingBoxAround returns a box guaranteed to contain every point within
// radiusMeters of the center. The box is a prefilter only; exact membership
// is decided by Haversine afterwards.
func BoundingBoxAround(lat, lng, radiusMeters float64) BoundingBox {
	latDelta := radiusMeters / EarthRadiusMeters * 180 / math.Pi

	box := BoundingBox{
		MinLat: math.Max(lat-latDelta, -90),
		MaxLat: math.Min(lat+latDelta, 90),
	}

	// Near a pole the longitude window degenerates; fall back to a full scan.
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat <= 0 || box.MinLat <= -90 || box.MaxLat >= 90 {
		box.FullLngScan = true
		return box
	}

	lngDelta := latDelta / cosLat
	if lngDelta >= 180 {
		box.FullLngScan = true
		return box
	}

	box.MinLng = lng - lngDelta
	box.MaxLng = lng + lngDelta
	if box.MinLng < -180 || box.MaxLng > 180 {
		// Window crosses the antimeridian; a single BETWEEN cannot express it.
		box.FullLngScan = true
	}
	return box
}
