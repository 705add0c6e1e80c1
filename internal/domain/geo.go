package domain

import "math"

// ProjectXYZ converts a geodetic coordinate to a point on the unit sphere.
// Nearest-neighbor comparisons must happen in this embedding for both grid
// points and targets: comparing raw degrees breaks at the antimeridian, where
// -179.9 and +179.9 are 0.2 degrees apart, not 359.8.
func ProjectXYZ(lat, lon float64) (x, y, z float64) {
	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180
	x = math.Cos(latRad) * math.Cos(lonRad)
	y = math.Cos(latRad) * math.Sin(lonRad)
	z = math.Sin(latRad)
	return x, y, z
}

// NormalizeLon maps a longitude in [0, 360) convention to [-180, 180].
// GRIB grids commonly store longitudes as positive-east from 0.
func NormalizeLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}
