package geo

import "github.com/tidwall/geodesic"

// DistanceKM returns the geodesic distance between a and b on the WGS-84
// ellipsoid, in kilometers.
func DistanceKM(a, b Point) float64 {
	var meters float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &meters, nil, nil)
	return meters / 1000
}
