// Package geo holds the great-circle math used by candidate generation,
// ranking, and the lookup caches. All functions are pure.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for all great-circle math.
const EarthRadiusKm = 6371.0088

// Unit conversions between statute miles and kilometers.
const (
	MilesToKm = 1.609344
	KmToMiles = 0.621371
)

// Point is a WGS84 coordinate. Latitude in [-90,90], longitude in [-180,180].
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

// DistanceKm returns the haversine great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLon := deg2rad(b.Lon - a.Lon)
	lat1 := deg2rad(a.Lat)
	lat2 := deg2rad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// BearingDeg returns the initial bearing from a to b, normalized to [0,360).
func BearingDeg(a, b Point) float64 {
	lat1 := deg2rad(a.Lat)
	lat2 := deg2rad(b.Lat)
	dLon := deg2rad(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Mod(rad2deg(math.Atan2(y, x))+360, 360)
}

// Destination returns the point reached by traveling distKm from origin at
// the given bearing. The asin argument is clamped to [-1,1] so near-antipodal
// inputs cannot produce NaN; longitude is normalized to [-180,180].
func Destination(origin Point, bearingDeg, distKm float64) Point {
	b := deg2rad(bearingDeg)
	dR := distKm / EarthRadiusKm
	lat1 := deg2rad(origin.Lat)
	lon1 := deg2rad(origin.Lon)

	sinLat2 := math.Sin(lat1)*math.Cos(dR) + math.Cos(lat1)*math.Sin(dR)*math.Cos(b)
	sinLat2 = math.Max(-1, math.Min(1, sinLat2))
	lat2 := math.Asin(sinLat2)

	lon2 := lon1 + math.Atan2(
		math.Sin(b)*math.Sin(dR)*math.Cos(lat1),
		math.Cos(dR)-math.Sin(lat1)*sinLat2,
	)

	return Point{
		Lat: rad2deg(lat2),
		Lon: math.Mod(rad2deg(lon2)+540, 360) - 180,
	}
}

var cardinals = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Cardinal maps a bearing to one of the 16 compass winds by nearest
// 22.5-degree sector, wrapping at 360.
func Cardinal(bearingDeg float64) string {
	b := math.Mod(math.Mod(bearingDeg, 360)+360, 360)
	idx := int(math.Round(b/22.5)) % 16
	return cardinals[idx]
}

// CellKey quantizes a point to a fixed-precision "lat,lon" string. Two
// decimals give roughly 1 km cells, three roughly 100 m, which is how the
// weather and place caches key their entries.
func CellKey(p Point, decimals int) string {
	return fmt.Sprintf("%.*f,%.*f", decimals, p.Lat, decimals, p.Lon)
}
