package geo

import "math"

const earthRadiusM = 6371000.0

// Polygon is an exterior ring of [lon, lat] pairs, GeoJSON coordinate order.
type Polygon [][2]float64

func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// InitialBearing returns the forward azimuth in degrees [0, 360).
func InitialBearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	theta := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(theta+360, 360)
}

// BearingDelta returns the minimal absolute angle between two bearings, in
// degrees [0, 180].
func BearingDelta(b1, b2 float64) float64 {
	d := math.Abs(b1 - b2)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// PointInPolygon tests containment with ray casting. Points exactly on an
// edge may land on either side; callers treat the test as approximate.
func PointInPolygon(lon, lat float64, poly Polygon) bool {
	if len(poly) < 3 {
		return false
	}

	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		xi, yi := poly[i][0], poly[i][1]
		xj, yj := poly[j][0], poly[j][1]

		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}

	return inside
}
