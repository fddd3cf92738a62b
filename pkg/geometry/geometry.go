// Package geometry provides the vector primitives, WGS84 ellipsoid
// conversions, and observer-relative look-angle computation (elevation,
// azimuth, range) used throughout the pipeline. It has no dependency on
// any other orbitpipe package so that pkg/timeframe and pkg/propagator
// can both build on its Vector3/Geodetic types without a cycle.
package geometry

import "math"

// WGS84 ellipsoid parameters.
const (
	WGS84SemiMajorAxisKm = 6378.137
	WGS84Flattening      = 1.0 / 298.257223563
)

var wgs84EccentricitySquared = WGS84Flattening * (2 - WGS84Flattening)

// Vector3 is a 3-component Cartesian vector. Depending on context it
// holds a position in kilometers or a velocity in kilometers/second.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns v+w.
func (v Vector3) Add(w Vector3) Vector3 { return Vector3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v-w.
func (v Vector3) Sub(w Vector3) Vector3 { return Vector3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by s.
func (v Vector3) Scale(s float64) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and w.
func (v Vector3) Dot(w Vector3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product v x w.
func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Geodetic is a WGS84 geodetic position.
type Geodetic struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeKm   float64
}

// ObserverPosition is a ground observer's geodetic location. It is a
// distinct name from Geodetic for readability at call sites, but has the
// identical shape.
type ObserverPosition struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeKm   float64
}

func (o ObserverPosition) geodetic() Geodetic {
	return Geodetic{LatitudeDeg: o.LatitudeDeg, LongitudeDeg: o.LongitudeDeg, AltitudeKm: o.AltitudeKm}
}

// GeodeticToECEF converts a WGS84 geodetic position to an Earth-Centered
// Earth-Fixed Cartesian position in kilometers.
func GeodeticToECEF(g Geodetic) Vector3 {
	latRad := g.LatitudeDeg * math.Pi / 180.0
	lonRad := g.LongitudeDeg * math.Pi / 180.0

	sinLat, cosLat := math.Sin(latRad), math.Cos(latRad)
	sinLon, cosLon := math.Sin(lonRad), math.Cos(lonRad)

	n := WGS84SemiMajorAxisKm / math.Sqrt(1-wgs84EccentricitySquared*sinLat*sinLat)

	return Vector3{
		X: (n + g.AltitudeKm) * cosLat * cosLon,
		Y: (n + g.AltitudeKm) * cosLat * sinLon,
		Z: (n*(1-wgs84EccentricitySquared) + g.AltitudeKm) * sinLat,
	}
}

// LookAngles is the observer-relative position of a satellite: elevation
// and azimuth in degrees, range in kilometers.
type LookAngles struct {
	ElevationDeg float64
	AzimuthDeg   float64
	RangeKm      float64
}

// overheadEastNorthEpsilonKm is the magnitude below which the horizontal
// ENU component is treated as "directly overhead".
const overheadEastNorthEpsilonKm = 1e-9

// Observe computes the look angles from a ground observer to a satellite,
// both given in/converted to the same Earth-fixed frame. satECEF must
// already be in the ECEF/ITRF frame (callers transform TEME positions via
// pkg/timeframe before calling Observe — this keeps geometry free of any
// dependency on time-scale handling).
func Observe(observer ObserverPosition, satECEF Vector3) LookAngles {
	obsECEF := GeodeticToECEF(observer.geodetic())
	delta := satECEF.Sub(obsECEF)

	latRad := observer.LatitudeDeg * math.Pi / 180.0
	lonRad := observer.LongitudeDeg * math.Pi / 180.0
	sinLat, cosLat := math.Sin(latRad), math.Cos(latRad)
	sinLon, cosLon := math.Sin(lonRad), math.Cos(lonRad)

	east := -sinLon*delta.X + cosLon*delta.Y
	north := -sinLat*cosLon*delta.X - sinLat*sinLon*delta.Y + cosLat*delta.Z
	up := cosLat*cosLon*delta.X + cosLat*sinLon*delta.Y + sinLat*delta.Z

	rangeKm := delta.Norm()

	horizontal := math.Hypot(east, north)

	var azimuthRad float64
	if horizontal < overheadEastNorthEpsilonKm {
		azimuthRad = 0
	} else {
		azimuthRad = math.Atan2(east, north)
	}
	azimuthDeg := math.Mod(azimuthRad*180.0/math.Pi+360.0, 360.0)

	elevationRad := math.Atan2(up, horizontal)
	elevationDeg := elevationRad * 180.0 / math.Pi

	return LookAngles{
		ElevationDeg: elevationDeg,
		AzimuthDeg:   azimuthDeg,
		RangeKm:      rangeKm,
	}
}

// RangeRate computes the closing/opening rate (km/s) between an observer
// and a satellite given the satellite's ECEF velocity. Positive values
// mean the satellite is receding.
func RangeRate(observer ObserverPosition, satECEF, satVelECEF Vector3) float64 {
	obsECEF := GeodeticToECEF(observer.geodetic())
	delta := satECEF.Sub(obsECEF)
	r := delta.Norm()
	if r == 0 {
		return 0
	}
	return delta.Dot(satVelECEF) / r
}
