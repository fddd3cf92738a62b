package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestVector3Ops(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: 4, Y: -1, Z: 2}

	if got := a.Add(b); got != (Vector3{5, 1, 5}) {
		t.Errorf("Add = %+v, want {5 1 5}", got)
	}
	if got := a.Sub(b); got != (Vector3{-3, 3, 1}) {
		t.Errorf("Sub = %+v, want {-3 3 1}", got)
	}
	if got := a.Scale(2); got != (Vector3{2, 4, 6}) {
		t.Errorf("Scale = %+v, want {2 4 6}", got)
	}
	if got := a.Dot(b); got != 4-2+6 {
		t.Errorf("Dot = %v, want %v", got, 4-2+6)
	}
	unit := Vector3{X: 3, Y: 4, Z: 0}
	if got := unit.Norm(); !almostEqual(got, 5, 1e-12) {
		t.Errorf("Norm = %v, want 5", got)
	}
}

func TestGeodeticToECEFEquatorialSurface(t *testing.T) {
	pos := GeodeticToECEF(Geodetic{LatitudeDeg: 0, LongitudeDeg: 0, AltitudeKm: 0})
	if !almostEqual(pos.X, WGS84SemiMajorAxisKm, 1e-6) {
		t.Errorf("X = %v, want %v", pos.X, WGS84SemiMajorAxisKm)
	}
	if !almostEqual(pos.Y, 0, 1e-9) || !almostEqual(pos.Z, 0, 1e-9) {
		t.Errorf("expected Y=Z=0 at (0,0,0), got Y=%v Z=%v", pos.Y, pos.Z)
	}
}

func TestGeodeticToECEFPoleIsFlattened(t *testing.T) {
	pos := GeodeticToECEF(Geodetic{LatitudeDeg: 90, LongitudeDeg: 0, AltitudeKm: 0})
	polarRadius := WGS84SemiMajorAxisKm * (1 - WGS84Flattening)
	if !almostEqual(pos.Z, polarRadius, 1e-3) {
		t.Errorf("polar Z = %v, want approx %v (flattened less than equatorial radius)", pos.Z, polarRadius)
	}
	if pos.Z >= WGS84SemiMajorAxisKm {
		t.Errorf("polar radius %v should be smaller than equatorial radius %v", pos.Z, WGS84SemiMajorAxisKm)
	}
}

func TestObserveZenithSatellite(t *testing.T) {
	observer := ObserverPosition{LatitudeDeg: 45, LongitudeDeg: 10, AltitudeKm: 0}
	obsECEF := GeodeticToECEF(observer.geodetic())

	// Place the satellite 550 km along the observer's geodetic up vector
	// (the ellipsoid normal at its latitude/longitude), which is the
	// zenith of the ENU frame Observe uses, so elevation should read ~90
	// deg regardless of azimuth. The geocentric radial vector is not the
	// zenith: at 45 deg latitude it tilts about 0.19 deg off the normal.
	latRad := observer.LatitudeDeg * math.Pi / 180.0
	lonRad := observer.LongitudeDeg * math.Pi / 180.0
	up := Vector3{X: math.Cos(latRad) * math.Cos(lonRad), Y: math.Cos(latRad) * math.Sin(lonRad), Z: math.Sin(latRad)}
	satECEF := obsECEF.Add(up.Scale(550))

	angles := Observe(observer, satECEF)
	if !almostEqual(angles.ElevationDeg, 90, 1e-6) {
		t.Errorf("ElevationDeg = %v, want ~90", angles.ElevationDeg)
	}
	if !almostEqual(angles.RangeKm, 550, 1e-6) {
		t.Errorf("RangeKm = %v, want ~550", angles.RangeKm)
	}
}

func TestObserveBelowHorizonIsNegativeElevation(t *testing.T) {
	observer := ObserverPosition{LatitudeDeg: 0, LongitudeDeg: 0, AltitudeKm: 0}
	obsECEF := GeodeticToECEF(observer.geodetic())
	// A point on the opposite side of the Earth is below the horizon.
	antipode := obsECEF.Scale(-1)

	angles := Observe(observer, antipode)
	if angles.ElevationDeg >= 0 {
		t.Errorf("ElevationDeg = %v, want negative for an antipodal point", angles.ElevationDeg)
	}
}

func TestRangeRateSignConvention(t *testing.T) {
	observer := ObserverPosition{LatitudeDeg: 45, LongitudeDeg: 10, AltitudeKm: 0}
	obsECEF := GeodeticToECEF(observer.geodetic())
	dir := obsECEF.Scale(1.0 / obsECEF.Norm())
	satECEF := obsECEF.Add(dir.Scale(550))

	receding := dir.Scale(1.0) // velocity along the same radial direction: moving away
	if rate := RangeRate(observer, satECEF, receding); rate <= 0 {
		t.Errorf("RangeRate = %v, want positive for a receding satellite", rate)
	}

	approaching := dir.Scale(-1.0)
	if rate := RangeRate(observer, satECEF, approaching); rate >= 0 {
		t.Errorf("RangeRate = %v, want negative for an approaching satellite", rate)
	}
}

func TestRangeRateZeroRangeIsZero(t *testing.T) {
	observer := ObserverPosition{LatitudeDeg: 0, LongitudeDeg: 0, AltitudeKm: 0}
	obsECEF := GeodeticToECEF(observer.geodetic())
	if rate := RangeRate(observer, obsECEF, Vector3{X: 1, Y: 1, Z: 1}); rate != 0 {
		t.Errorf("RangeRate at zero range = %v, want 0", rate)
	}
}
