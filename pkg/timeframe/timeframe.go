// Package timeframe converts satellite state vectors between the
// TEME frame SGP4 propagates in and the Earth-fixed ITRF/WGS84 frame the
// rest of the pipeline reasons in. It applies the Earth-rotation
// (GMST) term always, and an optional polar-motion correction when a
// PolarMotionProvider supplies one; without a provider the result is
// capped at "sub-km" accuracy, which is documented rather than hidden.
package timeframe

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/dzeleniak/orbitpipe/pkg/geometry"
)

// EarthRotationRateRadPerSec is the WGS84 Earth rotation rate, rad/s.
const EarthRotationRateRadPerSec = 7.2921150e-5

// AccuracyBound documents how much of the TEME->ITRF transform chain a
// Converter actually applied.
type AccuracyBound string

const (
	// AccuracySubKm is returned when the default NoPolarMotionProvider is
	// in use: only the Earth-rotation (GMST) term is applied, which is
	// accurate to roughly sub-kilometer level for LEO altitudes. A wired
	// provider that reports no data for the requested epoch makes ToITRF
	// fail with ErrTimeOutOfRange instead.
	AccuracySubKm AccuracyBound = "sub-km"
	// AccuracyPolarCorrected is returned when a PolarMotionProvider
	// supplied a polar-motion correction for the requested epoch.
	AccuracyPolarCorrected AccuracyBound = "polar-motion-corrected"
)

// ErrTimeOutOfRange is returned by ToITRF when a non-default
// PolarMotionProvider is wired but reports no coverage for the
// requested epoch.
var ErrTimeOutOfRange = errors.New("timeframe: requested epoch outside polar motion provider range")

// ErrFrameTransformNonConvergent is returned by ToWGS84 when the
// iterative geodetic-latitude solve fails to converge within the
// allotted iterations.
var ErrFrameTransformNonConvergent = errors.New("timeframe: geodetic latitude solve did not converge")

// PolarMotionProvider supplies IERS polar-motion parameters (xp, yp, in
// radians) for a given UTC epoch. ok is false when the epoch falls
// outside whatever table or model the provider is backed by.
type PolarMotionProvider interface {
	Lookup(t time.Time) (xpRad, ypRad float64, ok bool)
}

// NoPolarMotionProvider is the default PolarMotionProvider: it never has
// data, so Converter always falls back to the Earth-rotation-only
// transform and reports AccuracySubKm.
type NoPolarMotionProvider struct{}

// Lookup always reports no data.
func (NoPolarMotionProvider) Lookup(time.Time) (float64, float64, bool) { return 0, 0, false }

// Converter performs TEME<->ITRF<->WGS84 conversions for a single polar
// motion source. It holds no per-call mutable state and is safe for
// concurrent use.
type Converter struct {
	polarMotion PolarMotionProvider
}

// NewConverter builds a Converter. A nil provider defaults to
// NoPolarMotionProvider.
func NewConverter(provider PolarMotionProvider) *Converter {
	if provider == nil {
		provider = NoPolarMotionProvider{}
	}
	return &Converter{polarMotion: provider}
}

// GMSTRadians computes the Greenwich Mean Sidereal Time, in radians, for
// the given UTC instant using the IAU-82 polynomial approximation.
func (c *Converter) GMSTRadians(t time.Time) float64 {
	jd := julianDate(t.UTC())
	jd0 := math.Floor(jd-0.5) + 0.5
	h := (jd - jd0) * 24.0
	du := (jd0 - 2451545.0) / 36525.0

	gmstSec := 24110.54841 +
		8640184.812866*du +
		0.093104*du*du -
		6.2e-6*du*du*du +
		h*3600*1.00273790935

	gmstRad := math.Mod(gmstSec*(math.Pi/43200.0), 2*math.Pi)
	if gmstRad < 0 {
		gmstRad += 2 * math.Pi
	}
	return gmstRad
}

func julianDate(t time.Time) float64 {
	const unixEpochJD = 2440587.5
	return unixEpochJD + float64(t.Unix())/86400.0
}

// rotationZ builds the 3x3 rotation-about-Z matrix for angle theta
// (radians): rotates a vector's components into a frame rotated by
// +theta about Z.
func rotationZ(theta float64) *mat.Dense {
	s, co := math.Sin(theta), math.Cos(theta)
	return mat.NewDense(3, 3, []float64{
		co, s, 0,
		-s, co, 0,
		0, 0, 1,
	})
}

// polarMotionMatrix builds the small-angle polar-motion rotation matrix
// W that maps PEF coordinates to ITRF coordinates given pole offsets
// (xp, yp) in radians.
func polarMotionMatrix(xp, yp float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, xp,
		0, 1, -yp,
		-xp, yp, 1,
	})
}

func mulVec(m *mat.Dense, v geometry.Vector3) geometry.Vector3 {
	in := mat.NewVecDense(3, []float64{v.X, v.Y, v.Z})
	var out mat.VecDense
	out.MulVec(m, in)
	return geometry.Vector3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// ToITRF converts a TEME position/velocity pair at UTC instant t into
// the Earth-fixed ITRF frame. The transform always applies the
// Earth-rotation (GMST) term; it additionally applies a polar-motion
// correction when c's provider has data for t.
func (c *Converter) ToITRF(posTEME, velTEME geometry.Vector3, t time.Time) (geometry.Vector3, geometry.Vector3, AccuracyBound, error) {
	gmst := c.GMSTRadians(t)
	rz := rotationZ(gmst)

	posPEF := mulVec(rz, posTEME)
	velRotated := mulVec(rz, velTEME)

	omega := geometry.Vector3{Z: EarthRotationRateRadPerSec}
	velPEF := velRotated.Sub(omega.Cross(posPEF))

	_, isDefault := c.polarMotion.(NoPolarMotionProvider)
	xp, yp, ok := c.polarMotion.Lookup(t.UTC())
	if !isDefault && !ok {
		return geometry.Vector3{}, geometry.Vector3{}, "", ErrTimeOutOfRange
	}
	if !ok {
		return posPEF, velPEF, AccuracySubKm, nil
	}

	w := polarMotionMatrix(xp, yp)
	posITRF := mulVec(w, posPEF)
	velITRF := mulVec(w, velPEF)
	return posITRF, velITRF, AccuracyPolarCorrected, nil
}

const (
	maxGeodeticIterations  = 5
	geodeticConvergenceRad = 1e-11
)

// ToWGS84 solves for the geodetic latitude/longitude/altitude of an
// ITRF position via Bowring's iterative method, capped at
// maxGeodeticIterations. Returns ErrFrameTransformNonConvergent if the
// iteration fails to settle within that budget.
func (c *Converter) ToWGS84(posITRF geometry.Vector3) (geometry.Geodetic, error) {
	xKm, yKm, zKm := posITRF.X, posITRF.Y, posITRF.Z
	pMeters := math.Hypot(xKm, yKm) * 1000.0
	zMeters := zKm * 1000.0

	lon := math.Atan2(yKm, xKm)

	a := geometry.WGS84SemiMajorAxisKm * 1000.0
	f := geometry.WGS84Flattening
	e2 := f * (2 - f)

	lat := math.Atan2(zMeters, pMeters*(1-e2))
	var altMeters float64

	for i := 0; i < maxGeodeticIterations; i++ {
		sinLat := math.Sin(lat)
		n := a / math.Sqrt(1-e2*sinLat*sinLat)
		altMeters = pMeters/math.Cos(lat) - n
		newLat := math.Atan2(zMeters, pMeters*(1-e2*n/(n+altMeters)))
		delta := math.Abs(newLat - lat)
		lat = newLat
		if delta < geodeticConvergenceRad {
			return geometry.Geodetic{
				LatitudeDeg:  lat * 180.0 / math.Pi,
				LongitudeDeg: lon * 180.0 / math.Pi,
				AltitudeKm:   altMeters / 1000.0,
			}, nil
		}
	}

	return geometry.Geodetic{}, ErrFrameTransformNonConvergent
}
