package satellite

import (
	"fmt"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/types"
	"github.com/dzeleniak/orbitpipe/pkg/geometry"
	"github.com/dzeleniak/orbitpipe/pkg/propagator"
	"github.com/dzeleniak/orbitpipe/pkg/timeframe"
)

// converter performs the Earth-rotation-only TEME->ITRF transform used
// by the catalog CLI; it carries no polar-motion provider, matching the
// pipeline's default accuracy bound.
var converter = timeframe.NewConverter(nil)

// OrbitRegime classifies a satellite's orbital regime.
type OrbitRegime string

const (
	RegimeLEO     OrbitRegime = "LEO"
	RegimeMEO     OrbitRegime = "MEO"
	RegimeGEO     OrbitRegime = "GEO"
	RegimeHEO     OrbitRegime = "HEO"
	RegimeUnknown OrbitRegime = "UNKNOWN"
)

// ObserverPosition is the catalog CLI's ground-observer location
// (degrees/meters, matching cmd/config.go's Config fields).
type ObserverPosition struct {
	Latitude  float64
	Longitude float64
	Altitude  float64 // meters above sea level
}

func (o *ObserverPosition) toGeometry() geometry.ObserverPosition {
	return geometry.ObserverPosition{
		LatitudeDeg:  o.Latitude,
		LongitudeDeg: o.Longitude,
		AltitudeKm:   o.Altitude / 1000.0,
	}
}

// ObservationAngles is a satellite's position relative to an observer at
// one instant.
type ObservationAngles struct {
	Time      time.Time
	Azimuth   float64
	Elevation float64
	Range     float64
	RangeRate float64
}

// PropagateSatellite evaluates SGP4 for tle at t and returns the
// satellite's ECEF position/velocity via pkg/propagator + pkg/timeframe
// (Earth-rotation-only accuracy, same as the rest of the pipeline).
func PropagateSatellite(tle *types.TLE, t time.Time) (geometry.Vector3, geometry.Vector3, error) {
	if tle == nil {
		return geometry.Vector3{}, geometry.Vector3{}, fmt.Errorf("satellite: TLE is nil")
	}

	prop, err := propagator.New(tle.Line1, tle.Line2)
	if err != nil {
		return geometry.Vector3{}, geometry.Vector3{}, fmt.Errorf("satellite: %w", err)
	}

	result := prop.Propagate(t)
	if !result.OK() {
		return geometry.Vector3{}, geometry.Vector3{}, fmt.Errorf("satellite: SGP4 propagation status %s", result.Status)
	}

	posITRF, velITRF, _, err := converter.ToITRF(result.PositionTEMEKm, result.VelocityTEMEKmS, t)
	if err != nil {
		return geometry.Vector3{}, geometry.Vector3{}, fmt.Errorf("satellite: %w", err)
	}
	return posITRF, velITRF, nil
}

// CalculateObservationAngles derives azimuth/elevation/range/range-rate
// for an already-propagated ECEF position relative to observer.
func CalculateObservationAngles(t time.Time, posECEF, velECEF geometry.Vector3, observer *ObserverPosition) *ObservationAngles {
	obs := observer.toGeometry()
	angles := geometry.Observe(obs, posECEF)
	rate := geometry.RangeRate(obs, posECEF, velECEF)
	return &ObservationAngles{
		Time:      t,
		Azimuth:   angles.AzimuthDeg,
		Elevation: angles.ElevationDeg,
		Range:     angles.RangeKm,
		RangeRate: rate,
	}
}

// IsVisible reports whether an observation is above the minimum
// elevation gate.
func IsVisible(obs *ObservationAngles, minElevationDeg float64) bool {
	return obs.Elevation >= minElevationDeg
}

// FindPasses finds visible passes of a satellite over [startTime,
// endTime], a pass being a maximal run of consecutive above-elevation
// samples at stepSize resolution.
func FindPasses(tle *types.TLE, observer *ObserverPosition, startTime, endTime time.Time, stepSize time.Duration, minElevationDeg float64) ([][]*ObservationAngles, error) {
	if tle == nil {
		return nil, fmt.Errorf("satellite: TLE is nil")
	}
	if endTime.Before(startTime) {
		return nil, fmt.Errorf("satellite: end time must be after start time")
	}

	var passes [][]*ObservationAngles
	var current []*ObservationAngles

	for t := startTime; !t.After(endTime); t = t.Add(stepSize) {
		pos, vel, err := PropagateSatellite(tle, t)
		if err != nil {
			if len(current) > 0 {
				passes = append(passes, current)
				current = nil
			}
			continue
		}
		obs := CalculateObservationAngles(t, pos, vel, observer)
		if IsVisible(obs, minElevationDeg) {
			current = append(current, obs)
		} else if len(current) > 0 {
			passes = append(passes, current)
			current = nil
		}
	}
	if len(current) > 0 {
		passes = append(passes, current)
	}

	return passes, nil
}

// DetermineOrbitRegime classifies a satellite's orbital regime from its
// SATCAT-derived apogee/perigee (km), period (minutes), and inclination
// (degrees).
func DetermineOrbitRegime(apogee, perigee, period, inclination float64) OrbitRegime {
	if apogee <= 0 || perigee <= 0 || period <= 0 {
		return RegimeUnknown
	}

	const earthRadiusKm = 6371.0
	semiMajorAxis := ((apogee + earthRadiusKm) + (perigee + earthRadiusKm)) / 2.0
	avgAltitude := semiMajorAxis - earthRadiusKm
	eccentricity := (apogee - perigee) / (apogee + perigee + 2*earthRadiusKm)

	if eccentricity > 0.25 {
		return RegimeHEO
	}

	const (
		geoAltitudeKm         = 35786.0
		geoPeriodMinutes      = 1436.0
		periodToleranceMin    = 30.0
		altitudeToleranceKm   = 500.0
		inclinationToleranceD = 5.0
	)
	if absf(avgAltitude-geoAltitudeKm) < altitudeToleranceKm &&
		absf(period-geoPeriodMinutes) < periodToleranceMin &&
		absf(inclination) < inclinationToleranceD {
		return RegimeGEO
	}

	switch {
	case avgAltitude < 2000.0:
		return RegimeLEO
	case avgAltitude < geoAltitudeKm:
		return RegimeMEO
	default:
		return RegimeGEO
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
