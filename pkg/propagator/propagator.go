// Package propagator wraps github.com/joshuaferrara/go-satellite's SGP4
// implementation, producing TEME position/velocity state vectors from a
// Two-Line Element set and classifying SGP4's internal error codes into
// the six canonical status kinds.
package propagator

import (
	"strconv"
	"strings"
	"time"

	gosat "github.com/joshuaferrara/go-satellite"
	"github.com/pkg/errors"

	"github.com/dzeleniak/orbitpipe/pkg/geometry"
)

// Status classifies the outcome of a single SGP4 propagation call.
type Status string

const (
	StatusOK                              Status = "ok"
	StatusMeanEccentricityOutOfRange       Status = "mean_eccentricity_out_of_range"
	StatusMeanMotionNegative               Status = "mean_motion_negative"
	StatusPerturbedEccentricityOutOfRange  Status = "perturbed_eccentricity_out_of_range"
	StatusSemiLatusRectumNegative          Status = "semi_latus_rectum_negative"
	StatusSubOrbital                       Status = "sub_orbital"
	StatusDecayed                          Status = "decayed"
	StatusUnknown                          Status = "unknown_sgp4_error"
)

// statusFromCode maps go-satellite's satrec.Error (the standard Vallado
// SGP4 status codes 1-6) onto Status.
func statusFromCode(code int64) Status {
	switch code {
	case 0:
		return StatusOK
	case 1:
		return StatusMeanEccentricityOutOfRange
	case 2:
		return StatusMeanMotionNegative
	case 3:
		return StatusPerturbedEccentricityOutOfRange
	case 4:
		return StatusSemiLatusRectumNegative
	case 5:
		return StatusSubOrbital
	case 6:
		return StatusDecayed
	default:
		return StatusUnknown
	}
}

// Result is one SGP4 propagation outcome.
type Result struct {
	T               time.Time
	PositionTEMEKm  geometry.Vector3
	VelocityTEMEKmS geometry.Vector3
	Status          Status
}

// OK reports whether the propagation succeeded.
func (r Result) OK() bool { return r.Status == StatusOK }

// Propagator wraps a single parsed satellite record. Each Propagator
// owns its own go-satellite Satellite value (satrec); none of its state
// is shared across instances, so a pool of Propagators, one per TLE, can
// be driven concurrently without a shared mutex.
type Propagator struct {
	noradID int
	satrec  gosat.Satellite
}

// New parses a TLE and initializes the SGP4 record (WGS84 gravity
// constants). It does not itself propagate; call Propagate/PropagateBatch.
func New(line1, line2 string) (*Propagator, error) {
	if len(line1) < 69 || len(line2) < 69 {
		return nil, errors.New("propagator: TLE lines must be 69 characters")
	}
	satrec := gosat.TLEToSat(line1, line2, gosat.GravityWGS84)
	noradID, err := strconv.Atoi(strings.TrimSpace(line1[2:7]))
	if err != nil {
		return nil, errors.Wrap(err, "propagator: parsing NORAD id from line1")
	}
	return &Propagator{noradID: noradID, satrec: satrec}, nil
}

// NoradID returns the catalog number this propagator was built from.
func (p *Propagator) NoradID() int { return p.noradID }

// Propagate evaluates SGP4 at the given UTC instant.
func (p *Propagator) Propagate(t time.Time) Result {
	u := t.UTC()
	year, month, day := u.Date()
	hour, min, sec := u.Clock()

	pos, vel := gosat.Propagate(p.satrec, year, int(month), day, hour, min, sec)

	return Result{
		T:               t,
		PositionTEMEKm:  geometry.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z},
		VelocityTEMEKmS: geometry.Vector3{X: vel.X, Y: vel.Y, Z: vel.Z},
		Status:          statusFromCode(p.satrec.Error),
	}
}

// PropagateBatch evaluates SGP4 for every instant in times, in order.
func (p *Propagator) PropagateBatch(times []time.Time) []Result {
	results := make([]Result, len(times))
	for i, t := range times {
		results[i] = p.Propagate(t)
	}
	return results
}

// MeanMotionRevPerDay parses the mean motion field (TLE line 2, columns
// 53-63, 1-indexed) in revolutions/day.
func MeanMotionRevPerDay(line2 string) (float64, error) {
	if len(line2) < 63 {
		return 0, errors.New("propagator: TLE line2 too short for mean motion field")
	}
	raw := strings.TrimSpace(line2[52:63])
	motion, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrap(err, "propagator: parsing mean motion")
	}
	return motion, nil
}

// OrbitalPeriod returns the orbital period implied by a TLE's mean
// motion field.
func OrbitalPeriod(line2 string) (time.Duration, error) {
	motion, err := MeanMotionRevPerDay(line2)
	if err != nil {
		return 0, err
	}
	if motion <= 0 {
		return 0, errors.New("propagator: non-positive mean motion")
	}
	periodMinutes := 1440.0 / motion
	return time.Duration(periodMinutes * float64(time.Minute)), nil
}

// DeriveSeries builds the default propagation time series for a TLE:
// starting at epoch, stepping by interval, spanning at least one full
// orbital period: ceil(period/interval) intervals, hence one more
// sample than that, so the last sample lies at or past epoch+period.
func DeriveSeries(epoch time.Time, line2 string, interval time.Duration) ([]time.Time, time.Duration, error) {
	if interval <= 0 {
		return nil, 0, errors.New("propagator: interval must be positive")
	}
	period, err := OrbitalPeriod(line2)
	if err != nil {
		return nil, 0, err
	}

	n := int(period / interval)
	if period%interval != 0 {
		n++
	}
	if n < 1 {
		n = 1
	}

	times := make([]time.Time, n+1)
	for k := 0; k <= n; k++ {
		times[k] = epoch.Add(time.Duration(k) * interval)
	}
	return times, period, nil
}
