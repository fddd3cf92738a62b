// Package pool runs a per-time-point coverage sweep over the feasible
// set, classifies coverage-gap severity, and checks orbital-period
// completeness.
package pool

import (
	"sort"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/model"
)

// GapSeverity classifies a coverage gap.
type GapSeverity string

const (
	SeverityCritical GapSeverity = "critical"
	SeverityWarning  GapSeverity = "warning"
	SeverityMinor    GapSeverity = "minor"
)

const (
	criticalGapMinutes = 10.0
	warningGapMinutes  = 5.0
	warningVisibleRatio = 0.5
)

// Gap is one run of consecutive time-points that failed to meet the
// pool target.
type Gap struct {
	Start         time.Time   `json:"start"`
	End           time.Time   `json:"end"`
	DurationMin   float64     `json:"duration_min"`
	MinVisible    int         `json:"min_visible_count"`
	Severity      GapSeverity `json:"severity"`
}

// Result is one constellation's full pool-verification outcome.
type Result struct {
	Constellation           model.Constellation `json:"constellation"`
	TargetMinCount          int                 `json:"target_min_count"`
	TotalTimePoints         int                 `json:"total_time_points"`
	TargetMetCount          int                 `json:"target_met_count"`
	CoverageRate            float64             `json:"coverage_rate"`
	CoverageThreshold       float64             `json:"coverage_threshold"`
	TargetMet               bool                `json:"target_met"`
	Gaps                    []Gap               `json:"gaps"`
	SpanMinutes             float64             `json:"span_minutes"`
	RequiredSpanMinutes     float64             `json:"required_span_minutes"`
	IncompletePeriodCoverage bool               `json:"incomplete_period_coverage"`
}

// Verifier runs the per-time-point sweep for one constellation.
type Verifier struct {
	cfg config.Config
}

// New builds a Verifier from the loaded pipeline configuration.
func New(cfg config.Config) *Verifier {
	return &Verifier{cfg: cfg}
}

func (v *Verifier) targetMinCount(c model.Constellation) int {
	switch c {
	case model.ConstellationStarlink:
		return v.cfg.PoolTargets.Starlink.Min
	case model.ConstellationOneWeb:
		return v.cfg.PoolTargets.OneWeb.Min
	default:
		return v.cfg.PoolTargets.OneWeb.Min
	}
}

func (v *Verifier) coverageThreshold(c model.Constellation) float64 {
	switch c {
	case model.ConstellationStarlink:
		return v.cfg.CoverageThresholds.Starlink
	case model.ConstellationOneWeb:
		return v.cfg.CoverageThresholds.OneWeb
	default:
		return v.cfg.CoverageThresholds.OneWeb
	}
}

// WindowSet is one feasible satellite's sampled time series (every
// snapshot timestamp produced for it, visible or not) plus its
// coalesced connectable windows, the input to Verify.
type WindowSet struct {
	SatID      string
	Windows    []model.VisibilityWindow
	Timestamps []time.Time
}

func windowContains(w model.VisibilityWindow, t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Verify performs the per-time-point sweep: it is deliberately built
// around the union of time-points actually sampled across the
// satellites (step 1), taken from each satellite's own snapshot
// timestamps rather than window boundaries or any single satellite's
// window count — the property the "static counting" regression test
// exercises.
func (v *Verifier) Verify(constellation model.Constellation, sets []WindowSet, orbitalPeriod time.Duration) Result {
	targetMin := v.targetMinCount(constellation)
	coverageThreshold := v.coverageThreshold(constellation)

	pointSet := map[time.Time]struct{}{}
	for _, s := range sets {
		for _, t := range s.Timestamps {
			pointSet[t] = struct{}{}
		}
	}
	points := make([]time.Time, 0, len(pointSet))
	for t := range pointSet {
		points = append(points, t)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })

	if len(points) == 0 {
		return Result{
			Constellation:     constellation,
			TargetMinCount:    targetMin,
			CoverageThreshold: coverageThreshold,
			TargetMet:         false,
		}
	}

	metCount := 0
	visibleCounts := make([]int, len(points))
	for i, t := range points {
		count := 0
		for _, s := range sets {
			for _, w := range s.Windows {
				if w.MeetsQuorum && windowContains(w, t) {
					count++
					break
				}
			}
		}
		visibleCounts[i] = count
		if count >= targetMin {
			metCount++
		}
	}

	coverageRate := float64(metCount) / float64(len(points))

	gaps := identifyGaps(points, visibleCounts, targetMin)

	span := points[len(points)-1].Sub(points[0])
	requiredSpan := time.Duration(float64(orbitalPeriod) * 0.9)
	incomplete := orbitalPeriod > 0 && span < requiredSpan

	return Result{
		Constellation:            constellation,
		TargetMinCount:           targetMin,
		TotalTimePoints:          len(points),
		TargetMetCount:           metCount,
		CoverageRate:             coverageRate,
		CoverageThreshold:        coverageThreshold,
		TargetMet:                coverageRate >= coverageThreshold,
		Gaps:                     gaps,
		SpanMinutes:              span.Minutes(),
		RequiredSpanMinutes:      requiredSpan.Minutes(),
		IncompletePeriodCoverage: incomplete,
	}
}

func identifyGaps(points []time.Time, visibleCounts []int, targetMin int) []Gap {
	var gaps []Gap
	i := 0
	for i < len(points) {
		if visibleCounts[i] >= targetMin {
			i++
			continue
		}
		start := i
		minVisible := visibleCounts[i]
		for i < len(points) && visibleCounts[i] < targetMin {
			if visibleCounts[i] < minVisible {
				minVisible = visibleCounts[i]
			}
			i++
		}
		end := i - 1
		duration := points[end].Sub(points[start]).Minutes()
		gaps = append(gaps, Gap{
			Start:       points[start],
			End:         points[end],
			DurationMin: duration,
			MinVisible:  minVisible,
			Severity:    severity(minVisible, duration, targetMin),
		})
	}
	return gaps
}

func severity(minVisible int, durationMinutes float64, targetMin int) GapSeverity {
	switch {
	case minVisible == 0 || durationMinutes > criticalGapMinutes:
		return SeverityCritical
	case float64(minVisible) < float64(targetMin)*warningVisibleRatio || durationMinutes > warningGapMinutes:
		return SeverityWarning
	default:
		return SeverityMinor
	}
}
