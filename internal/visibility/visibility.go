// Package visibility filters satellite snapshots for observer
// visibility: per-snapshot elevation/range/geographic gates,
// visibility-window coalescing, service-window quorum, and the A-F
// grade rubric.
package visibility

import (
	"sort"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/model"
)

// Filter evaluates the three visibility gates and derives windows/stats.
type Filter struct {
	cfg config.Config
}

// New builds a Filter from the loaded pipeline configuration.
func New(cfg config.Config) *Filter {
	return &Filter{cfg: cfg}
}

func (f *Filter) elevationThreshold(c model.Constellation) float64 {
	switch c {
	case model.ConstellationStarlink:
		return f.cfg.ElevationThresholds.StarlinkDeg
	case model.ConstellationOneWeb:
		return f.cfg.ElevationThresholds.OneWebDeg
	default:
		return f.cfg.ElevationThresholds.DefaultDeg
	}
}

// Gate evaluates the three gates, in order, against one snapshot. An
// earlier failure skips the later gates, which are then reported as
// false. A zero-value GeographicBounds passes the geographic gate
// everywhere (whole globe).
func (f *Filter) Gate(constellation model.Constellation, snap model.Snapshot) model.VisibilityGates {
	elevOK := snap.Angles.ElevationDeg >= f.elevationThreshold(constellation)
	if !elevOK {
		return model.VisibilityGates{ElevationOK: false}
	}

	rangeOK := snap.Angles.RangeKm >= f.cfg.RangeBoundsKm.MinKm && snap.Angles.RangeKm <= f.cfg.RangeBoundsKm.MaxKm
	if !rangeOK {
		return model.VisibilityGates{ElevationOK: true, RangeOK: false}
	}

	bounds := f.cfg.GeographicBounds
	geoOK := bounds == (config.GeographicBounds{}) || bounds.Contains(snap.Geodetic.LatitudeDeg, snap.Geodetic.LongitudeDeg)
	return model.VisibilityGates{ElevationOK: true, RangeOK: true, GeographicOK: geoOK}
}

// Apply gates every snapshot in series (mutating each Snapshot's Gates
// field) and returns the subset that is visible.
func (f *Filter) Apply(constellation model.Constellation, series []model.Snapshot) []model.Snapshot {
	visible := make([]model.Snapshot, 0, len(series))
	for i := range series {
		series[i].Gates = f.Gate(constellation, series[i])
		if series[i].Visible() {
			visible = append(visible, series[i])
		}
	}
	return visible
}

// CoalesceWindows groups consecutive visible snapshots (already sorted
// by t) into VisibilityWindows and flags which meet the service-window
// quorum (duration >= min_service_window_minutes AND snapshot count >= 3).
func (f *Filter) CoalesceWindows(satID string, visible []model.Snapshot) []model.VisibilityWindow {
	if len(visible) == 0 {
		return nil
	}

	sorted := make([]model.Snapshot, len(visible))
	copy(sorted, visible)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].T.Before(sorted[j].T) })

	var windows []model.VisibilityWindow
	run := []model.Snapshot{sorted[0]}

	flush := func() {
		windows = append(windows, buildWindow(satID, run, f.cfg.MinServiceWindowMinutes))
	}

	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].T.Sub(sorted[i-1].T)
		// A run is "consecutive" if the gap between samples is no more
		// than twice the nominal sampling interval; this tolerates a
		// single dropped point without splitting a run artificially.
		maxGap := 2 * f.cfg.SamplingInterval()
		if maxGap <= 0 {
			maxGap = time.Minute
		}
		if gap <= maxGap {
			run = append(run, sorted[i])
			continue
		}
		flush()
		run = []model.Snapshot{sorted[i]}
	}
	flush()

	return windows
}

func buildWindow(satID string, run []model.Snapshot, minServiceWindowMinutes float64) model.VisibilityWindow {
	start := run[0].T
	end := run[len(run)-1].T
	duration := end.Sub(start).Minutes()

	var maxElev, sumElev float64
	for _, s := range run {
		if s.Angles.ElevationDeg > maxElev {
			maxElev = s.Angles.ElevationDeg
		}
		sumElev += s.Angles.ElevationDeg
	}
	meanElev := sumElev / float64(len(run))

	meetsQuorum := duration >= minServiceWindowMinutes && len(run) >= 3

	return model.VisibilityWindow{
		SatID:         satID,
		Start:         start,
		End:           end,
		DurationMin:   duration,
		MaxElevation:  maxElev,
		MeanElevation: meanElev,
		SnapshotCount: len(run),
		MeetsQuorum:   meetsQuorum,
	}
}

// Grade assigns the A-F service-quality grade for one satellite given
// its windows and the total observation span considered.
func Grade(windows []model.VisibilityWindow, observationSpan time.Duration) string {
	if len(windows) == 0 || observationSpan <= 0 {
		return "F"
	}

	var totalVisibleMin, sumDuration float64
	for _, w := range windows {
		totalVisibleMin += w.DurationMin
		sumDuration += w.DurationMin
	}
	avgWindow := sumDuration / float64(len(windows))

	// The rubric is defined against a 24h baseline; for an observation
	// span shorter than 24h, the coverage ratio observed over that span
	// is taken as the estimate of the 24h coverage ratio.
	coverageOver24h := totalVisibleMin / observationSpan.Minutes()

	switch {
	case avgWindow >= 10 && coverageOver24h >= 0.15:
		return "A"
	case avgWindow >= 7 && coverageOver24h >= 0.10:
		return "B"
	case avgWindow >= 5 && coverageOver24h >= 0.05:
		return "C"
	case avgWindow >= 3 && coverageOver24h >= 0.02:
		return "D"
	default:
		return "F"
	}
}

// Stats summarizes one satellite's windows over a run. windows must
// already be in chronological order (as CoalesceWindows returns them),
// since NextPassTime is read off the earliest window's start.
func Stats(satID string, windows []model.VisibilityWindow, observationSpan time.Duration) model.ServiceWindowStats {
	grade := Grade(windows, observationSpan)

	var total, sumDuration, maxElev float64
	for _, w := range windows {
		total += w.DurationMin
		sumDuration += w.DurationMin
		if w.MaxElevation > maxElev {
			maxElev = w.MaxElevation
		}
	}
	var mean float64
	if len(windows) > 0 {
		mean = sumDuration / float64(len(windows))
	}

	var nextPass time.Time
	if len(windows) > 0 {
		nextPass = windows[0].Start
	}

	return model.ServiceWindowStats{
		SatID:           satID,
		WindowCount:     len(windows),
		TotalVisibleMin: total,
		MeanDurationMin: mean,
		MaxElevation:    maxElev,
		NextPassTime:    nextPass,
		BestGrade:       grade,
	}
}
