package pool

import (
	"testing"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/model"
)

// minutePoints enumerates a satellite's sampled timestamps at one-minute
// steps across [start, end], standing in for the per-snapshot grid
// internal/pipeline feeds pool.WindowSet.Timestamps from in a real run.
func minutePoints(start, end time.Time) []time.Time {
	var points []time.Time
	for t := start; !t.After(end); t = t.Add(time.Minute) {
		points = append(points, t)
	}
	return points
}

// TestStaticCountDecoyFailsPerTimePointSweep covers 20 satellites that
// are each individually visible, but whose windows are pairwise
// disjoint so no single time-point ever has >= 10 simultaneously
// visible. A verifier that only counts satellites statically would
// pass this; the per-time-point sweep must fail it.
func TestStaticCountDecoyFailsPerTimePointSweep(t *testing.T) {
	v := New(config.Default())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var sets []WindowSet
	for i := 0; i < 20; i++ {
		start := base.Add(time.Duration(i) * 10 * time.Minute)
		end := start.Add(5 * time.Minute)
		sets = append(sets, WindowSet{
			SatID: "sat-" + string(rune('a'+i)),
			Windows: []model.VisibilityWindow{
				{Start: start, End: end, DurationMin: 5, MeetsQuorum: true},
			},
			Timestamps: minutePoints(start, end),
		})
	}

	result := v.Verify(model.ConstellationStarlink, sets, 95*time.Minute)
	if result.TargetMet {
		t.Fatal("TargetMet = true, want false: pairwise-disjoint windows should never reach the Starlink pool target of 10 simultaneous satellites")
	}
	if result.CoverageRate != 0 {
		t.Errorf("CoverageRate = %v, want 0 for entirely disjoint windows", result.CoverageRate)
	}
}

func TestVerifyMeetsTargetWhenWindowsOverlapSufficiently(t *testing.T) {
	v := New(config.Default())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := base.Add(10 * time.Minute)

	var sets []WindowSet
	for i := 0; i < 10; i++ {
		sets = append(sets, WindowSet{
			SatID: "sat-" + string(rune('a'+i)),
			Windows: []model.VisibilityWindow{
				{Start: base, End: end, DurationMin: 10, MeetsQuorum: true},
			},
			Timestamps: minutePoints(base, end),
		})
	}

	result := v.Verify(model.ConstellationOneWeb, sets, 110*time.Minute)
	if !result.TargetMet {
		t.Errorf("expected 10 fully-overlapping OneWeb windows (target min 3) to meet coverage, got %+v", result)
	}
}

func TestVerifyReportsIncompletePeriodCoverage(t *testing.T) {
	v := New(config.Default())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sets := []WindowSet{
		{SatID: "sat-1", Windows: []model.VisibilityWindow{
			{Start: base, End: base.Add(60 * time.Minute), DurationMin: 60, MeetsQuorum: true},
		}, Timestamps: minutePoints(base, base.Add(60*time.Minute))},
	}

	// Starlink orbital period ~95min; a 60min span is well under 0.9x that.
	result := v.Verify(model.ConstellationStarlink, sets, 95*time.Minute)
	if !result.IncompletePeriodCoverage {
		t.Error("expected IncompletePeriodCoverage = true for a 60-minute span against a 95-minute orbital period")
	}
}

func TestVerifyAcceptsSufficientPeriodSpan(t *testing.T) {
	v := New(config.Default())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sets := []WindowSet{
		{SatID: "sat-1", Windows: []model.VisibilityWindow{
			{Start: base, End: base.Add(90 * time.Minute), DurationMin: 90, MeetsQuorum: true},
		}, Timestamps: minutePoints(base, base.Add(90*time.Minute))},
	}
	result := v.Verify(model.ConstellationStarlink, sets, 95*time.Minute)
	if result.IncompletePeriodCoverage {
		t.Error("expected IncompletePeriodCoverage = false when span covers >= 0.9x the orbital period")
	}
}

func TestGapSeverityClassification(t *testing.T) {
	if got := severity(0, 1, 10); got != SeverityCritical {
		t.Errorf("severity(0 visible) = %v, want critical", got)
	}
	if got := severity(8, 15, 10); got != SeverityCritical {
		t.Errorf("severity(long gap) = %v, want critical for duration > 10min", got)
	}
	if got := severity(4, 6, 10); got != SeverityWarning {
		t.Errorf("severity(4/10 visible, 6min) = %v, want warning", got)
	}
	if got := severity(9, 1, 10); got != SeverityMinor {
		t.Errorf("severity(near-target, short gap) = %v, want minor", got)
	}
}

func TestVerifyNoTimePointsReturnsUnmetResult(t *testing.T) {
	v := New(config.Default())
	result := v.Verify(model.ConstellationStarlink, nil, 95*time.Minute)
	if result.TargetMet {
		t.Error("expected TargetMet = false with zero satellites")
	}
}
