package visibility

import (
	"testing"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/model"
	"github.com/dzeleniak/orbitpipe/pkg/geometry"
)

func snapAt(t time.Time, elevDeg, rangeKm float64) model.Snapshot {
	return model.Snapshot{
		T:      t,
		Angles: geometry.LookAngles{ElevationDeg: elevDeg, RangeKm: rangeKm},
		Geodetic: geometry.Geodetic{LatitudeDeg: 0, LongitudeDeg: 0},
	}
}

func TestGateRejectsBelowElevationThreshold(t *testing.T) {
	f := New(config.Default())
	gates := f.Gate(model.ConstellationStarlink, snapAt(time.Now(), 3.0, 600))
	if gates.Visible() {
		t.Error("expected elevation gate to fail at 3deg for Starlink (threshold 5deg)")
	}
	if gates.RangeOK || gates.GeographicOK {
		t.Error("range/geographic gates should not be evaluated once elevation fails")
	}
}

func TestGatePassesAllThree(t *testing.T) {
	f := New(config.Default())
	gates := f.Gate(model.ConstellationStarlink, snapAt(time.Now(), 45.0, 800))
	if !gates.Visible() {
		t.Errorf("expected all gates to pass, got %+v", gates)
	}
}

func TestGateRejectsOutOfRangeBounds(t *testing.T) {
	f := New(config.Default())
	gates := f.Gate(model.ConstellationStarlink, snapAt(time.Now(), 45.0, 5000))
	if gates.Visible() {
		t.Error("expected range gate to fail at 5000km (max 2000km)")
	}
}

func TestGateUsesOneWebHigherThreshold(t *testing.T) {
	f := New(config.Default())
	gates := f.Gate(model.ConstellationOneWeb, snapAt(time.Now(), 7.0, 800))
	if gates.Visible() {
		t.Error("expected OneWeb's 10deg threshold to reject a 7deg snapshot")
	}
}

func TestApplyReturnsOnlyVisibleSubset(t *testing.T) {
	f := New(config.Default())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := []model.Snapshot{
		snapAt(base, 2.0, 800),
		snapAt(base.Add(30*time.Second), 20.0, 800),
		snapAt(base.Add(60*time.Second), 30.0, 800),
	}
	visible := f.Apply(model.ConstellationStarlink, series)
	if len(visible) != 2 {
		t.Fatalf("len(visible) = %d, want 2", len(visible))
	}
}

func TestCoalesceWindowsGroupsConsecutiveSnapshots(t *testing.T) {
	f := New(config.Default())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	visible := []model.Snapshot{
		snapAt(base, 10.0, 800),
		snapAt(base.Add(30*time.Second), 20.0, 800),
		snapAt(base.Add(60*time.Second), 30.0, 800),
		// big gap -> new window
		snapAt(base.Add(30*time.Minute), 15.0, 800),
		snapAt(base.Add(30*time.Minute+30*time.Second), 25.0, 800),
		snapAt(base.Add(31*time.Minute), 12.0, 800),
	}
	windows := f.CoalesceWindows("sat-1", visible)
	if len(windows) != 2 {
		t.Fatalf("len(windows) = %d, want 2", len(windows))
	}
	// Each window spans only 1 minute (3 snapshots, 30s apart); the
	// default 2-minute service-window quorum is not met by either.
	for _, w := range windows {
		if w.MeetsQuorum {
			t.Errorf("window %+v should not meet the 2-minute service-window quorum", w)
		}
	}
}

func TestCoalesceWindowsQuorumRequiresMinDurationAndCount(t *testing.T) {
	f := New(config.Default())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// Only 2 snapshots 30s apart: fails the >=3 snapshot quorum rule.
	visible := []model.Snapshot{
		snapAt(base, 10.0, 800),
		snapAt(base.Add(30*time.Second), 20.0, 800),
	}
	windows := f.CoalesceWindows("sat-1", visible)
	if len(windows) != 1 {
		t.Fatalf("len(windows) = %d, want 1", len(windows))
	}
	if windows[0].MeetsQuorum {
		t.Error("expected quorum to fail with only 2 snapshots")
	}
}

func TestGradeRubric(t *testing.T) {
	span := 24 * time.Hour
	aWindows := []model.VisibilityWindow{{DurationMin: 216}} // 216/1440 = 15%
	if got := Grade(aWindows, span); got != "A" {
		t.Errorf("Grade() = %q, want A for a 10min+ avg window at >=15%% coverage", got)
	}

	noWindows := Grade(nil, span)
	if noWindows != "F" {
		t.Errorf("Grade(nil) = %q, want F", noWindows)
	}
}

func TestStatsSummarizesWindows(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	windows := []model.VisibilityWindow{
		{SatID: "sat-1", Start: base, End: base.Add(5 * time.Minute), DurationMin: 5, MaxElevation: 30},
		{SatID: "sat-1", Start: base.Add(time.Hour), End: base.Add(time.Hour + 5*time.Minute), DurationMin: 5, MaxElevation: 45},
	}
	stats := Stats("sat-1", windows, 24*time.Hour)
	if stats.WindowCount != 2 {
		t.Errorf("WindowCount = %d, want 2", stats.WindowCount)
	}
	if stats.TotalVisibleMin != 10 {
		t.Errorf("TotalVisibleMin = %v, want 10", stats.TotalVisibleMin)
	}
	if stats.MeanDurationMin != 5 {
		t.Errorf("MeanDurationMin = %v, want 5", stats.MeanDurationMin)
	}
	if stats.MaxElevation != 45 {
		t.Errorf("MaxElevation = %v, want 45 (the higher of the two windows)", stats.MaxElevation)
	}
	if !stats.NextPassTime.Equal(base) {
		t.Errorf("NextPassTime = %v, want %v (the earliest window's start)", stats.NextPassTime, base)
	}
}
