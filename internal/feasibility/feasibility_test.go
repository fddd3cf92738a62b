package feasibility

import (
	"testing"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/model"
	"github.com/dzeleniak/orbitpipe/pkg/geometry"
)

func strongSnapshot() model.Snapshot {
	return model.Snapshot{
		Angles: geometry.LookAngles{ElevationDeg: 60, RangeKm: 900},
		Signal: model.SignalMetrics{RSRPdBm: -65, SINRdB: 20, LinkMarginDB: 40},
	}
}

func weakSnapshot() model.Snapshot {
	return model.Snapshot{
		Angles: geometry.LookAngles{ElevationDeg: 6, RangeKm: 1990},
		Signal: model.SignalMetrics{RSRPdBm: -118, SINRdB: -9, LinkMarginDB: 1},
	}
}

func TestCompositeScoreRangeIsZeroToOne(t *testing.T) {
	if s := CompositeScore(strongSnapshot()); s <= 0 || s > 1 {
		t.Errorf("CompositeScore(strong) = %v, want in (0,1]", s)
	}
	if s := CompositeScore(weakSnapshot()); s < 0 || s >= 1 {
		t.Errorf("CompositeScore(weak) = %v, want in [0,1)", s)
	}
}

func TestCompositeScoreStrongExceedsWeak(t *testing.T) {
	strong := CompositeScore(strongSnapshot())
	weak := CompositeScore(weakSnapshot())
	if strong <= weak {
		t.Errorf("expected strong snapshot score (%v) to exceed weak snapshot score (%v)", strong, weak)
	}
}

func TestApplyMarksStrongSatelliteFeasible(t *testing.T) {
	f := New(config.Default())
	windows := []model.VisibilityWindow{{DurationMin: 5, MeetsQuorum: true}}
	result := f.Apply("sat-1", []model.Snapshot{strongSnapshot(), strongSnapshot()}, windows)
	if !result.Feasible {
		t.Errorf("expected strong satellite to be feasible, got %+v", result)
	}
}

func TestApplyMarksWeakSatelliteInfeasible(t *testing.T) {
	f := New(config.Default())
	windows := []model.VisibilityWindow{{DurationMin: 5, MeetsQuorum: true}}
	result := f.Apply("sat-1", []model.Snapshot{weakSnapshot(), weakSnapshot()}, windows)
	if result.Feasible {
		t.Errorf("expected weak satellite to be infeasible, got %+v", result)
	}
}

func TestApplyRequiresServiceWindowSum(t *testing.T) {
	f := New(config.Default())
	// Strong signal but no quorum-meeting windows at all.
	result := f.Apply("sat-1", []model.Snapshot{strongSnapshot()}, nil)
	if result.Feasible {
		t.Error("expected satellite with zero service-window sum to be infeasible regardless of score")
	}
}

func TestApplyEmptyVisibleSetIsInfeasible(t *testing.T) {
	f := New(config.Default())
	result := f.Apply("sat-1", nil, nil)
	if result.Feasible {
		t.Error("expected empty visible set to be infeasible")
	}
}
