package propagator

import (
	"testing"
	"time"
)

// issLine1/issLine2 are the canonical Vallado SGP4 test-vector TLE for
// ISS (NORAD 25544), epoch 2008-09-20.
const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

func TestNewRejectsShortLines(t *testing.T) {
	if _, err := New("too short", "also short"); err == nil {
		t.Fatal("expected error for undersized TLE lines")
	}
}

func TestNewParsesNoradID(t *testing.T) {
	p, err := New(issLine1, issLine2)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if p.NoradID() != 25544 {
		t.Errorf("NoradID = %d, want 25544", p.NoradID())
	}
}

func TestPropagateAtEpochSucceeds(t *testing.T) {
	p, err := New(issLine1, issLine2)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	epoch := time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)
	result := p.Propagate(epoch)
	if !result.OK() {
		t.Fatalf("Propagate status = %v, want ok", result.Status)
	}
	if result.PositionTEMEKm.Norm() < 6378 {
		t.Errorf("PositionTEMEKm.Norm() = %v, want >= Earth radius", result.PositionTEMEKm.Norm())
	}
	if result.VelocityTEMEKmS.Norm() <= 0 {
		t.Errorf("VelocityTEMEKmS.Norm() = %v, want > 0", result.VelocityTEMEKmS.Norm())
	}
}

func TestPropagateBatchPreservesOrder(t *testing.T) {
	p, err := New(issLine1, issLine2)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	epoch := time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)
	times := []time.Time{epoch, epoch.Add(time.Minute), epoch.Add(2 * time.Minute)}
	results := p.PropagateBatch(times)

	if len(results) != len(times) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(times))
	}
	for i, r := range results {
		if !r.T.Equal(times[i]) {
			t.Errorf("results[%d].T = %v, want %v", i, r.T, times[i])
		}
		if !r.OK() {
			t.Errorf("results[%d] status = %v, want ok", i, r.Status)
		}
	}
}

func TestMeanMotionRevPerDay(t *testing.T) {
	motion, err := MeanMotionRevPerDay(issLine2)
	if err != nil {
		t.Fatalf("MeanMotionRevPerDay returned error: %v", err)
	}
	if motion < 15.0 || motion > 16.0 {
		t.Errorf("motion = %v, want roughly 15.7 rev/day for ISS", motion)
	}
}

func TestMeanMotionRevPerDayRejectsShortLine(t *testing.T) {
	if _, err := MeanMotionRevPerDay("too short"); err == nil {
		t.Fatal("expected error for undersized line2")
	}
}

func TestOrbitalPeriod(t *testing.T) {
	period, err := OrbitalPeriod(issLine2)
	if err != nil {
		t.Fatalf("OrbitalPeriod returned error: %v", err)
	}
	// ISS completes an orbit roughly every ~92 minutes.
	if period < 85*time.Minute || period > 100*time.Minute {
		t.Errorf("period = %v, want roughly 90-95 minutes", period)
	}
}

func TestDeriveSeriesCoversAtLeastOnePeriod(t *testing.T) {
	epoch := time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)
	interval := 30 * time.Second

	times, period, err := DeriveSeries(epoch, issLine2, interval)
	if err != nil {
		t.Fatalf("DeriveSeries returned error: %v", err)
	}
	if len(times) == 0 {
		t.Fatal("DeriveSeries returned no samples")
	}
	if times[0] != epoch {
		t.Errorf("times[0] = %v, want epoch %v", times[0], epoch)
	}
	span := times[len(times)-1].Sub(times[0])
	if span < period {
		t.Errorf("series span %v does not cover orbital period %v", span, period)
	}
}

func TestDeriveSeriesRejectsNonPositiveInterval(t *testing.T) {
	epoch := time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC)
	if _, _, err := DeriveSeries(epoch, issLine2, 0); err == nil {
		t.Fatal("expected error for zero interval")
	}
}
