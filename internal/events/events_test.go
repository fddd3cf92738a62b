package events

import (
	"testing"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/model"
	"github.com/dzeleniak/orbitpipe/pkg/geometry"
)

func snapshotWithRSRP(t time.Time, rsrp float64) model.Snapshot {
	return model.Snapshot{T: t, Signal: model.SignalMetrics{RSRPdBm: rsrp}}
}

// TestA5TriggersOnServingDegradeAndNeighborImprove covers a serving
// satellite that degrades below -110dBm while a neighbor crosses
// above -95dBm: exactly one A5 event should fire.
func TestA5TriggersOnServingDegradeAndNeighborImprove(t *testing.T) {
	d := New(config.Default())
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(30 * time.Second)

	points := []TimePoint{
		{
			ServingSatID: "serving",
			Snapshots: map[string]model.Snapshot{
				"serving":  snapshotWithRSRP(t1, -108),
				"neighbor": snapshotWithRSRP(t1, -112),
			},
		},
		{
			ServingSatID: "serving",
			Snapshots: map[string]model.Snapshot{
				"serving":  snapshotWithRSRP(t2, -112),
				"neighbor": snapshotWithRSRP(t2, -92),
			},
		},
	}

	evs := d.Detect(points)

	var a5Count int
	for _, ev := range evs {
		if ev.Kind == model.EventA5 {
			a5Count++
			if ev.ServingSatID != "serving" || ev.NeighborSatID != "neighbor" {
				t.Errorf("A5 event has wrong serving/neighbor: %+v", ev)
			}
			if !ev.TriggerTime.Equal(t2) {
				t.Errorf("A5 TriggerTime = %v, want %v", ev.TriggerTime, t2)
			}
		}
	}
	if a5Count != 1 {
		t.Fatalf("got %d A5 events, want exactly 1", a5Count)
	}
}

func TestNoEventAtFirstTimePointInS3(t *testing.T) {
	d := New(config.Default())
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []TimePoint{
		{
			ServingSatID: "serving",
			Snapshots: map[string]model.Snapshot{
				"serving":  snapshotWithRSRP(t1, -108),
				"neighbor": snapshotWithRSRP(t1, -112),
			},
		},
	}
	evs := d.Detect(points)
	if len(evs) != 0 {
		t.Fatalf("expected no events at t1, got %d: %+v", len(evs), evs)
	}
}

func TestA4TriggersWhenNeighborExceedsAbsoluteThreshold(t *testing.T) {
	d := New(config.Default())
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []TimePoint{
		{
			ServingSatID: "serving",
			Snapshots: map[string]model.Snapshot{
				"serving":  snapshotWithRSRP(t1, -90),
				"neighbor": snapshotWithRSRP(t1, -90), // well above -100dBm threshold + 2dB hysteresis
			},
		},
	}
	evs := d.Detect(points)
	found := false
	for _, ev := range evs {
		if ev.Kind == model.EventA4 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an A4 event when neighbor RSRP exceeds the absolute threshold")
	}
}

func TestEventsAreNonDecreasingInTime(t *testing.T) {
	d := New(config.Default())
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var points []TimePoint
	for i := 0; i < 5; i++ {
		t := base.Add(time.Duration(i) * 30 * time.Second)
		points = append(points, TimePoint{
			ServingSatID: "serving",
			Snapshots: map[string]model.Snapshot{
				"serving":  snapshotWithRSRP(t, -90),
				"neighbor": snapshotWithRSRP(t, -88),
			},
		})
	}
	evs := d.Detect(points)
	for i := 1; i < len(evs); i++ {
		if evs[i].TriggerTime.Before(evs[i-1].TriggerTime) {
			t.Fatalf("events not non-decreasing in time at index %d: %+v", i, evs)
		}
	}
}

func TestEventPriorityOrdersA5BeforeD2BeforeA4BeforeA3(t *testing.T) {
	d := New(config.Default())
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	// Construct a scenario where the same neighbor triggers multiple
	// event kinds simultaneously against the serving satellite.
	serving := model.Snapshot{
		T:      t1,
		Signal: model.SignalMetrics{RSRPdBm: -113},
		Angles: geometry.LookAngles{RangeKm: 2100},
	}
	neighbor := model.Snapshot{
		T:      t1,
		Signal: model.SignalMetrics{RSRPdBm: -88},
		Angles: geometry.LookAngles{RangeKm: 1000},
	}
	points := []TimePoint{
		{ServingSatID: "serving", Snapshots: map[string]model.Snapshot{"serving": serving, "neighbor": neighbor}},
	}
	evs := d.Detect(points)
	if len(evs) < 2 {
		t.Fatalf("expected multiple simultaneous events, got %d: %+v", len(evs), evs)
	}
	for i := 1; i < len(evs); i++ {
		if eventPriority[evs[i].Kind] < eventPriority[evs[i-1].Kind] {
			t.Fatalf("events not ordered by priority: %+v", evs)
		}
	}
}

func TestDetectSkipsTimePointsMissingServingSnapshot(t *testing.T) {
	d := New(config.Default())
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []TimePoint{
		{ServingSatID: "ghost", Snapshots: map[string]model.Snapshot{"neighbor": snapshotWithRSRP(t1, -90)}},
	}
	evs := d.Detect(points)
	if len(evs) != 0 {
		t.Fatalf("expected no events when serving satellite has no snapshot, got %d", len(evs))
	}
}
