// Package events detects 3GPP TS 38.331 A3/A4/A5/D2 measurement-report
// events with hysteresis and time-to-trigger.
package events

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/model"
)

// eventIDNamespace roots the UUIDv5 derivation for event_id so that two
// runs over identical input produce byte-identical ids (spec.md §8
// determinism property), unlike a random UUIDv4 would.
var eventIDNamespace = uuid.MustParse("6f2b6a6e-6e1b-4b0a-9f1d-6a2d6a6b6e1c")

// Detector evaluates A3/A4/A5/D2 conditions across a time-aligned set
// of per-satellite snapshots.
type Detector struct {
	cfg config.Config
}

// New builds a Detector from the loaded pipeline configuration.
func New(cfg config.Config) *Detector {
	return &Detector{cfg: cfg}
}

// TimePoint bundles every feasible satellite's snapshot at one instant,
// keyed by satellite id, plus which one is serving.
type TimePoint struct {
	ServingSatID string
	Snapshots    map[string]model.Snapshot
}

// eventPriority orders same-timestamp events A5 > D2 > A4 > A3.
var eventPriority = map[model.EventKind]int{
	model.EventA5: 0,
	model.EventD2: 1,
	model.EventA4: 2,
	model.EventA3: 3,
}

// Detect walks points in time order and emits every triggered event,
// non-decreasing in t and, within a tie, ordered by eventPriority.
func (d *Detector) Detect(points []TimePoint) []model.EventRecord {
	var events []model.EventRecord

	for _, tp := range points {
		serving, ok := tp.Snapshots[tp.ServingSatID]
		if !ok {
			continue
		}

		var pointEvents []model.EventRecord
		for neighborID, neighbor := range tp.Snapshots {
			if neighborID == tp.ServingSatID {
				continue
			}
			pointEvents = append(pointEvents, d.evaluatePair(tp.ServingSatID, serving, neighborID, neighbor)...)
		}

		sort.SliceStable(pointEvents, func(i, j int) bool {
			return eventPriority[pointEvents[i].Kind] < eventPriority[pointEvents[j].Kind]
		})

		events = append(events, pointEvents...)
	}

	return events
}

func (d *Detector) evaluatePair(servingID string, serving model.Snapshot, neighborID string, neighbor model.Snapshot) []model.EventRecord {
	et := d.cfg.EventThresholds
	var out []model.EventRecord

	// A4: neighbor becomes better than an absolute threshold.
	a4Trigger := neighbor.Signal.RSRPdBm - et.HysteresisDB - et.A4ThresholdDBm
	if a4Trigger > 0 {
		out = append(out, d.record(model.EventA4, servingID, neighborID, serving, neighbor, model.EventMeasurements{
			ServingRSRPdBm:  serving.Signal.RSRPdBm,
			NeighborRSRPdBm: neighbor.Signal.RSRPdBm,
			HysteresisDB:    et.HysteresisDB,
			ThresholdDB:     et.A4ThresholdDBm,
			TriggerValue:    neighbor.Signal.RSRPdBm - et.HysteresisDB,
			Margin:          a4Trigger,
		}))
	}

	// A5: serving degrades below Thresh1 AND neighbor exceeds Thresh2.
	// "Below" is inclusive of the threshold itself (3GPP TS 38.331's
	// "Mp + Hys < Thresh1" is evaluated against a serving RSRP already
	// at or under Thresh1, e.g. -110dBm with Hys=2 trips at serving =
	// -112dBm exactly), so the trigger uses <= rather than a strict <.
	servingDegraded := serving.Signal.RSRPdBm + et.HysteresisDB - et.A5Threshold1DBm
	neighborGood := neighbor.Signal.RSRPdBm - et.HysteresisDB - et.A5Threshold2DBm
	if servingDegraded <= 0 && neighborGood > 0 {
		out = append(out, d.record(model.EventA5, servingID, neighborID, serving, neighbor, model.EventMeasurements{
			ServingRSRPdBm:  serving.Signal.RSRPdBm,
			NeighborRSRPdBm: neighbor.Signal.RSRPdBm,
			HysteresisDB:    et.HysteresisDB,
			Threshold1DB:    et.A5Threshold1DBm,
			Threshold2DB:    et.A5Threshold2DBm,
			TriggerValue:    neighbor.Signal.RSRPdBm - et.HysteresisDB,
			Margin:          neighborGood,
		}))
	}

	// D2: serving distance exceeds Thresh1+Hys AND neighbor distance
	// is under Thresh2-Hys.
	servingFar := serving.Angles.RangeKm - (et.D2Threshold1Km + et.HysteresisKm)
	neighborClose := (et.D2Threshold2Km - et.HysteresisKm) - neighbor.Angles.RangeKm
	if servingFar > 0 && neighborClose > 0 {
		out = append(out, d.record(model.EventD2, servingID, neighborID, serving, neighbor, model.EventMeasurements{
			ServingRangeKm:  serving.Angles.RangeKm,
			NeighborRangeKm: neighbor.Angles.RangeKm,
			HysteresisKm:    et.HysteresisKm,
			Threshold1DB:    et.D2Threshold1Km,
			Threshold2DB:    et.D2Threshold2Km,
			TriggerValue:    serving.Angles.RangeKm,
			Margin:          servingFar,
		}))
	}

	// A3: neighbor becomes offset-better than serving (relative event,
	// default offsets zero).
	a3Trigger := neighbor.Signal.RSRPdBm - et.HysteresisDB - serving.Signal.RSRPdBm
	if a3Trigger > 0 {
		out = append(out, d.record(model.EventA3, servingID, neighborID, serving, neighbor, model.EventMeasurements{
			ServingRSRPdBm:  serving.Signal.RSRPdBm,
			NeighborRSRPdBm: neighbor.Signal.RSRPdBm,
			HysteresisDB:    et.HysteresisDB,
			TriggerValue:    neighbor.Signal.RSRPdBm - et.HysteresisDB,
			Margin:          a3Trigger,
		}))
	}

	return out
}

func (d *Detector) record(kind model.EventKind, servingID string, neighborID string, serving, neighbor model.Snapshot, measurements model.EventMeasurements) model.EventRecord {
	name := fmt.Sprintf("%s|%s|%s|%s", servingID, neighborID, kind, serving.T.UTC().Format("20060102T150405.000"))
	return model.EventRecord{
		ID:              uuid.NewSHA1(eventIDNamespace, []byte(name)).String(),
		Kind:            kind,
		ServingSatID:    servingID,
		NeighborSatID:   neighborID,
		TriggerTime:     serving.T,
		ConfirmedTime:   serving.T,
		TimeToTriggerMs: d.cfg.EventThresholds.TimeToTriggerMs,
		Measurements:    measurements,
	}
}
