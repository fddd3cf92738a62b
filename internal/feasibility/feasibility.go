// Package feasibility scores link quality as a weighted composite over
// signal/geometry/stability sub-scores, gating the visible set down to
// the "feasible" set that defines the dynamic pool for every
// downstream stage.
package feasibility

import (
	"math"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/model"
)

const (
	optimalDistanceMinKm = 500.0
	optimalDistanceMaxKm = 1500.0

	signalWeight    = 0.5
	geometryWeight  = 0.3
	stabilityWeight = 0.2
)

// Filter scores snapshots and separates the feasible subset.
type Filter struct {
	cfg config.Config
}

// New builds a Filter from the loaded pipeline configuration.
func New(cfg config.Config) *Filter {
	return &Filter{cfg: cfg}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// signalScore normalizes RSRP into [0,1] over the LEO operating range
// documented in internal/signal (-120..-60 dBm).
func signalScore(m model.SignalMetrics) float64 {
	return clamp01((m.RSRPdBm + 120.0) / 60.0)
}

// geometryScore rewards elevation and the 500-1500km optimal distance
// band.
func geometryScore(angles geometryAngles) float64 {
	elevScore := clamp01(angles.ElevationDeg / 90.0)

	var distScore float64
	switch {
	case angles.RangeKm >= optimalDistanceMinKm && angles.RangeKm <= optimalDistanceMaxKm:
		distScore = 1.0
	case angles.RangeKm < optimalDistanceMinKm:
		distScore = clamp01(angles.RangeKm / optimalDistanceMinKm)
	default:
		// Beyond the optimal band, score decays linearly to 0 at 2x the
		// band's upper edge.
		distScore = clamp01(1.0 - (angles.RangeKm-optimalDistanceMaxKm)/optimalDistanceMaxKm)
	}

	return 0.5*elevScore + 0.5*distScore
}

// geometryAngles is a narrow view over model.LookAngles-shaped data so
// this package doesn't need to import pkg/geometry directly.
type geometryAngles struct {
	ElevationDeg float64
	RangeKm      float64
}

// stabilityScore uses SINR and link margin, both normalized over their
// documented LEO ranges from internal/signal.
func stabilityScore(m model.SignalMetrics) float64 {
	sinrScore := clamp01((m.SINRdB + 10.0) / 40.0)
	marginScore := clamp01(m.LinkMarginDB / 50.0)
	return 0.5*sinrScore + 0.5*marginScore
}

// CompositeScore computes the 0.5*signal+0.3*geometry+0.2*stability
// score for one snapshot (whose Signal field must already be
// populated).
func CompositeScore(snap model.Snapshot) float64 {
	s := signalScore(snap.Signal)
	g := geometryScore(geometryAngles{ElevationDeg: snap.Angles.ElevationDeg, RangeKm: snap.Angles.RangeKm})
	st := stabilityScore(snap.Signal)
	return signalWeight*s + geometryWeight*g + stabilityWeight*st
}

// SatelliteFeasibility is the per-satellite verdict the filter reaches.
type SatelliteFeasibility struct {
	SatID            string  `json:"sat_id"`
	MeanScore        float64 `json:"mean_score"`
	ServiceWindowSum float64 `json:"service_window_sum_minutes"`
	Feasible         bool    `json:"feasible"`
}

// Apply scores a satellite's visible snapshots and its coalesced
// service windows, deciding feasibility against min_feasibility_score
// and a minimum service-window-sum threshold.
func (f *Filter) Apply(satID string, visible []model.Snapshot, windows []model.VisibilityWindow) SatelliteFeasibility {
	if len(visible) == 0 {
		return SatelliteFeasibility{SatID: satID}
	}

	var sum float64
	for _, snap := range visible {
		sum += CompositeScore(snap)
	}
	mean := sum / float64(len(visible))

	var windowSum float64
	for _, w := range windows {
		if w.MeetsQuorum {
			windowSum += w.DurationMin
		}
	}

	feasible := mean >= f.cfg.MinFeasibilityScore && windowSum >= f.cfg.MinServiceWindowMinutes

	return SatelliteFeasibility{
		SatID:            satID,
		MeanScore:        math.Round(mean*1e6) / 1e6,
		ServiceWindowSum: windowSum,
		Feasible:         feasible,
	}
}
