// Package handover evaluates candidate satellites with AHP-weighted
// scoring (Saaty 1980) against the maintain/handover decision rule and
// an urgency ladder.
package handover

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/feasibility"
	"github.com/dzeleniak/orbitpipe/internal/model"
)

// decisionIDNamespace roots the UUIDv5 derivation for decision_id so
// that two runs over identical input produce byte-identical ids
// (spec.md §8 determinism property), unlike a random UUIDv4 would.
var decisionIDNamespace = uuid.MustParse("9a3c7e2a-1d4f-4c8b-8e6a-2f5b7c9d1e3a")

const (
	minRSRPImprovementDB = 3.0
	maxDistanceChangeKm  = 500.0
)

// constellationHandoverFactor is the relative handover-cost multiplier
// per constellation, grounded on CONSTELLATION_HANDOVER_FACTORS
// (propagation-delay-derived handover overhead).
var constellationHandoverFactor = map[model.Constellation]float64{
	model.ConstellationStarlink: 1.0,
	model.ConstellationOneWeb:   1.2,
	model.ConstellationKuiper:   1.1,
	model.ConstellationUnknown:  1.5,
}

// Candidate is one neighbor satellite under evaluation as a handover
// target for the serving satellite.
type Candidate struct {
	SatID       string
	Constellation model.Constellation
	Snapshot    model.Snapshot
	Feasible    bool
}

// Evaluator scores handover candidates against the serving satellite.
type Evaluator struct {
	cfg config.Config
}

// New builds an Evaluator from the loaded pipeline configuration
// (whose AHP weights must already satisfy config.Config.Validate).
func New(cfg config.Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// componentScores returns (signal, geometry, stability) in [0,1] for
// one candidate's snapshot. Signal uses the same RSRP normalization as
// internal/feasibility; geometry here is elevation only and stability
// is SINR only, so these sub-scores (and the composite Evaluate builds
// from them) differ from feasibility.CompositeScore.
func (e *Evaluator) componentScores(snap model.Snapshot) (float64, float64, float64) {
	composite := feasibility.CompositeScore(snap)
	// feasibility.CompositeScore is computed but not used; the
	// sub-scores below are derived directly from the snapshot.
	sinrScore := clamp01((snap.Signal.SINRdB + 10.0) / 40.0)
	rsrpScore := clamp01((snap.Signal.RSRPdBm + 120.0) / 60.0)
	elevScore := clamp01(snap.Angles.ElevationDeg / 90.0)
	_ = composite
	return rsrpScore, elevScore, sinrScore
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

// Evaluate scores every candidate against the serving satellite's
// snapshot and decides whether to recommend a handover.
func (e *Evaluator) Evaluate(eventID string, serving model.Snapshot, servingSatID string, candidates []Candidate) model.HandoverDecision {
	weights := []float64{e.cfg.AHPWeights.Signal, e.cfg.AHPWeights.Geometry, e.cfg.AHPWeights.Stability}

	type scored struct {
		Candidate
		signal, geometry, stability, composite float64
	}

	var best *scored
	evaluations := make([]model.CandidateEvaluation, 0, len(candidates))
	for _, c := range candidates {
		sig, geo, stab := e.componentScores(c.Snapshot)
		composite := stat.Mean([]float64{sig, geo, stab}, weights)
		sc := scored{Candidate: c, signal: sig, geometry: geo, stability: stab, composite: composite}
		evaluations = append(evaluations, model.CandidateEvaluation{
			SatID:          c.SatID,
			SignalScore:    sig,
			GeometryScore:  geo,
			StabilityScore: stab,
			CompositeScore: composite,
			Feasible:       c.Feasible,
		})
		if best == nil || sc.composite > best.composite || (sc.composite == best.composite && sc.SatID < best.SatID) {
			cp := sc
			best = &cp
		}
	}
	sort.Slice(evaluations, func(i, j int) bool { return evaluations[i].SatID < evaluations[j].SatID })

	candidateKey := "none"
	if best != nil {
		candidateKey = best.SatID
	}
	name := fmt.Sprintf("%s|%s|%s|%s", eventID, servingSatID, candidateKey, serving.T.UTC().Format("20060102T150405.000"))
	decision := model.HandoverDecision{
		ID:                   uuid.NewSHA1(decisionIDNamespace, []byte(name)).String(),
		EventID:              eventID,
		ServingSatID:         servingSatID,
		T:                    serving.T,
		Recommendation:       "maintain",
		Reasoning:            map[string]string{},
		CandidateEvaluations: evaluations,
	}

	if best == nil {
		decision.Reasoning["no_candidates"] = "no feasible neighbor satellites available"
		decision.Urgency = model.UrgencyLow
		return decision
	}

	decision.NeighborSatID = best.SatID
	decision.SignalScore = best.signal
	decision.GeometryScore = best.geometry
	decision.StabilityScore = best.stability
	decision.CompositeScore = best.composite
	decision.RSRPImprovementDB = best.Snapshot.Signal.RSRPdBm - serving.Signal.RSRPdBm
	decision.DistanceChangeKm = best.Snapshot.Angles.RangeKm - serving.Angles.RangeKm
	if decision.DistanceChangeKm < 0 {
		decision.DistanceChangeKm = -decision.DistanceChangeKm
	}
	factor, ok := constellationHandoverFactor[best.Constellation]
	if !ok {
		factor = constellationHandoverFactor[model.ConstellationUnknown]
	}
	decision.HandoverCostFactor = factor

	scoreOK := decision.CompositeScore > e.cfg.MinFeasibilityScore
	rsrpOK := decision.RSRPImprovementDB > minRSRPImprovementDB
	distanceOK := decision.DistanceChangeKm < maxDistanceChangeKm

	decision.Reasoning["composite_score_above_threshold"] = fmt.Sprintf("%v (%.3f > %.3f)", scoreOK, decision.CompositeScore, e.cfg.MinFeasibilityScore)
	decision.Reasoning["rsrp_improvement_sufficient"] = fmt.Sprintf("%v (%.2f dB > %.1f dB)", rsrpOK, decision.RSRPImprovementDB, minRSRPImprovementDB)
	decision.Reasoning["distance_change_acceptable"] = fmt.Sprintf("%v (%.1f km < %.1f km)", distanceOK, decision.DistanceChangeKm, maxDistanceChangeKm)
	decision.Reasoning["candidate_feasible"] = fmt.Sprintf("%v", best.Feasible)

	decision.ShouldHandover = scoreOK && rsrpOK && distanceOK && best.Feasible
	decision.Urgency = urgency(decision.ShouldHandover, decision.CompositeScore)
	decision.Confidence = clamp01(decision.CompositeScore)
	if decision.ShouldHandover {
		decision.Recommendation = fmt.Sprintf("handover_to:%s", best.SatID)
		decision.TargetSatID = best.SatID
	}

	return decision
}

// urgency ladders the decision per URGENCY_WEIGHTS: a recommended
// handover driven by a strong composite score is critical/high;
// otherwise the evaluation is preventive (low/medium).
func urgency(shouldHandover bool, compositeScore float64) model.HandoverUrgency {
	switch {
	case shouldHandover && compositeScore >= 0.8:
		return model.UrgencyCritical
	case shouldHandover:
		return model.UrgencyHigh
	case compositeScore >= 0.5:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}
