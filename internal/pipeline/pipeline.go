// Package pipeline sequences propagation, frame transforms, geometry,
// signal estimation, visibility filtering, feasibility scoring, event
// detection, pool verification, handover evaluation, and RL dataset
// generation into stages 2-6, running validation gates between them,
// collecting an immutable stats.Collector, and writing each stage's
// output and validation-snapshot artifacts. No stage falls back to
// simulated data on failure; a gate failure halts the run with a
// structured pipeerr.Error.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dzeleniak/orbitpipe/internal/artifact"
	"github.com/dzeleniak/orbitpipe/internal/batch"
	"github.com/dzeleniak/orbitpipe/internal/config"
	"github.com/dzeleniak/orbitpipe/internal/events"
	"github.com/dzeleniak/orbitpipe/internal/feasibility"
	"github.com/dzeleniak/orbitpipe/internal/handover"
	"github.com/dzeleniak/orbitpipe/internal/ingest"
	"github.com/dzeleniak/orbitpipe/internal/metrics"
	"github.com/dzeleniak/orbitpipe/internal/model"
	"github.com/dzeleniak/orbitpipe/internal/pipeerr"
	"github.com/dzeleniak/orbitpipe/internal/pool"
	"github.com/dzeleniak/orbitpipe/internal/rldataset"
	"github.com/dzeleniak/orbitpipe/internal/signal"
	"github.com/dzeleniak/orbitpipe/internal/stats"
	"github.com/dzeleniak/orbitpipe/internal/visibility"
	"github.com/dzeleniak/orbitpipe/pkg/geometry"
	"github.com/dzeleniak/orbitpipe/pkg/propagator"
	"github.com/dzeleniak/orbitpipe/pkg/timeframe"
)

// Orchestrator sequences the full pipeline run.
type Orchestrator struct {
	cfg      config.Config
	observer geometry.ObserverPosition
	writer   *artifact.Writer
	counters stats.Counters
	metrics  *metrics.Registry
}

// New builds an Orchestrator for one run, rooted at outputDir and
// stamped with startTime (the pipeline's own start time, UTC). reg may
// be nil, in which case metric recording is a no-op.
func New(cfg config.Config, observer geometry.ObserverPosition, outputDir string, startTime time.Time, reg *metrics.Registry) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		observer: observer,
		writer:   artifact.NewWriter(outputDir, startTime),
		metrics:  reg,
	}
}

// recordStage pushes one stage's completion into the metrics registry,
// when one is wired.
func (o *Orchestrator) recordStage(stage string, start time.Time, passed bool) {
	if o.metrics == nil {
		return
	}
	outcome := "passed"
	if !passed {
		outcome = "failed"
	}
	o.metrics.StagesCompleted.WithLabelValues(stage, outcome).Inc()
	o.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Result is everything a full run produced, returned to the CLI layer
// for final reporting/exit-code decisions.
type Result struct {
	FeasibleCount int
	Events        []model.EventRecord
	PoolResults   map[model.Constellation]pool.Result
	Decisions     []model.HandoverDecision
	Stats         stats.Collector
	ArtifactPaths []string
}

// Run executes the whole pipeline against the Stage-1 input artifact at
// inputPath.
func (o *Orchestrator) Run(ctx context.Context, inputPath string) (Result, error) {
	var result Result
	var collector stats.Collector

	if err := o.cfg.Validate(); err != nil {
		return result, pipeerr.Wrap(pipeerr.ValidationFailedKind("ahp_weights"), "pipeline.Run", "correct ahp_weights in config so signal+geometry+stability sum to 1.0", err)
	}

	input, err := ingest.Load(inputPath)
	if err != nil {
		return result, err
	}

	// --- Stage 2: propagation + frame conversion + geometry ---
	stage2Start := time.Now()
	converter := timeframe.NewConverter(nil)
	batcher := batch.New(o.cfg.Workers, converter)

	jobs := make([]batch.Job, 0, len(input.Records))
	recordsByID := map[string]model.TLERecord{}
	for _, rec := range input.Records {
		times, _, err := propagator.DeriveSeries(rec.EpochDatetime, rec.Line2, o.cfg.SamplingInterval())
		if err != nil {
			o.counters.IncPropagationFailure()
			continue
		}
		jobs = append(jobs, batch.Job{Record: rec, Times: times, Observer: o.observer})
		recordsByID[rec.SatID()] = rec
	}

	batchResults, fallbacks, err := batcher.Run(ctx, jobs)
	if err != nil {
		return result, err
	}
	for range fallbacks {
		// Instrumented, not silent: each fallback is counted in the
		// SnapshotsDropped stats counter carried in Result.Stats.
		o.counters.IncSnapshotsDropped()
	}

	seriesBySat := map[string][]model.Snapshot{}
	for _, r := range batchResults {
		if r.Err != nil {
			o.counters.IncPropagationFailure()
			continue
		}
		for i := range r.Snapshots {
			snap := r.Snapshots[i]
			rec := recordsByID[r.SatID]
			snap.Signal = signal.Estimate(rec.Constellation, snap.Angles.ElevationDeg, snap.Angles.RangeKm)
			r.Snapshots[i] = snap
			o.counters.IncSnapshotsProduced()
			if o.metrics != nil {
				o.metrics.SnapshotsTotal.WithLabelValues("produced").Inc()
			}
		}
		seriesBySat[r.SatID] = r.Snapshots
	}
	if o.metrics != nil {
		snap := o.counters.Snapshot()
		o.metrics.PropagationFails.WithLabelValues("all").Add(float64(snap.PropagationFailures))
	}

	collector = collector.WithTiming(stats.StageTiming{Stage: "stage2_propagation", Start: stage2Start, Duration: time.Since(stage2Start)})
	collector = collector.WithCounters(o.counters.Snapshot())

	stage2Validation := artifact.ValidationResult{Stage: "stage2_propagation"}
	stage2Validation.Checks = append(stage2Validation.Checks, artifact.ValidationCheck{
		Name:      "satellites_produced",
		Passed:    len(seriesBySat) > 0,
		Rationale: fmt.Sprintf("%d of %d input records produced at least one snapshot", len(seriesBySat), len(input.Records)),
	})
	stage2Validation.Passed = stage2Validation.AllPassed()
	if path, werr := o.writer.WriteStageOutput(2, artifact.StageOutput{Stage: "stage2_propagation", Data: summarizeSeries(seriesBySat), Metadata: map[string]any{"satellite_count": len(seriesBySat)}, Validation: stage2Validation}); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	if path, werr := o.writer.WriteValidationSnapshot(2, stage2Validation); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	o.recordStage("stage2_propagation", stage2Start, stage2Validation.Passed)
	if !stage2Validation.Passed {
		return result, pipeerr.New(pipeerr.ValidationFailedKind("stage2_propagation"), "pipeline.Run", "no satellite produced a usable snapshot series", "check TLE validity and observation window configuration")
	}

	// --- Stage 3: visibility ---
	stage3Start := time.Now()
	visFilter := visibility.New(o.cfg)
	visibleBySat := map[string][]model.Snapshot{}
	windowsBySat := map[string][]model.VisibilityWindow{}
	statsBySat := map[string]model.ServiceWindowStats{}
	for satID, series := range seriesBySat {
		rec := recordsByID[satID]
		visible := visFilter.Apply(rec.Constellation, series)
		if len(visible) == 0 {
			continue
		}
		visibleBySat[satID] = visible
		windows := visFilter.CoalesceWindows(satID, visible)
		windowsBySat[satID] = windows
		statsBySat[satID] = visibility.Stats(satID, windows, seriesSpan(series))
	}
	collector = collector.WithTiming(stats.StageTiming{Stage: "stage3_visibility", Start: stage3Start, Duration: time.Since(stage3Start)})

	stage3Validation := artifact.ValidationResult{Stage: "stage3_visibility"}
	stage3Validation.Checks = append(stage3Validation.Checks, artifact.ValidationCheck{
		Name:      "elevation_bound",
		Passed:    elevationBoundHolds(visibleBySat, recordsByID, o.cfg),
		Rationale: "no visible snapshot has elevation below its constellation's threshold",
	})
	stage3Validation.Passed = stage3Validation.AllPassed()
	if path, werr := o.writer.WriteStageOutput(3, artifact.StageOutput{Stage: "stage3_visibility", Data: map[string]any{"windows": summarizeWindows(windowsBySat), "stats": statsBySat}, Metadata: map[string]any{"visible_satellite_count": len(visibleBySat)}, Validation: stage3Validation}); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	if path, werr := o.writer.WriteValidationSnapshot(3, stage3Validation); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	o.recordStage("stage3_visibility", stage3Start, stage3Validation.Passed)
	if !stage3Validation.Passed {
		return result, pipeerr.New(pipeerr.ValidationFailedKind("elevation_bound"), "pipeline.Run", "a visible snapshot violated its constellation's elevation gate", "check visibility.Filter.Gate")
	}

	// --- Stage 4: link feasibility ---
	stage4Start := time.Now()
	feasFilter := feasibility.New(o.cfg)
	feasibleSatIDs := map[string]bool{}
	var feasibilityResults []feasibility.SatelliteFeasibility
	for satID, visible := range visibleBySat {
		fr := feasFilter.Apply(satID, visible, windowsBySat[satID])
		feasibilityResults = append(feasibilityResults, fr)
		if fr.Feasible {
			feasibleSatIDs[satID] = true
		}
	}
	result.FeasibleCount = len(feasibleSatIDs)
	collector = collector.WithTiming(stats.StageTiming{Stage: "stage4_feasibility", Start: stage4Start, Duration: time.Since(stage4Start)})

	stage4Validation := artifact.ValidationResult{Stage: "stage4_feasibility"}
	stage4Validation.Passed = true
	if path, werr := o.writer.WriteStageOutput(4, artifact.StageOutput{Stage: "stage4_feasibility", Data: feasibilityResults, Metadata: map[string]any{"feasible_count": result.FeasibleCount}, Validation: stage4Validation}); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	if path, werr := o.writer.WriteValidationSnapshot(4, stage4Validation); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	o.recordStage("stage4_feasibility", stage4Start, stage4Validation.Passed)

	// --- Stage 5: event detection + pool verification ---
	stage5Start := time.Now()
	timePoints := buildTimePoints(feasibleSatIDs, visibleBySat)
	detector := events.New(o.cfg)
	result.Events = detector.Detect(timePoints)
	if o.metrics != nil {
		for _, ev := range result.Events {
			o.metrics.EventsDetected.WithLabelValues(string(ev.Kind)).Inc()
		}
	}

	poolVerifier := pool.New(o.cfg)
	result.PoolResults = map[model.Constellation]pool.Result{}
	for _, constellation := range []model.Constellation{model.ConstellationStarlink, model.ConstellationOneWeb} {
		var sets []pool.WindowSet
		var period time.Duration
		for satID := range feasibleSatIDs {
			rec := recordsByID[satID]
			if rec.Constellation != constellation {
				continue
			}
			sets = append(sets, pool.WindowSet{SatID: satID, Windows: windowsBySat[satID], Timestamps: snapshotTimes(seriesBySat[satID])})
			if p, perr := propagator.OrbitalPeriod(rec.Line2); perr == nil && p > period {
				period = p
			}
		}
		result.PoolResults[constellation] = poolVerifier.Verify(constellation, sets, period)
	}
	collector = collector.WithTiming(stats.StageTiming{Stage: "stage5_events_pool", Start: stage5Start, Duration: time.Since(stage5Start)})

	stage5Validation := artifact.ValidationResult{Stage: "stage5_events_pool"}
	stage5Validation.Checks = append(stage5Validation.Checks, artifact.ValidationCheck{
		Name:      "event_ordering",
		Passed:    eventsNonDecreasing(result.Events),
		Rationale: "events are emitted non-decreasing in t",
	})
	for constellation, pr := range result.PoolResults {
		stage5Validation.Checks = append(stage5Validation.Checks, artifact.ValidationCheck{
			Name:      fmt.Sprintf("%s_incomplete_period_coverage", constellation),
			Passed:    !pr.IncompletePeriodCoverage,
			Rationale: fmt.Sprintf("span %.1f min vs required %.1f min", pr.SpanMinutes, pr.RequiredSpanMinutes),
		})
	}
	stage5Validation.Passed = stage5Validation.AllPassed()
	if path, werr := o.writer.WriteStageOutput(5, artifact.StageOutput{Stage: "stage5_events_pool", Data: map[string]any{"events": result.Events, "pool": result.PoolResults}, Metadata: map[string]any{"event_count": len(result.Events)}, Validation: stage5Validation}); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	if path, werr := o.writer.WriteValidationSnapshot(5, stage5Validation); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	for _, pr := range result.PoolResults {
		if pr.IncompletePeriodCoverage {
			o.recordStage("stage5_events_pool", stage5Start, false)
			return result, pipeerr.New(pipeerr.KindInsufficientCoverage, "pipeline.Run", "time-point span below 0.9x orbital period", "extend the observation window or sampling range")
		}
	}
	o.recordStage("stage5_events_pool", stage5Start, stage5Validation.Passed)
	if !stage5Validation.Passed {
		return result, pipeerr.New(pipeerr.ValidationFailedKind("event_ordering"), "pipeline.Run", "events were not emitted in non-decreasing t order", "check internal/events.Detector.Detect")
	}

	// --- Stage 6: handover evaluation + RL dataset ---
	stage6Start := time.Now()
	hoEvaluator := handover.New(o.cfg)
	for _, ev := range result.Events {
		serving, ok := visibleSnapshotAt(visibleBySat, ev.ServingSatID, ev.TriggerTime)
		if !ok {
			continue
		}
		candidates := buildCandidates(feasibleSatIDs, visibleBySat, recordsByID, ev.ServingSatID, ev.TriggerTime)
		decision := hoEvaluator.Evaluate(ev.ID, serving, ev.ServingSatID, candidates)
		result.Decisions = append(result.Decisions, decision)
		if o.metrics != nil {
			o.metrics.HandoversEvaluated.Inc()
		}
	}

	dqn, a3c, ppo, sac := buildRLDataset(feasibleSatIDs, visibleBySat)
	collector = collector.WithTiming(stats.StageTiming{Stage: "stage6_handover_rl", Start: stage6Start, Duration: time.Since(stage6Start)})

	stage6Validation := artifact.ValidationResult{Stage: "stage6_handover_rl"}
	stage6Validation.Passed = true
	stage6Data := map[string]any{
		"decisions":            result.Decisions,
		"dqn_transition_count": len(dqn.Transitions),
		"dqn_transitions":      dqn.Transitions,
		"a3c_samples":          a3c,
		"ppo_samples":          ppo,
		"sac_samples":          sac,
	}
	if path, werr := o.writer.WriteStageOutput(6, artifact.StageOutput{Stage: "stage6_handover_rl", Data: stage6Data, Metadata: map[string]any{"decision_count": len(result.Decisions)}, Validation: stage6Validation}); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	if path, werr := o.writer.WriteValidationSnapshot(6, stage6Validation); werr == nil {
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}
	o.recordStage("stage6_handover_rl", stage6Start, stage6Validation.Passed)

	collector = collector.WithCounters(o.counters.Snapshot())
	result.Stats = collector

	return result, nil
}

func summarizeSeries(seriesBySat map[string][]model.Snapshot) map[string]int {
	out := make(map[string]int, len(seriesBySat))
	for id, s := range seriesBySat {
		out[id] = len(s)
	}
	return out
}

func summarizeWindows(windowsBySat map[string][]model.VisibilityWindow) map[string][]model.VisibilityWindow {
	return windowsBySat
}

// snapshotTimes extracts the sampled timestamps from a satellite's
// snapshot series, the per-time-point grid internal/pool sweeps over.
func snapshotTimes(series []model.Snapshot) []time.Time {
	times := make([]time.Time, len(series))
	for i, s := range series {
		times[i] = s.T
	}
	return times
}

// seriesSpan returns the elapsed time between a satellite's first and
// last propagated snapshot, the observation span visibility.Grade/Stats
// normalize coverage against.
func seriesSpan(series []model.Snapshot) time.Duration {
	if len(series) == 0 {
		return 0
	}
	min, max := series[0].T, series[0].T
	for _, s := range series {
		if s.T.Before(min) {
			min = s.T
		}
		if s.T.After(max) {
			max = s.T
		}
	}
	return max.Sub(min)
}

func elevationBoundHolds(visibleBySat map[string][]model.Snapshot, recordsByID map[string]model.TLERecord, cfg config.Config) bool {
	for satID, series := range visibleBySat {
		rec := recordsByID[satID]
		threshold := cfg.ElevationThresholds.DefaultDeg
		switch rec.Constellation {
		case model.ConstellationStarlink:
			threshold = cfg.ElevationThresholds.StarlinkDeg
		case model.ConstellationOneWeb:
			threshold = cfg.ElevationThresholds.OneWebDeg
		}
		for _, snap := range series {
			if snap.Angles.ElevationDeg < threshold {
				return false
			}
		}
	}
	return true
}

func eventsNonDecreasing(evs []model.EventRecord) bool {
	for i := 1; i < len(evs); i++ {
		if evs[i].TriggerTime.Before(evs[i-1].TriggerTime) {
			return false
		}
	}
	return true
}

func buildTimePoints(feasibleSatIDs map[string]bool, visibleBySat map[string][]model.Snapshot) []events.TimePoint {
	byTime := map[time.Time]map[string]model.Snapshot{}
	for satID := range feasibleSatIDs {
		for _, snap := range visibleBySat[satID] {
			m, ok := byTime[snap.T]
			if !ok {
				m = map[string]model.Snapshot{}
				byTime[snap.T] = m
			}
			m[satID] = snap
		}
	}

	times := make([]time.Time, 0, len(byTime))
	for t := range byTime {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	points := make([]events.TimePoint, 0, len(times))
	for _, t := range times {
		snaps := byTime[t]
		serving := ""
		bestRSRP := -1000.0
		for satID, snap := range snaps {
			if snap.Signal.RSRPdBm > bestRSRP || (snap.Signal.RSRPdBm == bestRSRP && satID < serving) {
				bestRSRP = snap.Signal.RSRPdBm
				serving = satID
			}
		}
		points = append(points, events.TimePoint{ServingSatID: serving, Snapshots: snaps})
	}
	return points
}

func visibleSnapshotAt(visibleBySat map[string][]model.Snapshot, satID string, t time.Time) (model.Snapshot, bool) {
	for _, snap := range visibleBySat[satID] {
		if snap.T.Equal(t) {
			return snap, true
		}
	}
	return model.Snapshot{}, false
}

func buildCandidates(feasibleSatIDs map[string]bool, visibleBySat map[string][]model.Snapshot, recordsByID map[string]model.TLERecord, servingSatID string, t time.Time) []handover.Candidate {
	var candidates []handover.Candidate
	for satID := range feasibleSatIDs {
		if satID == servingSatID {
			continue
		}
		snap, ok := visibleSnapshotAt(visibleBySat, satID, t)
		if !ok {
			continue
		}
		candidates = append(candidates, handover.Candidate{
			SatID:         satID,
			Constellation: recordsByID[satID].Constellation,
			Snapshot:      snap,
			Feasible:      true,
		})
	}
	return candidates
}

// rlReturnDiscount is the discount factor used to fold a satellite's
// transition rewards into a returns-to-go series, the realized-return
// input BuildA3C/BuildPPO/BuildSAC compare against the value estimate.
const rlReturnDiscount = 0.99

// buildRLDataset derives all four C11 training formats (DQN, A3C, PPO,
// SAC) from the same per-satellite visible snapshot series, iterating
// satellites in sorted order so the resulting sample sets are
// deterministic across runs regardless of map iteration order.
func buildRLDataset(feasibleSatIDs map[string]bool, visibleBySat map[string][]model.Snapshot) (*rldataset.DQNDataset, []rldataset.A3CSample, []rldataset.PPOSample, []rldataset.SACSample) {
	satIDs := make([]string, 0, len(feasibleSatIDs))
	for satID := range feasibleSatIDs {
		satIDs = append(satIDs, satID)
	}
	sort.Strings(satIDs)

	dqn := rldataset.NewDQNDataset()
	var a3c []rldataset.A3CSample
	var ppo []rldataset.PPOSample
	var sac []rldataset.SACSample

	for _, satID := range satIDs {
		series := visibleBySat[satID]
		n := len(series)
		if n < 2 {
			continue
		}

		rewards := make([]float64, n-1)
		for i := 0; i+1 < n; i++ {
			rewards[i] = rldataset.Reward(series[i+1].Signal.LinkMarginDB-series[i].Signal.LinkMarginDB, 0, 0, series[i+1].Signal.RSRPdBm/120.0+1)
		}

		// returns-to-go: backward discounted sum of this satellite's
		// own reward sequence, computed once per satellite so BuildA3C's
		// advantage (realizedReturn - value) reflects the rest of the
		// episode rather than just the one-step reward.
		returns := make([]float64, n-1)
		var running float64
		for i := n - 2; i >= 0; i-- {
			running = rewards[i] + rlReturnDiscount*running
			returns[i] = running
		}

		maintainAction := rldataset.ActionIndex("maintain")
		for i := 0; i+1 < n; i++ {
			s := rldataset.BuildState(series[i])
			sNext := rldataset.BuildState(series[i+1])
			dqn.Add(rldataset.Transition{
				State:     s,
				Action:    maintainAction,
				Reward:    rewards[i],
				NextState: sNext,
				Done:      i+2 == n,
			})

			// The immediate reward stands in for a critic's value
			// estimate in the absence of a trained model; returns[i] is
			// the realized multi-step return it is judged against.
			value := rewards[i]
			a3c = append(a3c, rldataset.BuildA3C(s, value, returns[i]))
			ppo = append(ppo, rldataset.BuildPPO(s, maintainAction, value, returns[i]))
			sac = append(sac, rldataset.BuildSAC(s, value, returns[i]))
		}
	}
	return dqn, a3c, ppo, sac
}
