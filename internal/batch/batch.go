// Package batch partitions independent per-satellite propagation work
// across a worker pool sized min(8, NumCPU), enforces per-chunk and
// per-batch timeouts, and merges results back in deterministic
// (satellite_id, t) order. Concurrency is built on sourcegraph/conc's
// generic result pool.
package batch

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/dzeleniak/orbitpipe/internal/model"
	"github.com/dzeleniak/orbitpipe/internal/pipeerr"
	"github.com/dzeleniak/orbitpipe/pkg/geometry"
	"github.com/dzeleniak/orbitpipe/pkg/propagator"
	"github.com/dzeleniak/orbitpipe/pkg/timeframe"
)

// acceleratorThreshold is the point-count above which a device-offload
// path would activate; below it the CPU path is mandatory (offload
// overhead dominates).
const acceleratorThreshold = 100_000

const (
	chunkTimeout = 60 * time.Second
	batchTimeout = 10 * time.Minute
)

// Job is one satellite's independent unit of batcher work: propagate,
// frame-convert, and compute look angles at every point in Times.
type Job struct {
	Record   model.TLERecord
	Times    []time.Time
	Observer geometry.ObserverPosition
}

// Result is one Job's outcome. Err is non-nil when the satellite's TLE
// could not be parsed (no snapshots), or when the job's chunk timed out
// or was canceled (Snapshots then holds the points computed so far).
// Per-timepoint failures (a non-ok SGP4 status or a failed frame
// transform) drop that point from Snapshots.
type Result struct {
	SatID     string
	Snapshots []model.Snapshot
	Err       error
}

// FallbackEvent records an instrumented (non-silent) accelerator
// fallback.
type FallbackEvent struct {
	RequestedPoints int
	Reason          string
}

// Batcher runs Jobs concurrently across a bounded worker pool.
type Batcher struct {
	workers   int
	converter *timeframe.Converter
}

// New builds a Batcher. workers <= 0 resolves to min(8, NumCPU).
func New(workers int, converter *timeframe.Converter) *Batcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}
	if converter == nil {
		converter = timeframe.NewConverter(nil)
	}
	return &Batcher{workers: workers, converter: converter}
}

// Run executes every job, chunked across the worker pool, honoring the
// per-chunk and per-batch timeouts. It returns results sorted by
// satellite id, with each Result's Snapshots already sorted by t.
func (b *Batcher) Run(ctx context.Context, jobs []Job) ([]Result, []FallbackEvent, error) {
	totalPoints := 0
	for _, j := range jobs {
		totalPoints += len(j.Times)
	}

	var fallbacks []FallbackEvent
	if totalPoints > acceleratorThreshold {
		// No accelerator is wired in this build; the CPU path is the
		// only implementation, so every above-threshold batch is an
		// instrumented fallback rather than a silent one.
		fallbacks = append(fallbacks, FallbackEvent{
			RequestedPoints: totalPoints,
			Reason:          "no accelerator backend configured; using CPU worker pool",
		})
	}

	batchCtx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	p := pool.NewWithResults[Result]().WithMaxGoroutines(b.workers)
	for _, job := range jobs {
		job := job
		p.Go(func() Result {
			return b.runOne(batchCtx, job)
		})
	}

	results := p.Wait()

	if batchCtx.Err() == context.DeadlineExceeded {
		return nil, fallbacks, pipeerr.New(pipeerr.KindStageTimeout, "batch.Run", "batch exceeded 10 minute budget", "reduce satellite count or increase worker count")
	}

	// Results come back in arbitrary completion order; sort by
	// satellite id to make the merged output deterministic regardless
	// of goroutine scheduling.
	sort.Slice(results, func(i, j int) bool { return results[i].SatID < results[j].SatID })
	for i := range results {
		snaps := results[i].Snapshots
		sort.Slice(snaps, func(a, c int) bool { return snaps[a].T.Before(snaps[c].T) })
	}

	return results, fallbacks, nil
}

func (b *Batcher) runOne(ctx context.Context, job Job) Result {
	chunkCtx, cancel := context.WithTimeout(ctx, chunkTimeout)
	defer cancel()

	satID := job.Record.SatID()

	prop, err := propagator.New(job.Record.Line1, job.Record.Line2)
	if err != nil {
		return Result{SatID: satID, Err: err}
	}

	snapshots := make([]model.Snapshot, 0, len(job.Times))
	for _, t := range job.Times {
		select {
		case <-chunkCtx.Done():
			return Result{SatID: satID, Snapshots: snapshots, Err: chunkCtx.Err()}
		default:
		}

		snap, ok := computeSnapshot(b.converter, prop, job.Observer, satID, t)
		if ok {
			snapshots = append(snapshots, snap)
		}
	}

	return Result{SatID: satID, Snapshots: snapshots}
}

// computeSnapshot chains propagation -> frame conversion -> look-angle
// computation for one satellite at one instant. ok is false when the
// point must be dropped (non-ok SGP4 status, or a non-convergent WGS84
// solve).
func computeSnapshot(conv *timeframe.Converter, prop *propagator.Propagator, observer geometry.ObserverPosition, satID string, t time.Time) (model.Snapshot, bool) {
	propResult := prop.Propagate(t)
	if !propResult.OK() {
		return model.Snapshot{
			SatID:             satID,
			T:                 t,
			PropagationStatus: string(propResult.Status),
		}, false
	}

	posITRF, velITRF, _, err := conv.ToITRF(propResult.PositionTEMEKm, propResult.VelocityTEMEKmS, t)
	if err != nil {
		return model.Snapshot{SatID: satID, T: t, PropagationStatus: "frame_transform_failed"}, false
	}

	geodetic, err := conv.ToWGS84(posITRF)
	if err != nil {
		return model.Snapshot{SatID: satID, T: t, PropagationStatus: "frame_transform_non_convergent"}, false
	}

	angles := geometry.Observe(observer, posITRF)
	rangeRate := geometry.RangeRate(observer, posITRF, velITRF)

	return model.Snapshot{
		SatID:             satID,
		T:                 t,
		PositionTEMEKm:    propResult.PositionTEMEKm,
		VelocityTEMEKmS:   propResult.VelocityTEMEKmS,
		PositionITRFKm:    posITRF,
		VelocityITRFKmS:   velITRF,
		Geodetic:          geodetic,
		Angles:            angles,
		RangeRate:         rangeRate,
		PropagationStatus: string(propResult.Status),
	}, true
}
