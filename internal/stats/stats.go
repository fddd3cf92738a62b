// Package stats implements the pipeline's statistics collection: an
// immutable value threaded through stages plus atomic counters for the
// handful of values multiple workers increment concurrently
// (propagation failures, dropped snapshots).
package stats

import (
	"sync/atomic"
	"time"
)

// Counters holds the atomic, concurrently-incremented counts a stage's
// workers accumulate. Zero value is ready to use.
type Counters struct {
	propagationFailures int64
	frameNonConvergent   int64
	snapshotsProduced    int64
	snapshotsDropped     int64
}

// IncPropagationFailure records one per-satellite SGP4 failure.
func (c *Counters) IncPropagationFailure() { atomic.AddInt64(&c.propagationFailures, 1) }

// IncFrameNonConvergent records one dropped snapshot from a
// non-convergent WGS84 solve.
func (c *Counters) IncFrameNonConvergent() { atomic.AddInt64(&c.frameNonConvergent, 1) }

// IncSnapshotsProduced records one successfully produced snapshot.
func (c *Counters) IncSnapshotsProduced() { atomic.AddInt64(&c.snapshotsProduced, 1) }

// IncSnapshotsDropped records one snapshot dropped for any reason.
func (c *Counters) IncSnapshotsDropped() { atomic.AddInt64(&c.snapshotsDropped, 1) }

// Snapshot is an immutable point-in-time read of Counters, safe to pass
// by value between stages.
type Snapshot struct {
	PropagationFailures int64 `json:"propagation_failures"`
	FrameNonConvergent   int64 `json:"frame_non_convergent"`
	SnapshotsProduced    int64 `json:"snapshots_produced"`
	SnapshotsDropped     int64 `json:"snapshots_dropped"`
}

// Snapshot takes an immutable read of the current counter values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		PropagationFailures: atomic.LoadInt64(&c.propagationFailures),
		FrameNonConvergent:   atomic.LoadInt64(&c.frameNonConvergent),
		SnapshotsProduced:    atomic.LoadInt64(&c.snapshotsProduced),
		SnapshotsDropped:     atomic.LoadInt64(&c.snapshotsDropped),
	}
}

// StageTiming is an immutable record of one stage's wall-clock duration.
type StageTiming struct {
	Stage      string        `json:"stage"`
	Start      time.Time     `json:"start"`
	Duration   time.Duration `json:"duration"`
}

// Collector is the immutable value the orchestrator threads through
// stages and aggregates at the end of a run. Each stage returns a new
// Collector built from WithTiming/WithCounters rather than mutating one
// in place.
type Collector struct {
	Timings  []StageTiming `json:"timings"`
	Counters Snapshot      `json:"counters"`
}

// WithTiming returns a new Collector with one more stage timing
// appended.
func (c Collector) WithTiming(t StageTiming) Collector {
	timings := make([]StageTiming, len(c.Timings), len(c.Timings)+1)
	copy(timings, c.Timings)
	timings = append(timings, t)
	return Collector{Timings: timings, Counters: c.Counters}
}

// WithCounters returns a new Collector with its counters snapshot
// replaced (the orchestrator calls this whenever it takes a fresh read
// of its Counters).
func (c Collector) WithCounters(s Snapshot) Collector {
	return Collector{Timings: c.Timings, Counters: s}
}

// TotalDuration sums every recorded stage timing.
func (c Collector) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range c.Timings {
		total += t.Duration
	}
	return total
}
