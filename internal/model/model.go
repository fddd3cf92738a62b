// Package model holds the pipeline's own data types: the TLE/satellite
// records flowing in from internal/ingest, the per-timestep kinematic
// snapshots produced during propagation and frame conversion, the
// visibility windows derived from them, and the event/handover/RL
// records built on top. This is distinct from internal/types, which
// models the catalog-browsing CLI's raw TLE/SATCAT data.
package model

import (
	"strconv"
	"time"

	"github.com/dzeleniak/orbitpipe/pkg/geometry"
)

// Constellation identifies which operator's satellite a record belongs
// to, used for handover-cost-factor lookups (internal/handover).
type Constellation string

const (
	ConstellationStarlink  Constellation = "starlink"
	ConstellationOneWeb    Constellation = "oneweb"
	ConstellationKuiper    Constellation = "kuiper"
	ConstellationUnknown   Constellation = "unknown"
)

// TLERecord is one satellite's Two-Line Element set as read from the
// Stage-1 input artifact (internal/ingest), with its catalog identity
// and the epoch the element set was valid at.
type TLERecord struct {
	NoradID       int           `json:"norad_id"`
	Name          string        `json:"name"`
	Constellation Constellation `json:"constellation"`
	Line1         string        `json:"line1"`
	Line2         string        `json:"line2"`
	EpochDatetime time.Time     `json:"epoch_datetime"`
}

// SatID returns the stable string identifier used to key snapshots,
// windows, events and decisions back to a TLERecord.
func (r TLERecord) SatID() string {
	if r.Name != "" {
		return r.Name
	}
	return strconv.Itoa(r.NoradID)
}

// VisibilityGates records the outcome of each individual visibility
// gate for one snapshot, so diagnostics can explain why a point was
// excluded rather than just reporting a boolean.
type VisibilityGates struct {
	ElevationOK  bool `json:"elevation_ok"`
	RangeOK      bool `json:"range_ok"`
	GeographicOK bool `json:"geographic_ok"`
}

// Visible reports whether every gate passed.
func (g VisibilityGates) Visible() bool { return g.ElevationOK && g.RangeOK && g.GeographicOK }

// SignalMetrics is the link-budget estimate for one snapshot.
type SignalMetrics struct {
	RSRPdBm      float64 `json:"rsrp_dbm"`
	SINRdB       float64 `json:"sinr_db"`
	RSRQdB       float64 `json:"rsrq_db"`
	LinkMarginDB float64 `json:"link_margin_db"`
	Quality      string  `json:"quality"`
}

// Snapshot is the full per-timestep state of one satellite relative to
// one ground observer: the propagated state vector, its frame
// conversion, look angles, and (once computed) the signal estimate and
// visibility gates.
type Snapshot struct {
	SatID string    `json:"sat_id"`
	T     time.Time `json:"t"`

	PositionTEMEKm  geometry.Vector3 `json:"position_teme_km"`
	VelocityTEMEKmS geometry.Vector3 `json:"velocity_teme_kms"`
	PositionITRFKm  geometry.Vector3 `json:"position_itrf_km"`
	VelocityITRFKmS geometry.Vector3 `json:"velocity_itrf_kms"`
	Geodetic        geometry.Geodetic `json:"geodetic"`

	Angles    geometry.LookAngles `json:"angles"`
	RangeRate float64             `json:"range_rate_kms"`

	Gates  VisibilityGates `json:"gates"`
	Signal SignalMetrics   `json:"signal"`

	PropagationStatus string `json:"propagation_status"`
}

// Visible is a convenience wrapper over the snapshot's gates.
func (s Snapshot) Visible() bool { return s.Gates.Visible() }

// VisibilityWindow is a coalesced run of consecutive visible snapshots
// for one satellite.
type VisibilityWindow struct {
	SatID          string    `json:"sat_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	DurationMin    float64   `json:"duration_min"`
	MaxElevation   float64   `json:"max_elevation_deg"`
	MeanElevation  float64   `json:"mean_elevation_deg"`
	SnapshotCount  int       `json:"snapshot_count"`
	MeetsQuorum    bool      `json:"meets_quorum"`
	Grade          string    `json:"grade"`
}

// ServiceWindowStats summarizes one satellite's windows over a run.
type ServiceWindowStats struct {
	SatID           string    `json:"sat_id"`
	WindowCount     int       `json:"window_count"`
	TotalVisibleMin float64   `json:"total_visible_time_min"`
	MeanDurationMin float64   `json:"mean_duration_min"`
	MaxElevation    float64   `json:"max_elevation_deg"`
	NextPassTime    time.Time `json:"next_pass_time"`
	BestGrade       string    `json:"service_quality_grade"`
}

// EventKind enumerates the 3GPP TS 38.331 measurement events detected.
type EventKind string

const (
	EventA3 EventKind = "A3"
	EventA4 EventKind = "A4"
	EventA5 EventKind = "A5"
	EventD2 EventKind = "D2"
)

// EventMeasurements preserves the raw trigger-formula inputs behind an
// EventRecord so downstream consumers can audit the decision without
// re-deriving it.
type EventMeasurements struct {
	ServingRSRPdBm   float64 `json:"serving_rsrp_dbm"`
	NeighborRSRPdBm  float64 `json:"neighbor_rsrp_dbm"`
	OffsetFreqDB     float64 `json:"offset_freq_db"`
	OffsetCellDB     float64 `json:"offset_cell_db"`
	HysteresisDB     float64 `json:"hysteresis_db"`
	ThresholdDB      float64 `json:"threshold_db,omitempty"`
	Threshold1DB     float64 `json:"threshold1_db,omitempty"`
	Threshold2DB     float64 `json:"threshold2_db,omitempty"`
	ServingRangeKm   float64 `json:"serving_range_km,omitempty"`
	NeighborRangeKm  float64 `json:"neighbor_range_km,omitempty"`
	HysteresisKm     float64 `json:"hysteresis_km,omitempty"`
	TriggerValue     float64 `json:"trigger_value"`
	Margin           float64 `json:"margin"`
}

// EventRecord is one detected 3GPP measurement-report event.
type EventRecord struct {
	ID               string            `json:"id"`
	Kind             EventKind         `json:"kind"`
	ServingSatID     string            `json:"serving_sat_id"`
	NeighborSatID    string            `json:"neighbor_sat_id"`
	TriggerTime      time.Time         `json:"trigger_time"`
	ConfirmedTime    time.Time         `json:"confirmed_time"`
	TimeToTriggerMs  int64             `json:"time_to_trigger_ms"`
	Measurements     EventMeasurements `json:"measurements"`
}

// HandoverUrgency ladders a HandoverDecision's priority.
type HandoverUrgency string

const (
	UrgencyCritical HandoverUrgency = "critical"
	UrgencyHigh     HandoverUrgency = "high"
	UrgencyMedium   HandoverUrgency = "medium"
	UrgencyLow      HandoverUrgency = "low"
)

// CandidateEvaluation is one neighbor's scored evaluation as a
// handover target, kept alongside the decision so the full candidate
// set (not just the chosen one) is auditable downstream.
type CandidateEvaluation struct {
	SatID          string  `json:"sat_id"`
	SignalScore    float64 `json:"signal_score"`
	GeometryScore  float64 `json:"geometry_score"`
	StabilityScore float64 `json:"stability_score"`
	CompositeScore float64 `json:"composite_score"`
	Feasible       bool    `json:"feasible"`
}

// HandoverDecision is the AHP-weighted evaluation of whether to move a
// UE from its serving satellite to a neighbor.
type HandoverDecision struct {
	ID                   string                `json:"decision_id"`
	EventID              string                `json:"event_id"`
	ServingSatID         string                `json:"serving_sat_id"`
	NeighborSatID        string                `json:"neighbor_sat_id"`
	T                    time.Time             `json:"t"`
	Recommendation       string                `json:"recommendation"`
	TargetSatID          string                `json:"target_sat_id,omitempty"`
	Confidence           float64               `json:"confidence"`
	SignalScore          float64               `json:"signal_score"`
	GeometryScore        float64               `json:"geometry_score"`
	StabilityScore       float64               `json:"stability_score"`
	CompositeScore       float64               `json:"composite_score"`
	RSRPImprovementDB    float64               `json:"rsrp_improvement_db"`
	DistanceChangeKm     float64               `json:"distance_change_km"`
	HandoverCostFactor   float64               `json:"handover_cost_factor"`
	ShouldHandover       bool                  `json:"should_handover"`
	Urgency              HandoverUrgency       `json:"urgency"`
	Reasoning            map[string]string     `json:"reasoning"`
	CandidateEvaluations []CandidateEvaluation `json:"candidate_evaluations"`
}
