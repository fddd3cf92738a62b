// Package rldataset builds deterministic state/action/reward encodings
// feeding DQN/A3C/PPO/SAC training sample formats. No random() call
// anywhere in this package — PPO's perturbed policy uses a
// deterministic state-hash-derived noise term instead.
package rldataset

import (
	"hash/fnv"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/dzeleniak/orbitpipe/internal/model"
)

// State is the 7-dim RL state vector: [lat, lon, alt, rsrp, elevation,
// distance, sinr].
type State [7]float64

// BuildState encodes one snapshot into the canonical state vector.
func BuildState(snap model.Snapshot) State {
	return State{
		snap.Geodetic.LatitudeDeg,
		snap.Geodetic.LongitudeDeg,
		snap.Geodetic.AltitudeKm,
		snap.Signal.RSRPdBm,
		snap.Angles.ElevationDeg,
		snap.Angles.RangeKm,
		snap.Signal.SINRdB,
	}
}

// ActionSpace is the fixed 5-way action set: maintain + up to 4
// handover candidates.
var ActionSpace = [5]string{"maintain", "ho_candidate_1", "ho_candidate_2", "ho_candidate_3", "ho_candidate_4"}

// ActionIndex returns the index of an action name within ActionSpace,
// or -1 if unrecognized.
func ActionIndex(action string) int {
	for i, a := range ActionSpace {
		if a == action {
			return i
		}
	}
	return -1
}

// normalizeFeature maps a feature into roughly [-1,1] using the
// documented LEO operating ranges from internal/signal, so the softmax
// logits below aren't dominated by unscaled units like latitude
// degrees vs. RSRP dBm.
func normalizeFeature(index int, v float64) float64 {
	switch index {
	case 0: // lat
		return v / 90.0
	case 1: // lon
		return v / 180.0
	case 2: // alt km
		return clamp(v/2000.0, -1, 1)
	case 3: // rsrp
		return clamp((v+120.0)/60.0*2-1, -1, 1)
	case 4: // elevation
		return v / 90.0
	case 5: // distance km
		return clamp(v/2000.0, -1, 1)
	case 6: // sinr
		return clamp((v+10.0)/40.0*2-1, -1, 1)
	default:
		return v
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stateHashNoise derives a deterministic pseudo-noise value in
// [-bound, bound] from a state vector, used instead of random() for
// PPO's "perturbed policy" measurement-uncertainty term (3GPP TS
// 38.133, ±5%).
func stateHashNoise(s State, bound float64) float64 {
	h := fnv.New64a()
	for _, v := range s {
		var buf [8]byte
		bits := math.Float64bits(v)
		for i := 0; i < 8; i++ {
			buf[i] = byte(bits >> (8 * i))
		}
		h.Write(buf[:])
	}
	sum := h.Sum64()
	// Map the 64-bit hash into [-1, 1], then scale by bound.
	frac := float64(sum%1_000_000) / 1_000_000.0
	return (frac*2 - 1) * bound
}

// PolicyLogits computes deterministic softmax-ready logits over
// ActionSpace from a state vector: a fixed linear combination of the
// normalized features, different per action index so the five logits
// aren't identical. No randomness.
func PolicyLogits(s State) [5]float64 {
	var norm [7]float64
	for i, v := range s {
		norm[i] = normalizeFeature(i, v)
	}

	var logits [5]float64
	for a := 0; a < 5; a++ {
		var sum float64
		for i, v := range norm {
			// Per-action weight pattern: a simple deterministic
			// rotation so each action responds to a different
			// leading feature, while every feature still contributes.
			weight := 1.0 / float64(1+((i+a)%7))
			sum += weight * v
		}
		logits[a] = sum
	}
	return logits
}

// Softmax turns logits into a probability distribution, subtracting the
// largest logit (gonum's floats.Max) before exponentiating for
// numerical stability.
func Softmax(logits [5]float64) [5]float64 {
	l := logits[:]
	maxLogit := floats.Max(l)
	exps := make([]float64, len(l))
	var sum float64
	for i, v := range l {
		exps[i] = math.Exp(v - maxLogit)
		sum += exps[i]
	}
	var probs [5]float64
	for i := range exps {
		probs[i] = exps[i] / sum
	}
	return probs
}

// Reward computes +qos_gain - 0.5*interruption - 0.1*ho_cost +
// quality_score.
func Reward(qosGain, interruption, hoCost, qualityScore float64) float64 {
	return qosGain - 0.5*interruption - 0.1*hoCost + qualityScore
}

// Transition is one DQN-style (s, a, r, s', done) tuple.
type Transition struct {
	State     State   `json:"state"`
	Action    int     `json:"action"`
	Reward    float64 `json:"reward"`
	NextState State   `json:"next_state"`
	Done      bool    `json:"done"`
}

// DQNDataset wraps transitions in a bounded replay buffer (capacity
// 100000). Older transitions are evicted once the buffer is full
// (FIFO), matching standard experience-replay semantics.
type DQNDataset struct {
	Capacity     int          `json:"capacity"`
	Transitions  []Transition `json:"transitions"`
}

// NewDQNDataset builds an empty buffer at the standard replay capacity.
func NewDQNDataset() *DQNDataset {
	return &DQNDataset{Capacity: 100_000}
}

// Add appends a transition, evicting the oldest if the buffer is full.
func (d *DQNDataset) Add(t Transition) {
	d.Transitions = append(d.Transitions, t)
	if len(d.Transitions) > d.Capacity {
		d.Transitions = d.Transitions[len(d.Transitions)-d.Capacity:]
	}
}

// A3CSample is one (s, action_probs, V, advantage) sample.
type A3CSample struct {
	State       State      `json:"state"`
	ActionProbs [5]float64 `json:"action_probs"`
	Value       float64    `json:"value"`
	Advantage   float64    `json:"advantage"`
}

// BuildA3C derives an A3C sample from a state, a value estimate, and
// the realized return.
func BuildA3C(s State, value, realizedReturn float64) A3CSample {
	probs := Softmax(PolicyLogits(s))
	return A3CSample{
		State:       s,
		ActionProbs: probs,
		Value:       value,
		Advantage:   realizedReturn - value,
	}
}

// PPOClipEpsilon is PPO's clipping ratio.
const PPOClipEpsilon = 0.2

// PPOSample extends A3CSample with a log-probability and the
// deterministic perturbed-policy noise term.
type PPOSample struct {
	A3CSample
	LogProbAction    float64 `json:"log_prob_action"`
	PerturbationNoise float64 `json:"perturbation_noise"`
	ClipEpsilon      float64 `json:"clip_epsilon"`
}

// BuildPPO derives a PPO sample, adding log pi(a|s) for the taken
// action and a deterministic +-5% perturbation derived from the state
// hash (not random()).
func BuildPPO(s State, action int, value, realizedReturn float64) PPOSample {
	base := BuildA3C(s, value, realizedReturn)
	logProb := math.Log(math.Max(base.ActionProbs[action], 1e-12))
	return PPOSample{
		A3CSample:        base,
		LogProbAction:    logProb,
		PerturbationNoise: stateHashNoise(s, 0.05),
		ClipEpsilon:      PPOClipEpsilon,
	}
}

// SACAlpha is SAC's entropy-temperature coefficient.
const SACAlpha = 0.2

// SACSample extends A3CSample with an entropy bonus and soft-Q value.
type SACSample struct {
	A3CSample
	Entropy float64 `json:"entropy"`
	SoftQ   float64 `json:"soft_q"`
}

// BuildSAC derives a SAC sample: entropy of the policy distribution,
// and the soft-Q value V + alpha*entropy.
func BuildSAC(s State, value, realizedReturn float64) SACSample {
	base := BuildA3C(s, value, realizedReturn)
	var entropy float64
	for _, p := range base.ActionProbs {
		if p > 0 {
			entropy -= p * math.Log(p)
		}
	}
	return SACSample{
		A3CSample: base,
		Entropy:   entropy,
		SoftQ:     value + SACAlpha*entropy,
	}
}
