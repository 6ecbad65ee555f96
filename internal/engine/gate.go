package engine

import "math"

// Gate envelope time constants. A fast attack keeps speech onsets intact
// while the slower release avoids chattering on the decay of words.
const (
	gateAttackSecs  = 0.001
	gateReleaseSecs = 0.050
)

// noiseGate suppresses low-level residue left after cancellation. It tracks a
// smoothed envelope of recent sample magnitudes and, below the threshold,
// ramps the gain linearly towards zero with the envelope. The ramp is
// monotonic in input magnitude and moves by at most one smoothing step per
// sample, so the gate introduces no discontinuities.
//
// The envelope is the gate's only cross-frame state; it persists for the
// session and is cleared only by reset.
type noiseGate struct {
	attackCoeff  float64
	releaseCoeff float64
	envelope     float64
}

func newNoiseGate(sampleRate int) *noiseGate {
	return &noiseGate{
		attackCoeff:  1 - math.Exp(-1/(gateAttackSecs*float64(sampleRate))),
		releaseCoeff: 1 - math.Exp(-1/(gateReleaseSecs*float64(sampleRate))),
	}
}

// process applies the gate in place. A zero threshold disables gating
// entirely (the envelope still tracks, so metrics and later frames see a
// warm state).
func (g *noiseGate) process(samples []float64, threshold float64) {
	for i, s := range samples {
		level := math.Abs(s)
		if level > g.envelope {
			g.envelope += g.attackCoeff * (level - g.envelope)
		} else {
			g.envelope += g.releaseCoeff * (level - g.envelope)
		}
		if threshold <= 0 {
			continue
		}
		if g.envelope < threshold {
			samples[i] = s * (g.envelope / threshold)
		}
	}
}

// reset clears the envelope to the session-start state.
func (g *noiseGate) reset() {
	g.envelope = 0
}
