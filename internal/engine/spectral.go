package engine

import "math"

// spectralFloorRatio bounds subtraction: the output magnitude never drops
// below this fraction of the input magnitude, preventing the hollowed-out
// artefacts of over-subtraction.
const spectralFloorRatio = 0.1

// spectralSubtract cancels bleed with a per-sample subtraction law: the bleed
// estimate for each sample is the reference sample scaled by alpha, and the
// result is floored at spectralFloorRatio of the microphone magnitude.
//
// This is deliberately a time-domain, per-sample law rather than the textbook
// per-frequency-bin algorithm; the two behave materially differently and the
// per-sample variant is what this engine ships. It is stateless across
// frames, so it lives as a function rather than a struct. out may alias mic.
func spectralSubtract(out, mic, ref []float64, alpha float64) {
	for i := range mic {
		subtracted := mic[i] - alpha*ref[i]
		floor := spectralFloorRatio * math.Abs(mic[i])
		if math.Abs(subtracted) < floor {
			subtracted = math.Copysign(floor, subtracted)
		}
		out[i] = subtracted
	}
}
