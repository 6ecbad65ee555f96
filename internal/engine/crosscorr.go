package engine

import "math"

// DelayEstimate is the transient result of the delay scan: the lag (in
// samples) at which the reference best aligns with its bleed in the
// microphone signal, and the normalised correlation score of that alignment
// (0 = no correlation, 1 = perfect). It is recomputed every frame from the
// whole analysis window, which keeps the estimate stable sample-to-sample,
// and informs only the current frame's cancellation.
type DelayEstimate struct {
	Lag   int
	Score float64
}

// delayCanceller estimates the echo path delay (speaker-to-microphone
// propagation plus buffering latency) by scanning the cross-correlation
// between the microphone frame and lagged views of the reference, then
// cancels a time-aligned, scaled copy of the reference.
//
// window holds maxLag samples of trailing reference history followed by the
// current reference frame, so the lagged view for output sample i at lag d is
// window[maxLag+i-d]. The scan over [-maxLag, +maxLag] costs
// O(frameSize x maxLag) and dominates the engine's cost.
type delayCanceller struct {
	maxLag int
	window []float64 // maxLag history samples + frameSize current samples
	last   DelayEstimate
}

func newDelayCanceller(frameSize, maxLag int) *delayCanceller {
	return &delayCanceller{
		maxLag: maxLag,
		window: make([]float64, maxLag+frameSize),
	}
}

// process estimates the delay for the current frame and cancels the aligned
// reference from mic into out. out may alias mic only because the mic frame
// is fully read per lag before any write; the cancellation pass reads mic[i]
// once per sample.
func (c *delayCanceller) process(out, mic, ref []float64) DelayEstimate {
	n := len(mic)
	copy(c.window[c.maxLag:], ref)

	// Scan every lag, keeping the largest correlation magnitude and
	// breaking ties towards the smallest |lag| so a symmetric signal does
	// not flip between mirrored alignments.
	var (
		bestLag    int
		bestCorr   float64 // signed correlation at bestLag
		bestMag    = -1.0
		bestEnergy float64
		micEnergy  float64
	)
	for i := 0; i < n; i++ {
		micEnergy += mic[i] * mic[i]
	}
	for lag := -c.maxLag; lag <= c.maxLag; lag++ {
		var corr, energy float64
		for i := 0; i < n; i++ {
			j := c.maxLag + i - lag
			if j >= len(c.window) {
				break // negative lags run out of window at the frame tail
			}
			r := c.window[j]
			corr += mic[i] * r
			energy += r * r
		}
		mag := math.Abs(corr)
		if mag > bestMag || (mag == bestMag && abs(lag) < abs(bestLag)) {
			bestLag = lag
			bestCorr = corr
			bestMag = mag
			bestEnergy = energy
		}
	}

	// Coupling gain: correlation normalised by the energy of the aligned
	// reference. This is the least-squares gain of a single-tap fit at the
	// chosen lag.
	beta := bestCorr / (bestEnergy + epsilon)
	for i := 0; i < n; i++ {
		j := c.maxLag + i - bestLag
		if j >= len(c.window) {
			out[i] = mic[i] // no aligned reference available this far out
			continue
		}
		out[i] = mic[i] - beta*c.window[j]
	}

	// Age the window: the frame just processed becomes trailing history.
	copy(c.window, c.window[n:])

	c.last = DelayEstimate{
		Lag:   bestLag,
		Score: bestMag / math.Sqrt(micEnergy*bestEnergy+epsilon),
	}
	return c.last
}

// estimate returns the most recent delay estimate without processing.
func (c *delayCanceller) estimate() DelayEstimate {
	return c.last
}

// reset clears the reference history window and the cached estimate.
func (c *delayCanceller) reset() {
	for i := range c.window {
		c.window[i] = 0
	}
	c.last = DelayEstimate{}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
