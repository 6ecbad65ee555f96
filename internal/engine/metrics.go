package engine

import (
	"math"
	"sync/atomic"
)

// metricsSmoothing is the exponential moving average factor applied to the
// per-frame quality figures so the published numbers settle instead of
// flickering frame to frame.
const metricsSmoothing = 0.1

// voiceSplitDefault is the amplitude used to separate voice from noise energy
// when computing SNR figures while the gate is disabled (threshold 0).
const voiceSplitDefault = 0.02

// Metrics is the published quality snapshot for a processing session. It is
// observational only: nothing here feeds back into cancellation. Consumers
// receive an immutable copy, so reading never blocks or races with the
// processing path.
type Metrics struct {
	// EchoReductionPercent is how much of the reference-correlated energy
	// in the microphone signal the canceller removed (0-100, smoothed).
	EchoReductionPercent float64

	// SNRImprovementDb is the output voice-to-noise ratio minus the input
	// voice-to-noise ratio, in dB (smoothed). Voice and noise energy are
	// split at the gate threshold (or a small default when the gate is
	// off): samples above the threshold count as voice, below as noise.
	SNRImprovementDb float64

	// ProcessingLatencyMs is the wall-clock cost of the last frame.
	ProcessingLatencyMs float64

	// CPULoadPercent is ProcessingLatencyMs as a share of the frame
	// period. Above 100 the engine is falling behind real time.
	CPULoadPercent float64

	// Delay is the most recent echo path delay estimate. Only updated in
	// the crosscorr mode; other modes carry the last known value.
	Delay DelayEstimate

	// FramesProcessed counts frames since session start or the last reset.
	FramesProcessed uint64

	// OverloadFrames counts frames whose processing time exceeded the
	// frame period. Sustained overload accumulates audible glitches; the
	// remedy is a smaller MaxLag or a larger frame size.
	OverloadFrames uint64

	// Mode is the cancellation mode that produced the last frame.
	Mode Mode
}

// metricsTracker accumulates per-frame measurements and publishes immutable
// snapshots via an atomic pointer (copy-on-publish).
type metricsTracker struct {
	current  Metrics
	snapshot atomic.Pointer[Metrics]
}

func newMetricsTracker() *metricsTracker {
	t := &metricsTracker{}
	t.publish()
	return t
}

// update computes the frame's quality figures from the (mic, ref, out)
// triple and publishes a fresh snapshot. voiceSplit is the amplitude used for
// the SNR voice/noise separation.
func (t *metricsTracker) update(mic, ref, out []float64, voiceSplit float64, latencyMs, framePeriodMs float64, delay DelayEstimate, mode Mode) {
	reduction := echoReduction(mic, ref, out)
	snrGain := snr(out, voiceSplit) - snr(mic, voiceSplit)

	c := &t.current
	if c.FramesProcessed == 0 {
		c.EchoReductionPercent = reduction
		c.SNRImprovementDb = snrGain
	} else {
		c.EchoReductionPercent += metricsSmoothing * (reduction - c.EchoReductionPercent)
		c.SNRImprovementDb += metricsSmoothing * (snrGain - c.SNRImprovementDb)
	}
	c.ProcessingLatencyMs = latencyMs
	c.CPULoadPercent = latencyMs / framePeriodMs * 100
	c.Delay = delay
	c.FramesProcessed++
	if latencyMs > framePeriodMs {
		c.OverloadFrames++
	}
	c.Mode = mode

	t.publish()
}

// publish stores an immutable copy of the current metrics for readers.
func (t *metricsTracker) publish() {
	snap := t.current
	t.snapshot.Store(&snap)
}

// read returns the latest published snapshot.
func (t *metricsTracker) read() Metrics {
	return *t.snapshot.Load()
}

// reset returns the tracker to session-start state.
func (t *metricsTracker) reset() {
	t.current = Metrics{}
	t.publish()
}

// echoReduction measures the normalised decrease in reference-correlated
// content between the microphone and the output, as a percentage. When the
// microphone barely correlates with the reference (no bleed to remove) it
// falls back to the plain energy decrease.
func echoReduction(mic, ref, out []float64) float64 {
	var micCorr, outCorr, micEnergy, outEnergy float64
	for i := range mic {
		micCorr += mic[i] * ref[i]
		outCorr += out[i] * ref[i]
		micEnergy += mic[i] * mic[i]
		outEnergy += out[i] * out[i]
	}
	micCorr = math.Abs(micCorr)
	outCorr = math.Abs(outCorr)

	var reduction float64
	if micCorr > epsilon {
		reduction = (1 - outCorr/micCorr) * 100
	} else if micEnergy > epsilon {
		reduction = (1 - outEnergy/micEnergy) * 100
	}
	return clamp(reduction, 0, 100)
}

// snr estimates a voice-to-noise ratio in dB by splitting sample energy at
// the given amplitude: samples at or above split count as voice, the rest as
// noise. Degenerate frames (all voice or all noise) report 0 dB.
func snr(samples []float64, split float64) float64 {
	var voicePower, noisePower float64
	var voiceCount, noiseCount int
	for _, s := range samples {
		p := s * s
		if math.Abs(s) >= split {
			voicePower += p
			voiceCount++
		} else {
			noisePower += p
			noiseCount++
		}
	}
	if voiceCount == 0 || noiseCount == 0 {
		return 0
	}
	voicePower /= float64(voiceCount)
	noisePower /= float64(noiseCount)
	return 10 * math.Log10((voicePower+epsilon)/(noisePower+epsilon))
}

// clamp restricts val to the range [min, max].
func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
