package engine

import (
	"time"
)

// Engine processes paired (microphone, reference) frames and produces a
// cleaned voice frame. A single goroutine drives ProcessFrame; Configure,
// Params and Metrics are safe to call concurrently from other goroutines,
// with parameter changes taking effect at the next frame boundary.
type Engine struct {
	cfg    Config
	params paramStore

	nlms     *nlmsCanceller
	delay    *delayCanceller
	gate     *noiseGate
	metrics  *metricsTracker
	analyzer *spectrumAnalyzer

	lastDelay DelayEstimate

	out []float64
	mid []float64
}

// New creates an engine for the given stream configuration and initial
// parameters. Returns a ConfigError if either is invalid.
func New(cfg Config, params Params) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := params.validate(cfg.FrameSize); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		nlms:     newNLMSCanceller(cfg.FilterLength),
		delay:    newDelayCanceller(cfg.FrameSize, params.MaxLag),
		gate:     newNoiseGate(cfg.SampleRate),
		metrics:  newMetricsTracker(),
		analyzer: newSpectrumAnalyzer(cfg.SampleRate, cfg.FrameSize),
		out:      make([]float64, cfg.FrameSize),
		mid:      make([]float64, cfg.FrameSize),
	}
	e.params.store(params)
	return e, nil
}

// Configure replaces the engine parameters. The change is validated against
// the engine's frame size and applied atomically at the next frame boundary,
// so a frame in flight finishes under the parameters it started with.
func (e *Engine) Configure(params Params) error {
	if err := params.validate(e.cfg.FrameSize); err != nil {
		return err
	}
	e.params.store(params)
	return nil
}

// Params returns the currently active parameters.
func (e *Engine) Params() Params {
	return e.params.load()
}

// Config returns the stream configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// ProcessFrame cancels reference bleed from one microphone frame and returns
// the cleaned frame. Both inputs must be exactly the configured frame size;
// a mismatch returns a PreconditionError and leaves all state untouched.
//
// The returned slice is owned by the engine and valid until the next call.
func (e *Engine) ProcessFrame(mic, ref []float64) ([]float64, error) {
	if len(mic) != e.cfg.FrameSize {
		return nil, &PreconditionError{Reason: "microphone frame length does not match configured frame size"}
	}
	if len(ref) != e.cfg.FrameSize {
		return nil, &PreconditionError{Reason: "reference frame length does not match configured frame size"}
	}

	start := time.Now()
	p := e.params.load()

	// A MaxLag change needs a new search window; rebuilding at the frame
	// boundary keeps the hot path allocation-free otherwise.
	if p.MaxLag != e.delay.maxLag {
		e.delay = newDelayCanceller(e.cfg.FrameSize, p.MaxLag)
	}

	switch p.Mode {
	case ModeAdaptive:
		e.nlms.process(e.out, mic, ref, p.AdaptiveGain)
	case ModeSpectral:
		spectralSubtract(e.out, mic, ref, p.SpectralStrength)
	case ModeCrossCorr:
		e.lastDelay = e.delay.process(e.out, mic, ref)
	case ModeHybrid:
		// Adaptive stage first so spectral subtraction only has to
		// mop up what the filter has not yet converged on.
		e.nlms.process(e.mid, mic, ref, p.AdaptiveGain)
		spectralSubtract(e.out, e.mid, ref, p.SpectralStrength)
	}

	e.gate.process(e.out, p.GateThreshold)
	e.analyzer.feed(e.out)

	latencyMs := float64(time.Since(start)) / float64(time.Millisecond)
	framePeriodMs := float64(e.cfg.FrameSize) / float64(e.cfg.SampleRate) * 1000

	voiceSplit := p.GateThreshold
	if voiceSplit <= 0 {
		voiceSplit = voiceSplitDefault
	}
	e.metrics.update(mic, ref, e.out, voiceSplit, latencyMs, framePeriodMs, e.lastDelay, p.Mode)

	return e.out, nil
}

// Metrics returns the latest published metrics snapshot. Safe to call from
// any goroutine while processing runs.
func (e *Engine) Metrics() Metrics {
	return e.metrics.read()
}

// ResidualSpectrum returns spectral measurements of the output produced so
// far. Intended for end-of-session reporting, not the hot path.
func (e *Engine) ResidualSpectrum() ResidualSpectrum {
	return e.analyzer.measurements()
}

// Reset clears all adaptive state, history, metrics and accumulated spectra.
// Parameters and configuration are retained.
func (e *Engine) Reset() {
	e.nlms.reset()
	e.delay.reset()
	e.gate.reset()
	e.metrics.reset()
	e.analyzer.reset()
	e.lastDelay = DelayEstimate{}
}
