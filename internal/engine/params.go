// Package engine implements the real-time echo/bleed separation core:
// adaptive (NLMS) cancellation, per-sample spectral subtraction, correlation
// based delay cancellation, their hybrid combination, and a post-processing
// noise gate, driven by a sequential pipeline controller that publishes
// quality metrics.
package engine

import "sync/atomic"

// Mode selects which cancellation algorithm the pipeline routes frames
// through.
type Mode string

// Cancellation modes.
const (
	// ModeAdaptive runs the NLMS adaptive FIR canceller alone.
	ModeAdaptive Mode = "adaptive"
	// ModeSpectral runs per-sample spectral subtraction alone.
	ModeSpectral Mode = "spectral"
	// ModeCrossCorr estimates the echo path delay by cross-correlation and
	// cancels a time-aligned, scaled copy of the reference.
	ModeCrossCorr Mode = "crosscorr"
	// ModeHybrid feeds the NLMS residual into spectral subtraction for a
	// second cleanup stage.
	ModeHybrid Mode = "hybrid"
)

// valid reports whether m names a known cancellation mode.
func (m Mode) valid() bool {
	switch m {
	case ModeAdaptive, ModeSpectral, ModeCrossCorr, ModeHybrid:
		return true
	}
	return false
}

// Params holds the tunable processing parameters. They may be changed between
// frames via Engine.Configure; the controller reads one consistent snapshot at
// frame start, so an update never tears a frame's computation.
type Params struct {
	// Mode selects the cancellation algorithm. Switching modes between
	// frames is always safe and never discards adaptive filter state.
	Mode Mode

	// AdaptiveGain is the NLMS step size mu. Larger values adapt faster at
	// the cost of stability; the safe range is (0, 1].
	AdaptiveGain float64

	// SpectralStrength is the subtraction strength alpha in [0, 1].
	// 0 passes the microphone through untouched; 1 subtracts the full
	// estimated bleed, bounded by the spectral floor.
	SpectralStrength float64

	// GateThreshold is the noise gate amplitude cutoff (linear, >= 0).
	// 0 disables the gate.
	GateThreshold float64

	// MaxLag bounds the delay search in samples. The correlation scan is
	// O(frame size x MaxLag), the dominant cost of the engine, so keep it
	// within the real-time budget of one frame period.
	MaxLag int
}

// DefaultParams returns parameters suited to removing loudspeaker bleed from
// a speech recording: hybrid cancellation, a moderate NLMS step, and a gate
// just above typical residual level.
func DefaultParams() Params {
	return Params{
		Mode:             ModeHybrid,
		AdaptiveGain:     0.5,  // Stable half-step NLMS adaptation
		SpectralStrength: 0.7,  // Strong but floor-bounded subtraction
		GateThreshold:    0.01, // -40 dBFS residual cutoff
		MaxLag:           256,  // ~5ms search at 48kHz
	}
}

// validate rejects out-of-range parameter values. frameSize is the session
// frame length, needed to bound the delay search.
func (p Params) validate(frameSize int) error {
	if !p.Mode.valid() {
		return &ConfigError{Field: "mode", Value: string(p.Mode), Reason: "unknown cancellation mode"}
	}
	if p.AdaptiveGain <= 0 {
		return &ConfigError{Field: "adaptive gain", Value: p.AdaptiveGain, Reason: "NLMS step size must be positive"}
	}
	if p.SpectralStrength < 0 || p.SpectralStrength > 1 {
		return &ConfigError{Field: "spectral strength", Value: p.SpectralStrength, Reason: "subtraction strength must be within [0, 1]"}
	}
	if p.GateThreshold < 0 {
		return &ConfigError{Field: "gate threshold", Value: p.GateThreshold, Reason: "amplitude cutoff must not be negative"}
	}
	if p.MaxLag <= 0 {
		return &ConfigError{Field: "max lag", Value: p.MaxLag, Reason: "delay search bound must be positive"}
	}
	if p.MaxLag >= frameSize {
		return &ConfigError{Field: "max lag", Value: p.MaxLag, Reason: "delay search bound must be smaller than the frame size"}
	}
	return nil
}

// paramStore publishes parameter snapshots to the processing goroutine. Each
// store replaces the whole value, so a load always sees one consistent set.
type paramStore struct {
	p atomic.Pointer[Params]
}

func (s *paramStore) store(p Params) {
	s.p.Store(&p)
}

func (s *paramStore) load() Params {
	return *s.p.Load()
}

// Config holds the session-fixed geometry of the pipeline. Unlike Params it
// cannot change between frames; altering it requires a new Engine.
type Config struct {
	// SampleRate in Hz. Used for the gate envelope time constants and the
	// real-time load calculation.
	SampleRate int

	// FrameSize is the fixed per-frame sample count N. Every frame passed
	// to ProcessFrame must have exactly this length.
	FrameSize int

	// FilterLength is the NLMS FIR length L. Independent of FrameSize and
	// fixed for the session.
	FilterLength int
}

// validate rejects impossible session geometry.
func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return &ConfigError{Field: "sample rate", Value: c.SampleRate, Reason: "must be positive"}
	}
	if c.FrameSize <= 0 {
		return &ConfigError{Field: "frame size", Value: c.FrameSize, Reason: "must be positive"}
	}
	if c.FilterLength <= 0 {
		return &ConfigError{Field: "filter length", Value: c.FilterLength, Reason: "must be positive"}
	}
	return nil
}
