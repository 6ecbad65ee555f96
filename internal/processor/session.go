// Package processor drives complete separation sessions: it streams paired
// WAV files through the cancellation engine and writes the cleaned voice
// track.
package processor

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/linuxmatters/debleed/internal/audio"
	"github.com/linuxmatters/debleed/internal/engine"
)

// progressUpdateInterval is how many frames pass between progress callbacks.
const progressUpdateInterval = 20

// SessionConfig configures one separation session.
type SessionConfig struct {
	// FrameSize is the per-frame sample count the engine processes.
	FrameSize int

	// FilterLength is the adaptive filter's FIR length. Longer filters
	// model longer echo tails at higher cost per sample.
	FilterLength int

	// Params are the engine's tunable cancellation parameters.
	Params engine.Params
}

// DefaultSessionConfig returns settings suited to podcast-length recordings:
// about 21ms frames at 48kHz and an adaptive filter long enough for typical
// loudspeaker-to-microphone paths.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		FrameSize:    1024,
		FilterLength: 256,
		Params:       engine.DefaultParams(),
	}
}

// SessionResult contains the outcome of a separation session.
type SessionResult struct {
	OutputPath      string
	Duration        float64 // seconds of microphone audio processed
	SampleRate      int
	FramesProcessed uint64
	ClippedSamples  int

	// Metrics is the final smoothed metrics snapshot of the session.
	Metrics engine.Metrics

	// Residual characterises what is left in the output spectrum.
	Residual engine.ResidualSpectrum

	// Params are the parameters the session ran with.
	Params engine.Params
}

// ProcessSession removes reference bleed from the microphone recording and
// writes the cleaned track next to the input as <basename>-voice.<ext>.
// If progressCallback is not nil it is called periodically with the session
// progress (0-1), the current output level (0-1 peak) and the latest metrics.
func ProcessSession(micPath, refPath string, config SessionConfig, progressCallback func(progress float64, level float64, metrics engine.Metrics)) (*SessionResult, error) {
	micReader, micMeta, err := audio.OpenWAV(micPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open microphone file: %w", err)
	}
	refReader, _, err := audio.OpenWAV(refPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}

	source, err := audio.NewPairedSource(micReader, refReader, config.FrameSize)
	if err != nil {
		return nil, fmt.Errorf("failed to pair input files: %w", err)
	}

	eng, err := engine.New(engine.Config{
		SampleRate:   micMeta.SampleRate,
		FrameSize:    config.FrameSize,
		FilterLength: config.FilterLength,
	}, config.Params)
	if err != nil {
		return nil, err
	}

	outputPath := generateOutputPath(micPath)
	writer, err := audio.NewWriter(outputPath, micMeta.SampleRate)
	if err != nil {
		return nil, err
	}

	totalFrames := source.TotalFrames()
	frameCount := 0

	if progressCallback != nil {
		progressCallback(0, 0, eng.Metrics())
	}

	for {
		mic, ref, err := source.NextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			writer.Close()
			return nil, fmt.Errorf("failed to read frame: %w", err)
		}

		out, err := eng.ProcessFrame(mic, ref)
		if err != nil {
			writer.Close()
			return nil, err
		}
		if err := writer.WriteFrame(out); err != nil {
			writer.Close()
			return nil, err
		}

		if frameCount%progressUpdateInterval == 0 && progressCallback != nil && totalFrames > 0 {
			progress := float64(frameCount) / float64(totalFrames)
			progressCallback(progress, peakLevel(out), eng.Metrics())
		}
		frameCount++
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	metrics := eng.Metrics()
	if progressCallback != nil {
		progressCallback(1, 0, metrics)
	}

	return &SessionResult{
		OutputPath:      outputPath,
		Duration:        micMeta.Duration,
		SampleRate:      micMeta.SampleRate,
		FramesProcessed: metrics.FramesProcessed,
		ClippedSamples:  writer.Clipped(),
		Metrics:         metrics,
		Residual:        eng.ResidualSpectrum(),
		Params:          config.Params,
	}, nil
}

// generateOutputPath derives the output filename: mic.wav → mic-voice.wav
func generateOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	filename := filepath.Base(inputPath)
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)
	return filepath.Join(dir, nameWithoutExt+"-voice"+ext)
}

// peakLevel returns the largest absolute sample in the frame, for UI meters.
func peakLevel(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak > 1 {
		peak = 1
	}
	return peak
}
