// Package audio provides WAV file I/O and paired-frame streaming for the
// separation pipeline.
package audio

import (
	"fmt"
	"io"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Metadata contains audio file metadata
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    int // per-channel sample count
}

// Reader streams mono float64 frames from a decoded WAV file. Multi-channel
// files are downmixed to mono by averaging, since the cancellation engine
// operates on single-channel signals.
type Reader struct {
	samples []float64
	pos     int
	meta    Metadata
}

// OpenWAV opens and fully decodes a WAV file for frame reading.
func OpenWAV(filename string) (*Reader, *Metadata, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, nil, fmt.Errorf("%s is not a valid WAV file", filename)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, nil, fmt.Errorf("%s has no audio channels", filename)
	}

	// Normalise interleaved integer PCM to mono float64 in [-1, 1].
	scale := 1.0 / float64(int(1)<<(bitDepth-1))
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch])
		}
		samples[i] = sum / float64(channels) * scale
	}

	meta := Metadata{
		Duration:   float64(frames) / float64(buf.Format.SampleRate),
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		Samples:    frames,
	}
	return &Reader{samples: samples, meta: meta}, &meta, nil
}

// ReadFrame fills dst with the next samples, zero-padding a short tail.
// Returns the number of real samples written, and io.EOF once the stream is
// exhausted.
func (r *Reader) ReadFrame(dst []float64) (int, error) {
	if r.pos >= len(r.samples) {
		return 0, io.EOF
	}
	n := copy(dst, r.samples[r.pos:])
	r.pos += n
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return n, nil
}

// Metadata returns the file metadata.
func (r *Reader) Metadata() Metadata {
	return r.meta
}

// Writer encodes mono float64 frames to a 16-bit PCM WAV file.
type Writer struct {
	f       *os.File
	encoder *wav.Encoder
	scratch *gaudio.IntBuffer
	clipped int
}

// NewWriter creates a mono 16-bit WAV file at the given sample rate.
func NewWriter(filename string, sampleRate int) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return &Writer{
		f:       f,
		encoder: wav.NewEncoder(f, sampleRate, 16, 1, 1),
		scratch: &gaudio.IntBuffer{
			Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

// WriteFrame encodes one frame. Samples outside [-1, 1] are clamped and
// counted; see Clipped.
func (w *Writer) WriteFrame(samples []float64) error {
	if cap(w.scratch.Data) < len(samples) {
		w.scratch.Data = make([]int, len(samples))
	}
	w.scratch.Data = w.scratch.Data[:len(samples)]
	for i, s := range samples {
		if s > 1 {
			s = 1
			w.clipped++
		} else if s < -1 {
			s = -1
			w.clipped++
		}
		w.scratch.Data[i] = int(s * 32767.0)
	}
	if err := w.encoder.Write(w.scratch); err != nil {
		return fmt.Errorf("failed to write audio frame: %w", err)
	}
	return nil
}

// Clipped returns how many samples were clamped into range so far.
func (w *Writer) Clipped() int {
	return w.clipped
}

// Close finalises the WAV header and closes the file.
func (w *Writer) Close() error {
	if err := w.encoder.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("failed to finalise WAV encoder: %w", err)
	}
	return w.f.Close()
}
