package audio

import (
	"fmt"
	"io"
)

// PairedSource delivers time-aligned (microphone, reference) frames of a
// fixed size to the cancellation engine. The microphone stream defines the
// session length; a reference that ends early is padded with silence, and
// reference material past the microphone's end is discarded.
type PairedSource struct {
	mic *Reader
	ref *Reader

	micBuf []float64
	refBuf []float64
}

// NewPairedSource pairs a microphone and reference reader. Both files must
// share a sample rate; resampling is out of scope for this pipeline.
func NewPairedSource(mic, ref *Reader, frameSize int) (*PairedSource, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameSize)
	}
	mm, rm := mic.Metadata(), ref.Metadata()
	if mm.SampleRate != rm.SampleRate {
		return nil, fmt.Errorf("sample rate mismatch: microphone %d Hz, reference %d Hz", mm.SampleRate, rm.SampleRate)
	}
	return &PairedSource{
		mic:    mic,
		ref:    ref,
		micBuf: make([]float64, frameSize),
		refBuf: make([]float64, frameSize),
	}, nil
}

// NextFrame returns the next aligned frame pair. The returned slices are
// owned by the source and valid until the next call. io.EOF signals the end
// of the microphone stream.
func (s *PairedSource) NextFrame() (mic, ref []float64, err error) {
	if _, err := s.mic.ReadFrame(s.micBuf); err != nil {
		return nil, nil, err
	}
	if _, err := s.ref.ReadFrame(s.refBuf); err == io.EOF {
		// Reference ran out first; cancel against silence.
		for i := range s.refBuf {
			s.refBuf[i] = 0
		}
	}
	return s.micBuf, s.refBuf, nil
}

// SampleRate returns the shared sample rate of the pair.
func (s *PairedSource) SampleRate() int {
	return s.mic.Metadata().SampleRate
}

// TotalFrames returns the session frame count, rounding the microphone's
// final partial frame up.
func (s *PairedSource) TotalFrames() int {
	n := len(s.micBuf)
	return (s.mic.Metadata().Samples + n - 1) / n
}
