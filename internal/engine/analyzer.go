package engine

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// rolloffFraction is the share of spectral energy below the reported rolloff
// frequency.
const rolloffFraction = 0.85

// humHarmonics is how many mains harmonics the hum detector sums. Eight
// harmonics reach 400/480 Hz, which covers the audible body of mains hum
// without wandering into speech formant territory.
const humHarmonics = 8

// ResidualSpectrum contains averaged spectral measurements of the processed
// output. Used after a session to characterise what is left in the signal
// once cancellation has run.
type ResidualSpectrum struct {
	// SpectralCentroid is where residual energy is concentrated (Hz).
	// Clean speech typically sits between 500 Hz and 2 kHz; a much lower
	// centroid suggests rumble or hum survived processing.
	SpectralCentroid float64 `json:"spectral_centroid"`

	// SpectralRolloff is the frequency below which 85% of residual
	// energy lies (Hz).
	SpectralRolloff float64 `json:"spectral_rolloff"`

	// SpectralFlatness is the geometric-to-arithmetic mean ratio of the
	// power spectrum (0-1). Near 1 means noise-like residual, near 0
	// means tonal content (leftover music or hum) survived.
	SpectralFlatness float64 `json:"spectral_flatness"`

	// Hum50Ratio is the share of residual energy sitting on 50 Hz mains
	// harmonics. Hum60Ratio is the same for 60 Hz mains. Whichever is
	// larger identifies the local mains family when hum is present.
	Hum50Ratio float64 `json:"hum_50_ratio"`
	Hum60Ratio float64 `json:"hum_60_ratio"`

	// FramesAnalyzed counts the frames folded into these averages.
	FramesAnalyzed int `json:"frames_analyzed"`
}

// spectrumAnalyzer accumulates an averaged power spectrum over output frames.
// Each frame is Hann-windowed and transformed, and the resulting power
// spectrum is summed. Measurements are derived from the running average, so
// short tonal bursts get diluted and sustained tones stand out.
type spectrumAnalyzer struct {
	sampleRate int
	window     []float64
	windowed   []float64
	power      []float64
	frames     int
}

func newSpectrumAnalyzer(sampleRate, frameSize int) *spectrumAnalyzer {
	a := &spectrumAnalyzer{
		sampleRate: sampleRate,
		window:     make([]float64, frameSize),
		windowed:   make([]float64, frameSize),
		power:      make([]float64, frameSize/2+1),
	}
	// Hann window
	for i := range a.window {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(frameSize-1)))
	}
	return a
}

// feed accumulates one frame's power spectrum. Frames shorter than the
// configured size are ignored (tail frames at end of stream).
func (a *spectrumAnalyzer) feed(frame []float64) {
	if len(frame) != len(a.window) {
		return
	}
	for i, s := range frame {
		a.windowed[i] = s * a.window[i]
	}
	spectrum := fft.FFTReal(a.windowed)
	for i := range a.power {
		mag := cmplx.Abs(spectrum[i])
		a.power[i] += mag * mag
	}
	a.frames++
}

// measurements derives the spectral figures from the accumulated average.
func (a *spectrumAnalyzer) measurements() ResidualSpectrum {
	m := ResidualSpectrum{FramesAnalyzed: a.frames}
	if a.frames == 0 {
		return m
	}

	binWidth := float64(a.sampleRate) / float64(len(a.window))

	// Skip DC for all derived figures; it carries offset, not content.
	var total, weighted float64
	for i := 1; i < len(a.power); i++ {
		total += a.power[i]
		weighted += a.power[i] * float64(i) * binWidth
	}
	if total <= epsilon {
		return m
	}
	m.SpectralCentroid = weighted / total

	var running float64
	for i := 1; i < len(a.power); i++ {
		running += a.power[i]
		if running >= rolloffFraction*total {
			m.SpectralRolloff = float64(i) * binWidth
			break
		}
	}

	// Flatness over the power spectrum, computed in log domain to avoid
	// underflow on long products.
	var logSum float64
	bins := len(a.power) - 1
	for i := 1; i < len(a.power); i++ {
		logSum += math.Log(a.power[i] + epsilon)
	}
	geoMean := math.Exp(logSum / float64(bins))
	arithMean := total / float64(bins)
	m.SpectralFlatness = clamp(geoMean/(arithMean+epsilon), 0, 1)

	m.Hum50Ratio = a.humRatio(50, binWidth, total)
	m.Hum60Ratio = a.humRatio(60, binWidth, total)
	return m
}

// humRatio sums average power at the bins nearest the first humHarmonics
// multiples of the mains frequency, as a share of total power. One bin either
// side is included so slightly off-nominal mains (49.8 Hz is common) still
// registers.
func (a *spectrumAnalyzer) humRatio(mains float64, binWidth, total float64) float64 {
	var humPower float64
	for h := 1; h <= humHarmonics; h++ {
		bin := int(math.Round(mains * float64(h) / binWidth))
		for _, b := range []int{bin - 1, bin, bin + 1} {
			if b >= 1 && b < len(a.power) {
				humPower += a.power[b]
			}
		}
	}
	return clamp(humPower/total, 0, 1)
}

// reset discards all accumulated spectra.
func (a *spectrumAnalyzer) reset() {
	for i := range a.power {
		a.power[i] = 0
	}
	a.frames = 0
}
