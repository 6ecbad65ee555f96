package engine

import "math"

// noiseGen is a deterministic LCG noise source so tests are reproducible
// without importing math/rand and seeding complexity.
type noiseGen struct {
	state uint32
}

func newNoiseGen(seed uint32) *noiseGen {
	return &noiseGen{state: seed}
}

// next returns the next pseudo-random sample in [-1, 1].
func (g *noiseGen) next() float64 {
	// LCG parameters from Numerical Recipes
	g.state = g.state*1664525 + 1013904223
	return (float64(g.state)/float64(0xFFFFFFFF))*2.0 - 1.0
}

// frame fills a new slice of n noise samples scaled to amp.
func (g *noiseGen) frame(n int, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * g.next()
	}
	return out
}

// sineFrame generates n samples of a sine tone. offset is the sample index of
// the first sample, so consecutive frames remain phase-continuous.
func sineFrame(n int, freq float64, sampleRate int, amp float64, offset int) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(offset+i) / float64(sampleRate)
		out[i] = amp * math.Sin(2.0*math.Pi*freq*t)
	}
	return out
}

// energy returns the sum of squared samples.
func energy(samples []float64) float64 {
	var e float64
	for _, s := range samples {
		e += s * s
	}
	return e
}

// constFrame returns n copies of value v.
func constFrame(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
