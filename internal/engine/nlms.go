package engine

// epsilon regularises the NLMS normalisation denominator so a silent
// reference (zero energy history) never divides by zero.
const epsilon = 1e-10

// nlmsCanceller predicts the bleed component of the microphone signal from
// the reference signal with an adaptive FIR filter, subtracts the prediction,
// and adapts the weights to minimise the residual (normalised least mean
// squares).
//
// The history of recent reference samples is a fixed-capacity ring buffer:
// head always indexes the newest sample and (head+j) mod L indexes the sample
// j steps old, preserving the most-recent-first ordering of a shift register
// without moving elements.
type nlmsCanceller struct {
	weights []float64
	history []float64
	head    int
}

func newNLMSCanceller(filterLength int) *nlmsCanceller {
	return &nlmsCanceller{
		weights: make([]float64, filterLength),
		history: make([]float64, filterLength),
	}
}

// process cancels bleed from mic into out, adapting the filter as it goes.
// mu is the NLMS step size. mic, ref and out must share a length; out may
// alias mic. The per-sample order is strict: each output sample depends on
// the weights as updated by all earlier samples, which keeps the canceller
// deterministic for identical inputs and initial state.
func (c *nlmsCanceller) process(out, mic, ref []float64, mu float64) {
	l := len(c.weights)
	for i := range mic {
		// Push the newest reference sample; the oldest drops out by
		// being overwritten.
		c.head--
		if c.head < 0 {
			c.head = l - 1
		}
		c.history[c.head] = ref[i]

		// Predicted bleed is the dot product of the weights with the
		// most-recent-first history. Accumulate the history energy in
		// the same pass for the normalisation term.
		var predicted, energy float64
		idx := c.head
		for j := 0; j < l; j++ {
			h := c.history[idx]
			predicted += c.weights[j] * h
			energy += h * h
			idx++
			if idx == l {
				idx = 0
			}
		}

		err := mic[i] - predicted
		out[i] = err

		// Normalised weight update. The epsilon keeps the step finite
		// when the reference has been silent for the whole history.
		step := mu * err / (energy + epsilon)
		idx = c.head
		for j := 0; j < l; j++ {
			c.weights[j] += step * c.history[idx]
			idx++
			if idx == l {
				idx = 0
			}
		}
	}
}

// reset zeroes the weights and history, returning the filter to its initial
// untrained state.
func (c *nlmsCanceller) reset() {
	for i := range c.weights {
		c.weights[i] = 0
		c.history[i] = 0
	}
	c.head = 0
}
