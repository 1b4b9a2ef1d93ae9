package filters

import (
	"fmt"
)

// DefaultPreEmphasis is the coefficient widely used in speech processing
const DefaultPreEmphasis = 0.97

// PreEmphasis implements a first order pre-emphasis filter.
// Pre-emphasis compensates for the natural spectral roll-off of the voice,
// emphasizing higher frequencies before linear prediction.
//
// The filter implements the transfer function:
// H(z) = 1 - α*z^-1
//
// With the difference equation:
// y[n] = x[n] - α*x[n-1]
//
// References:
//   - L.R. Rabiner, R.W. Schafer, "Digital Processing of Speech Signals",
//     Prentice-Hall, 1978, Chapter 4
//
// The filter is stateless: every call treats x[-1] as 0.
type PreEmphasis struct {
	coefficient float64 // Pre-emphasis coefficient α
}

// NewPreEmphasis creates a pre-emphasis filter with specified coefficient.
//
// Parameters:
//   - coefficient: Pre-emphasis coefficient α (0.0 <= α < 1.0)
//     Higher values = more emphasis of high frequencies
func NewPreEmphasis(coefficient float64) (*PreEmphasis, error) {
	if coefficient < 0 || coefficient >= 1 {
		return nil, fmt.Errorf("pre-emphasis coefficient must be in [0, 1), got %f", coefficient)
	}
	return &PreEmphasis{coefficient: coefficient}, nil
}

// ApplyInPlace filters signal in place
func (pe *PreEmphasis) ApplyInPlace(signal []float64) {
	prev := 0.0
	for i, x := range signal {
		signal[i] = x - pe.coefficient*prev
		prev = x
	}
}
