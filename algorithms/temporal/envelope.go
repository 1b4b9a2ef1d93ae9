package temporal

import (
	"math"
)

// Envelope provides amplitude envelope extraction
type Envelope struct {
	// No state needed - stateless calculation
}

// NewEnvelope creates a new envelope extractor
func NewEnvelope() *Envelope {
	return &Envelope{}
}

// ComputePeak returns the maximum absolute sample of a frame
func (e *Envelope) ComputePeak(frame []float64) float64 {
	peak := 0.0
	for _, s := range frame {
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}
	return peak
}
