package temporal

// Energy computes frame energy as the mean squared amplitude
type Energy struct{}

// NewEnergy creates a new energy calculator
func NewEnergy() *Energy {
	return &Energy{}
}

// Compute returns the mean squared amplitude of a frame, 0 for an empty frame
func (e *Energy) Compute(frame []float64) float64 {
	if len(frame) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, s := range frame {
		sumSquares += s * s
	}
	return sumSquares / float64(len(frame))
}
