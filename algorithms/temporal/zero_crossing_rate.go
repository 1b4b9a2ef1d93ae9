package temporal

// ZeroCrossingRate counts sign changes in the time domain
type ZeroCrossingRate struct{}

// NewZeroCrossingRate creates a new zero crossing rate calculator
func NewZeroCrossingRate() *ZeroCrossingRate {
	return &ZeroCrossingRate{}
}

// Compute returns the number of sign changes divided by the frame length.
// Zero counts as positive, so digital silence has no crossings.
func (z *ZeroCrossingRate) Compute(frame []float64) float64 {
	if len(frame) < 2 {
		return 0.0
	}

	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i] >= 0) != (frame[i-1] >= 0) {
			crossings++
		}
	}

	return float64(crossings) / float64(len(frame))
}
