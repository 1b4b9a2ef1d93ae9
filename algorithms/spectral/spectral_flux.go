package spectral

// SpectralFlux computes spectral flux, the half-wave rectified sum of
// magnitude increases between consecutive frames
type SpectralFlux struct{}

// NewSpectralFlux creates a new spectral flux calculator
func NewSpectralFlux() *SpectralFlux {
	return &SpectralFlux{}
}

// ComputePair returns the flux of current relative to previous.
// A nil previous spectrum (first frame) yields 0.
func (sf *SpectralFlux) ComputePair(previous, current []float64) float64 {
	if previous == nil {
		return 0.0
	}

	n := min(len(previous), len(current))
	sum := 0.0
	for f := range n {
		if diff := current[f] - previous[f]; diff > 0 {
			sum += diff
		}
	}

	return sum
}
