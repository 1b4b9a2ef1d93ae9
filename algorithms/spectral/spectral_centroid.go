package spectral

// SpectralCentroid computes the spectral centroid (magnitude-weighted mean
// frequency) of a half spectrum holding bins DC..Nyquist
type SpectralCentroid struct {
	sampleRate int
}

// NewSpectralCentroid creates a new spectral centroid calculator
func NewSpectralCentroid(sampleRate int) *SpectralCentroid {
	return &SpectralCentroid{
		sampleRate: sampleRate,
	}
}

// Compute calculates spectral centroid in Hz for a single magnitude spectrum.
// Returns 0 for a silent spectrum.
func (sc *SpectralCentroid) Compute(spectrum []float64) float64 {
	if len(spectrum) < 2 {
		return 0.0
	}

	binHz := binWidth(sc.sampleRate, len(spectrum))
	numerator := 0.0
	denominator := 0.0

	for i, mag := range spectrum {
		numerator += float64(i) * binHz * mag
		denominator += mag
	}

	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}

// binWidth returns Hz per bin for a half spectrum of numBins bins
func binWidth(sampleRate, numBins int) float64 {
	if numBins < 2 {
		return 0
	}
	return float64(sampleRate) / float64((numBins-1)*2)
}
