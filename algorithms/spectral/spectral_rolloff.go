package spectral

// DefaultRolloffFraction is the share of spectral energy below the rolloff frequency
const DefaultRolloffFraction = 0.85

// SpectralRolloff computes the frequency below which a given fraction of the
// spectral energy lies
type SpectralRolloff struct {
	sampleRate int
	fraction   float64
}

// NewSpectralRolloff creates a new spectral rolloff calculator.
// A fraction outside (0, 1] falls back to DefaultRolloffFraction.
func NewSpectralRolloff(sampleRate int, fraction float64) *SpectralRolloff {
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultRolloffFraction
	}
	return &SpectralRolloff{
		sampleRate: sampleRate,
		fraction:   fraction,
	}
}

// Compute calculates spectral rolloff in Hz for a single magnitude spectrum
func (sr *SpectralRolloff) Compute(spectrum []float64) float64 {
	if len(spectrum) < 2 {
		return 0.0
	}

	totalEnergy := 0.0
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}

	if totalEnergy == 0 {
		return 0
	}

	binHz := binWidth(sr.sampleRate, len(spectrum))
	targetEnergy := sr.fraction * totalEnergy
	cumulativeEnergy := 0.0

	for i, mag := range spectrum {
		cumulativeEnergy += mag * mag
		if cumulativeEnergy >= targetEnergy {
			return float64(i) * binHz
		}
	}

	return float64(len(spectrum)-1) * binHz
}
