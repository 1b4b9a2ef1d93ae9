package spectral

import (
	"math"
)

// SpectralFlatness computes spectral flatness (Wiener entropy).
// Lower values (0.0-0.3) indicate tonal content, higher values (0.7-1.0)
// indicate noise-like content.
type SpectralFlatness struct {
	floor float64 // Added to every magnitude to avoid log(0)
}

// NewSpectralFlatness creates a new spectral flatness calculator
func NewSpectralFlatness() *SpectralFlatness {
	return &SpectralFlatness{
		floor: 1e-10,
	}
}

// Compute returns geometric mean / arithmetic mean of the magnitudes in [0, 1].
// A silent spectrum has undefined flatness and yields 0.
func (sf *SpectralFlatness) Compute(magnitudeSpectrum []float64) float64 {
	if len(magnitudeSpectrum) == 0 {
		return 0.0
	}

	logSum := 0.0
	arithmeticMean := 0.0
	for _, magnitude := range magnitudeSpectrum {
		logSum += math.Log(magnitude + sf.floor)
		arithmeticMean += magnitude
	}
	arithmeticMean /= float64(len(magnitudeSpectrum))

	if arithmeticMean <= sf.floor {
		return 0.0
	}

	geometricMean := math.Exp(logSum / float64(len(magnitudeSpectrum)))
	flatness := geometricMean / arithmeticMean

	if flatness > 1.0 {
		flatness = 1.0
	}

	return flatness
}
