package harmonic

import (
	"math"
)

// Analysis is the harmonic description of one magnitude spectrum
type Analysis struct {
	Ratio         float64 `json:"ratio"`         // Share of energy on harmonic bins [0,1]
	Inharmonicity float64 `json:"inharmonicity"` // Mean relative deviation from the series, >= 0
	Peaks         []int   `json:"peaks"`         // Peak bin indices, ascending
	Strength      float64 `json:"strength"`      // Share of peak magnitude on harmonics [0,1]
	Fundamental   float64 `json:"fundamental"`   // Lowest peak frequency (Hz), 0 if none
}

// Analyzer computes harmonic ratio, strength and inharmonicity of a spectrum
// relative to its lowest peak
type Analyzer struct {
	peaks         *SpectralPeaks
	inharmonicity *Inharmonicity
	maxHarmonics  int
	binRadius     int     // Bins on each side of a harmonic counted as harmonic energy
	tolerance     float64 // Relative frequency tolerance for a peak to sit on a harmonic
}

// NewAnalyzer creates a harmonic analyzer for spectra of fftSize/2+1 bins
func NewAnalyzer(sampleRate, fftSize int, relativePeakFloor float64) *Analyzer {
	return &Analyzer{
		peaks:         NewSpectralPeaks(sampleRate, fftSize, relativePeakFloor, 1e-6, 50.0, 30),
		inharmonicity: NewInharmonicity(6),
		maxHarmonics:  20,
		binRadius:     2,
		tolerance:     0.03,
	}
}

// Analyze performs peak picking and harmonic analysis of one magnitude spectrum
func (a *Analyzer) Analyze(magnitudeSpectrum []float64) Analysis {
	peaks := a.peaks.DetectPeaks(magnitudeSpectrum)

	result := Analysis{
		Peaks:         BinIndices(peaks),
		Inharmonicity: a.inharmonicity.Compute(peaks),
	}
	if len(peaks) == 0 {
		return result
	}

	f0 := peaks[0].Frequency
	result.Fundamental = f0
	result.Ratio = a.harmonicRatio(magnitudeSpectrum, f0)
	result.Strength = a.harmonicStrength(peaks, f0)

	return result
}

// harmonicRatio returns the fraction of spectral energy lying within
// binRadius bins of integer multiples of f0
func (a *Analyzer) harmonicRatio(spectrum []float64, f0 float64) float64 {
	binHz := a.peaks.BinHz()
	if binHz <= 0 || f0 <= 0 {
		return 0
	}

	total := 0.0
	for _, m := range spectrum {
		total += m * m
	}
	if total <= 0 {
		return 0
	}

	counted := make([]bool, len(spectrum))
	harmonicEnergy := 0.0

	for k := 1; k <= a.maxHarmonics; k++ {
		center := int(math.Round(float64(k) * f0 / binHz))
		if center >= len(spectrum) {
			break
		}
		for b := max(0, center-a.binRadius); b <= min(len(spectrum)-1, center+a.binRadius); b++ {
			if !counted[b] {
				counted[b] = true
				harmonicEnergy += spectrum[b] * spectrum[b]
			}
		}
	}

	return math.Min(1, harmonicEnergy/total)
}

// harmonicStrength returns the share of total peak magnitude carried by peaks
// that sit on a harmonic of f0
func (a *Analyzer) harmonicStrength(peaks []SpectralPeak, f0 float64) float64 {
	total := 0.0
	onHarmonic := 0.0

	for _, p := range peaks {
		total += p.Magnitude
		n := math.Round(p.Frequency / f0)
		if n >= 1 && math.Abs(p.Frequency-n*f0)/(n*f0) <= a.tolerance {
			onHarmonic += p.Magnitude
		}
	}

	if total <= 0 {
		return 0
	}
	return onHarmonic / total
}
