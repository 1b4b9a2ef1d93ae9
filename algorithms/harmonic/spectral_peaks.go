package harmonic

import (
	"sort"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
)

// SpectralPeak represents a detected spectral peak
type SpectralPeak struct {
	Frequency float64 // Peak frequency in Hz (parabolically refined)
	Magnitude float64 // Peak magnitude
	BinIndex  int     // Original FFT bin index
}

// SpectralPeaks picks local maxima out of a half magnitude spectrum
type SpectralPeaks struct {
	sampleRate    int
	fftSize       int
	relativeFloor float64 // Minimum height as a fraction of the frame maximum
	absoluteFloor float64 // Minimum height regardless of the frame maximum
	minFrequency  float64 // Peaks below this frequency are ignored (Hz)
	maxPeaks      int
}

// NewSpectralPeaks creates a new spectral peaks analyzer.
// A peak must exceed both relativeFloor*max(spectrum) and absoluteFloor.
func NewSpectralPeaks(sampleRate, fftSize int, relativeFloor, absoluteFloor, minFrequency float64, maxPeaks int) *SpectralPeaks {
	if maxPeaks <= 0 {
		maxPeaks = 30
	}
	return &SpectralPeaks{
		sampleRate:    sampleRate,
		fftSize:       fftSize,
		relativeFloor: relativeFloor,
		absoluteFloor: absoluteFloor,
		minFrequency:  minFrequency,
		maxPeaks:      maxPeaks,
	}
}

// BinHz returns the frequency resolution in Hz per bin
func (sp *SpectralPeaks) BinHz() float64 {
	if sp.fftSize <= 0 {
		return 0
	}
	return float64(sp.sampleRate) / float64(sp.fftSize)
}

// DetectPeaks returns the strongest local maxima (at most maxPeaks) sorted by
// ascending frequency
func (sp *SpectralPeaks) DetectPeaks(magnitudeSpectrum []float64) []SpectralPeak {
	if len(magnitudeSpectrum) < 3 {
		return []SpectralPeak{}
	}

	threshold := max(sp.absoluteFloor, sp.relativeFloor*common.Max(magnitudeSpectrum))
	if threshold <= 0 {
		// Silent spectrum: every bin equals zero and nothing can qualify
		return []SpectralPeak{}
	}

	binHz := sp.BinHz()
	peaks := make([]SpectralPeak, 0, sp.maxPeaks)

	for i := 1; i < len(magnitudeSpectrum)-1; i++ {
		mag := magnitudeSpectrum[i]
		if mag < threshold || mag <= magnitudeSpectrum[i-1] || mag < magnitudeSpectrum[i+1] {
			continue
		}
		if float64(i)*binHz < sp.minFrequency {
			continue
		}

		offset := common.ParabolicOffset(magnitudeSpectrum[i-1], mag, magnitudeSpectrum[i+1])
		peaks = append(peaks, SpectralPeak{
			Frequency: (float64(i) + offset) * binHz,
			Magnitude: mag,
			BinIndex:  i,
		})
	}

	if len(peaks) > sp.maxPeaks {
		sort.SliceStable(peaks, func(i, j int) bool {
			return peaks[i].Magnitude > peaks[j].Magnitude
		})
		peaks = peaks[:sp.maxPeaks]
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].BinIndex < peaks[j].BinIndex
	})

	return peaks
}

// BinIndices returns the bin index of every peak
func BinIndices(peaks []SpectralPeak) []int {
	indices := make([]int, len(peaks))
	for i, p := range peaks {
		indices[i] = p.BinIndex
	}
	return indices
}
