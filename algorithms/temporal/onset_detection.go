package temporal

import (
	"math"
)

// EnergyOnset is a frame where energy rose sharply relative to the previous frame
type EnergyOnset struct {
	Frame      int     `json:"frame"`      // Frame index of the rise
	Delta      float64 `json:"delta"`      // energy[Frame] - energy[Frame-1]
	Confidence float64 `json:"confidence"` // min(1, Delta*gain)
}

// OnsetDetection detects energy transients in a frame energy series
type OnsetDetection struct {
	threshold float64 // Minimum energy rise for an onset
	gain      float64 // Scale from energy rise to confidence
}

// NewOnsetDetection creates a new onset detector. A rise strictly above
// threshold marks an onset; confidence saturates at 1 for rises >= 1/gain.
func NewOnsetDetection(threshold, gain float64) *OnsetDetection {
	return &OnsetDetection{
		threshold: threshold,
		gain:      gain,
	}
}

// DetectRange scans frames first+1..last (inclusive) of energies and reports
// every frame whose rise over its predecessor exceeds the threshold. Out of
// range bounds are clipped to the series.
func (od *OnsetDetection) DetectRange(energies []float64, first, last int) []EnergyOnset {
	onsets := []EnergyOnset{}
	first = max(first, 0)
	last = min(last, len(energies)-1)

	for i := first + 1; i <= last; i++ {
		delta := energies[i] - energies[i-1]
		if delta > od.threshold {
			onsets = append(onsets, EnergyOnset{
				Frame:      i,
				Delta:      delta,
				Confidence: math.Min(1.0, delta*od.gain),
			})
		}
	}

	return onsets
}
