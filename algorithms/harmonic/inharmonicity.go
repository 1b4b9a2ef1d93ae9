package harmonic

import (
	"math"
)

// MaxInharmonicity is reported when there are not enough peaks to compare
const MaxInharmonicity = 1.0

// Inharmonicity measures how far spectral peaks stray from an ideal harmonic
// series built on the lowest peak
type Inharmonicity struct {
	numPeaks int // How many of the lowest peaks are compared
}

// NewInharmonicity creates an inharmonicity calculator comparing the first numPeaks peaks
func NewInharmonicity(numPeaks int) *Inharmonicity {
	if numPeaks < 2 {
		numPeaks = 6
	}
	return &Inharmonicity{numPeaks: numPeaks}
}

// Compute returns the mean relative deviation |f - n*f0| / (n*f0) of the
// peaks above the fundamental, where f0 is the lowest peak and n the nearest
// harmonic number. Peaks must be sorted by ascending frequency.
func (ih *Inharmonicity) Compute(peaks []SpectralPeak) float64 {
	if len(peaks) < 2 {
		return MaxInharmonicity
	}

	f0 := peaks[0].Frequency
	if f0 <= 0 {
		return MaxInharmonicity
	}

	limit := min(len(peaks), ih.numPeaks)
	sum := 0.0
	count := 0

	for _, p := range peaks[1:limit] {
		n := math.Round(p.Frequency / f0)
		if n < 1 {
			n = 1
		}
		ideal := n * f0
		sum += math.Abs(p.Frequency-ideal) / ideal
		count++
	}

	if count == 0 {
		return MaxInharmonicity
	}

	return sum / float64(count)
}
