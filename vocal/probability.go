package vocal

import (
	"math"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
)

// Score weights
const (
	spectralWeight = 0.4
	harmonicWeight = 0.35
	temporalWeight = 0.25
)

// SpectralScore rewards a voice-like brightness and a low flatness.
// A silent spectrum (zero centroid) scores 0.
func SpectralScore(sf SpectralFrame) float64 {
	if sf.Centroid == 0 {
		return 0
	}

	score := 0.0
	if sf.Centroid >= 500 && sf.Centroid <= 4000 {
		score += 0.4
	}
	if sf.Rolloff >= 1000 && sf.Rolloff <= 6000 {
		score += 0.3
	}
	score += 0.3 * (1 - common.Clamp01(sf.Flatness))
	return score
}

// HarmonicScore rewards a high harmonic ratio and a low inharmonicity
func HarmonicScore(hf HarmonicFrame) float64 {
	return 0.6*math.Min(1, hf.Ratio/0.4) + 0.4*math.Max(0, 1-5*hf.Inharmonicity)
}

// TemporalScore rewards audible energy and a voice-like zero crossing rate
func TemporalScore(tf TemporalFrame) float64 {
	score := 0.5 * math.Min(1, tf.Energy/1e-3)
	if tf.ZCR >= 0.01 && tf.ZCR <= 0.15 {
		score += 0.5
	}
	return score
}

// VocalProbability combines the three sub-scores into a probability in [0, 1]
func VocalProbability(sf SpectralFrame, hf HarmonicFrame, tf TemporalFrame) float64 {
	p := spectralWeight*SpectralScore(sf) +
		harmonicWeight*HarmonicScore(hf) +
		temporalWeight*TemporalScore(tf)
	return common.Clamp01(p)
}
