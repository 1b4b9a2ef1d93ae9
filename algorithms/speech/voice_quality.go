package speech

import (
	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
)

// VoiceQualityAnalyzer measures perturbation and noise from per-frame voice
// tracks (periods, amplitudes, harmonic ratios) of consecutive voiced frames
type VoiceQualityAnalyzer struct{}

// VoiceQualityResult contains voice quality measurements
type VoiceQualityResult struct {
	// Perturbation measures
	Jitter  float64 `json:"jitter"`  // Relative pitch period irregularity
	Shimmer float64 `json:"shimmer"` // Relative amplitude irregularity

	// Noise measures
	Breathiness float64 `json:"breathiness"` // Mean non-harmonic energy share
	Roughness   float64 `json:"roughness"`   // Always 0, no roughness model yet
}

// NewVoiceQualityAnalyzer creates a new voice quality analyzer
func NewVoiceQualityAnalyzer() *VoiceQualityAnalyzer {
	return &VoiceQualityAnalyzer{}
}

// Analyze computes jitter from periods (seconds), shimmer from RMS
// amplitudes and breathiness from harmonic ratios
func (vqa *VoiceQualityAnalyzer) Analyze(periods, amplitudes, harmonicRatios []float64) VoiceQualityResult {
	return VoiceQualityResult{
		Jitter:      vqa.Jitter(periods),
		Shimmer:     vqa.Shimmer(amplitudes),
		Breathiness: vqa.Breathiness(harmonicRatios),
	}
}

// Jitter is the mean absolute difference between consecutive periods
// divided by the mean period
func (vqa *VoiceQualityAnalyzer) Jitter(periods []float64) float64 {
	return relativeMeanAbsDiff(periods)
}

// Shimmer is the mean absolute difference between consecutive amplitudes
// divided by the mean amplitude
func (vqa *VoiceQualityAnalyzer) Shimmer(amplitudes []float64) float64 {
	return relativeMeanAbsDiff(amplitudes)
}

// Breathiness is the mean of 1 - harmonic ratio
func (vqa *VoiceQualityAnalyzer) Breathiness(harmonicRatios []float64) float64 {
	if len(harmonicRatios) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, r := range harmonicRatios {
		sum += 1 - common.Clamp01(r)
	}
	return sum / float64(len(harmonicRatios))
}

func relativeMeanAbsDiff(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}

	mean := common.Mean(values)
	if mean == 0 {
		return 0.0
	}

	diffSum := 0.0
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d < 0 {
			d = -d
		}
		diffSum += d
	}

	return diffSum / float64(len(values)-1) / mean
}
