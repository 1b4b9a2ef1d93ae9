package vocal

import (
	"math"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
	"github.com/RyanBlaney/sonido-vocals/algorithms/speech"
)

// computeCharacteristics aggregates pitch, formant and voice quality
// measurements over the voiced frames, in frame order
func computeCharacteristics(frames []FrameFeatures) VocalCharacteristics {
	var f0s, periods, amplitudes, ratios []float64
	var f1s, f2s, f3s []float64

	for _, f := range frames {
		if !f.Pitch.Voiced || f.Pitch.F0 <= 0 {
			continue
		}

		f0s = append(f0s, f.Pitch.F0)
		periods = append(periods, 1/f.Pitch.F0)
		amplitudes = append(amplitudes, math.Sqrt(f.Temporal.Energy))
		ratios = append(ratios, f.Harmonic.Ratio)

		if f.Formants.F1 > 0 {
			f1s = append(f1s, f.Formants.F1)
		}
		if f.Formants.F2 > 0 {
			f2s = append(f2s, f.Formants.F2)
		}
		if f.Formants.F3 > 0 {
			f3s = append(f3s, f.Formants.F3)
		}
	}

	if len(f0s) == 0 {
		return DefaultCharacteristics()
	}

	pitchRange := 0.0
	if lo := common.Min(f0s); lo > 0 {
		pitchRange = 12 * math.Log2(common.Max(f0s)/lo)
	}

	quality := speech.NewVoiceQualityAnalyzer().Analyze(periods, amplitudes, ratios)

	return VocalCharacteristics{
		MeanF0:            common.Mean(f0s),
		PitchRange:        pitchRange,
		PitchVariance:     common.PopulationVariance(f0s),
		MeanF1:            common.Mean(f1s),
		MeanF2:            common.Mean(f2s),
		MeanF3:            common.Mean(f3s),
		MeanHarmonicRatio: common.Mean(ratios),
		Jitter:            quality.Jitter,
		Shimmer:           quality.Shimmer,
		Breathiness:       quality.Breathiness,
		Roughness:         quality.Roughness,
		VoicedFrames:      len(f0s),
	}
}
