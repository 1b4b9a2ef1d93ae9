package vocal

import (
	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
)

const (
	maxVocalConfidence = 0.95
	confidenceBoost    = 1.1
	hasVocalsThreshold = 0.3
)

// aggregate assembles the final record from the per-stage results
func aggregate(segments []VocalSegment, onsets []OnsetEvent, breakdown StructuralBreakdown,
	characteristics VocalCharacteristics, duration float64, config *Config) *VocalFeatures {

	confidence := vocalConfidence(segments)

	return &VocalFeatures{
		HasVocals:            confidence > hasVocalsThreshold,
		VocalConfidence:      confidence,
		VocalDensity:         vocalDensity(segments, duration),
		VocalSegments:        segments,
		Characteristics:      characteristics,
		Onsets:               onsets,
		InstrumentalSegments: instrumentalSegments(segments, duration, config.MinInstrumentalGap, config.InstrumentalConfidence),
		Breakdown:            breakdown,
		Duration:             duration,
	}
}

// newDefaultFeatures is the "no vocals" record for buffers that cannot be analysed
func newDefaultFeatures(buf *AudioBuffer) *VocalFeatures {
	features := &VocalFeatures{
		VocalSegments:        []VocalSegment{},
		Characteristics:      DefaultCharacteristics(),
		Onsets:               []OnsetEvent{},
		InstrumentalSegments: []InstrumentalSegment{},
		Breakdown:            analyzeStructure(nil, 0),
	}
	if buf != nil && buf.SampleRate > 0 {
		features.SampleRate = buf.SampleRate
	}
	return features
}

func vocalConfidence(segments []VocalSegment) float64 {
	if len(segments) == 0 {
		return 0
	}

	confidences := make([]float64, len(segments))
	for i, seg := range segments {
		confidences[i] = seg.Confidence
	}

	return common.Clamp01(min(maxVocalConfidence, confidenceBoost*common.Mean(confidences)))
}

func vocalDensity(segments []VocalSegment, duration float64) float64 {
	if duration <= 0 {
		return 0
	}

	total := 0.0
	for _, seg := range segments {
		total += seg.Duration()
	}
	return common.Clamp01(total / duration)
}

// instrumentalSegments returns the leading, internal and trailing gaps between
// segments that are longer than minGap. A buffer without segments is one
// instrumental segment regardless of its length.
func instrumentalSegments(segments []VocalSegment, duration, minGap, confidence float64) []InstrumentalSegment {
	result := []InstrumentalSegment{}
	if duration <= 0 {
		return result
	}

	if len(segments) == 0 {
		return append(result, InstrumentalSegment{Start: 0, End: duration, Confidence: confidence})
	}

	cursor := 0.0
	for _, seg := range segments {
		if seg.Start-cursor > minGap {
			result = append(result, InstrumentalSegment{Start: cursor, End: seg.Start, Confidence: confidence})
		}
		cursor = max(cursor, seg.End)
	}

	if duration-cursor > minGap {
		result = append(result, InstrumentalSegment{Start: cursor, End: duration, Confidence: confidence})
	}

	return result
}
