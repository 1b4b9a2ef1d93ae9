package vocal

import (
	"sort"

	"github.com/RyanBlaney/sonido-vocals/algorithms/temporal"
)

// onsetGain scales an energy rise into an onset confidence
const onsetGain = 10.0

// detectOnsets finds energy transients inside every segment and classifies them
func detectOnsets(segments []VocalSegment, frames []FrameFeatures, threshold, hopSeconds float64) []OnsetEvent {
	onsets := []OnsetEvent{}
	if len(frames) == 0 {
		return onsets
	}

	energies := make([]float64, len(frames))
	for i, f := range frames {
		energies[i] = f.Temporal.Energy
	}

	detector := temporal.NewOnsetDetection(threshold, onsetGain)
	for _, seg := range segments {
		for _, candidate := range detector.DetectRange(energies, seg.startFrame, seg.endFrame) {
			frame := frames[candidate.Frame]
			onsets = append(onsets, OnsetEvent{
				Time:       float64(candidate.Frame) * hopSeconds,
				Confidence: candidate.Confidence,
				Type:       classifyOnset(candidate.Confidence, spectralChange(frame.Spectral)),
			})
		}
	}

	sort.SliceStable(onsets, func(i, j int) bool {
		return onsets[i].Time < onsets[j].Time
	})
	return onsets
}

// spectralChange is the frame flux relative to the frame's total magnitude
func spectralChange(sf SpectralFrame) float64 {
	if sf.MagnitudeSum <= 0 {
		return 0
	}
	return sf.Flux / sf.MagnitudeSum
}

func classifyOnset(confidence, change float64) OnsetType {
	switch {
	case confidence > 0.8 && change > 0.1:
		return OnsetPhrase
	case confidence > 0.5:
		return OnsetWord
	default:
		return OnsetSyllable
	}
}
