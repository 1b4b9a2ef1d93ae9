package vocal

import (
	"math"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
)

type segmentState int

const (
	stateInstrumental segmentState = iota
	stateInVocal
)

// run accumulates the probabilities of consecutive vocal frames
type run struct {
	first int
	last  int
	probs []float64
}

func (r run) length() int {
	return r.last - r.first + 1
}

// segmenterState is the complete state of the segmenter between frames
type segmenterState struct {
	state segmentState
	run   run
}

// Segmenter turns per-frame vocal probabilities into vocal segments with a
// two-state machine. Runs that could come from a burst shorter than the
// minimum length are dropped.
type Segmenter struct {
	threshold  float64
	minSeconds float64
}

// NewSegmenter creates a segmenter entering the vocal state above threshold
// and keeping runs of at least minSeconds
func NewSegmenter(threshold, minSeconds float64) *Segmenter {
	return &Segmenter{threshold: threshold, minSeconds: minSeconds}
}

// step is the pure transition function. It returns the next state and the
// run that ended at this frame, if any.
func (sg *Segmenter) step(s segmenterState, frame int, p float64) (segmenterState, *run) {
	switch s.state {
	case stateInstrumental:
		if p > sg.threshold {
			return segmenterState{
				state: stateInVocal,
				run:   run{first: frame, last: frame, probs: []float64{p}},
			}, nil
		}
		return s, nil

	default:
		if p > sg.threshold {
			s.run.last = frame
			s.run.probs = append(s.run.probs, p)
			return s, nil
		}
		ended := s.run
		return segmenterState{state: stateInstrumental}, &ended
	}
}

// flush ends an open run at the end of the buffer
func (sg *Segmenter) flush(s segmenterState) *run {
	if s.state != stateInVocal {
		return nil
	}
	ended := s.run
	return &ended
}

// Segment returns the vocal segments of a probability track. Frame i owns
// [i*hop, (i+1)*hop) samples; the last frame owns everything up to duration.
//
// Every window of frameSize samples that overlaps a voiced burst can score
// as vocal, so a burst of b samples lights up to ceil((b+frameSize)/hop)
// frames. A run is kept only when it is longer than that count for a burst
// of exactly the minimum length.
func (sg *Segmenter) Segment(probabilities []float64, frameSize, hopSize, sampleRate int, duration float64) []VocalSegment {
	segments := []VocalSegment{}
	if len(probabilities) == 0 || hopSize <= 0 || sampleRate <= 0 {
		return segments
	}

	hopSeconds := float64(hopSize) / float64(sampleRate)
	minFrames := sg.minRunFrames(max(frameSize, hopSize), hopSize, sampleRate)
	lastFrame := len(probabilities) - 1

	emit := func(r *run) {
		if r == nil || r.length() < minFrames {
			return
		}
		end := float64(r.last+1) * hopSeconds
		if r.last == lastFrame {
			end = duration
		}
		start := float64(r.first) * hopSeconds
		if end <= start {
			return
		}
		segments = append(segments, newSegment(r, start, end))
	}

	state := segmenterState{state: stateInstrumental}
	for i, p := range probabilities {
		var ended *run
		state, ended = sg.step(state, i, p)
		emit(ended)
	}
	emit(sg.flush(state))

	return segments
}

// minRunFrames is the shortest run that no burst under minSeconds can produce
func (sg *Segmenter) minRunFrames(frameSize, hopSize, sampleRate int) int {
	if sg.minSeconds <= 0 {
		return 1
	}
	spread := (sg.minSeconds*float64(sampleRate) + float64(frameSize)) / float64(hopSize)
	return int(math.Ceil(spread-1e-9)) + 1
}

func newSegment(r *run, start, end float64) VocalSegment {
	mean := common.Mean(r.probs)
	intensity := common.Max(r.probs)
	variance := common.PopulationVariance(r.probs)

	return VocalSegment{
		Start:      start,
		End:        end,
		Confidence: common.Clamp01(mean),
		Intensity:  common.Clamp01(intensity),
		Type:       classifyVocalType(mean, variance, intensity),
		startFrame: r.first,
		endFrame:   r.last,
	}
}

// classifyVocalType applies the delivery decision tree to the run statistics
func classifyVocalType(mean, variance, intensity float64) VocalType {
	switch {
	case intensity > 0.9 && variance > 0.1:
		return VocalShout
	case mean < 0.6 && intensity < 0.7:
		return VocalWhisper
	case variance > 0.15:
		return VocalRap
	case mean > 0.8 && intensity > 0.7:
		return VocalLead
	case mean > 0.6:
		return VocalHarmony
	default:
		return VocalBacking
	}
}
