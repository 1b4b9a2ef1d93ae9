package vocal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmenterStep(t *testing.T) {
	sg := NewSegmenter(0.5, 0)

	s, ended := sg.step(segmenterState{}, 0, 0.5)
	assert.Equal(t, stateInstrumental, s.state, "probability equal to the threshold is not vocal")
	assert.Nil(t, ended)

	s, ended = sg.step(s, 1, 0.8)
	assert.Equal(t, stateInVocal, s.state)
	assert.Nil(t, ended)

	s, ended = sg.step(s, 2, 0.6)
	assert.Equal(t, stateInVocal, s.state)
	assert.Nil(t, ended)

	s, ended = sg.step(s, 3, 0.5)
	assert.Equal(t, stateInstrumental, s.state)
	require.NotNil(t, ended)
	assert.Equal(t, 1, ended.first)
	assert.Equal(t, 2, ended.last)
	assert.Equal(t, []float64{0.8, 0.6}, ended.probs)

	assert.Nil(t, sg.flush(s))
}

func TestSegmenterFlushOpenRun(t *testing.T) {
	sg := NewSegmenter(0.5, 0)

	s, _ := sg.step(segmenterState{}, 4, 0.9)
	r := sg.flush(s)
	require.NotNil(t, r)
	assert.Equal(t, 4, r.first)
	assert.Equal(t, 1, r.length())
}

func TestSegmentDropsShortRuns(t *testing.T) {
	// hop of 0.1 s with no window overlap: a 0.25 s burst spans at most 4 frames
	sg := NewSegmenter(0.5, 0.25)
	probs := []float64{0.2, 0.9, 0.7, 0.8, 0.6, 0.8, 0.1, 0.8, 0.9, 0.7, 0.9, 0.2}

	segments := sg.Segment(probs, 1, 1, 10, 1.2)
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.InDelta(t, 0.1, seg.Start, 1e-9)
	assert.InDelta(t, 0.6, seg.End, 1e-9)
	assert.InDelta(t, 0.76, seg.Confidence, 1e-9)
	assert.InDelta(t, 0.9, seg.Intensity, 1e-9)
	assert.Equal(t, 1, seg.startFrame)
	assert.Equal(t, 5, seg.endFrame)
}

func TestSegmentLastFrameOwnsRemainder(t *testing.T) {
	sg := NewSegmenter(0.5, 0.25)
	probs := []float64{0.1, 0.9, 0.9, 0.9, 0.9, 0.9}

	segments := sg.Segment(probs, 1, 1, 10, 0.65)
	require.Len(t, segments, 1)
	assert.InDelta(t, 0.1, segments[0].Start, 1e-9)
	assert.InDelta(t, 0.65, segments[0].End, 1e-9)
}

func TestSegmentDiscountsWindowSpread(t *testing.T) {
	// hop of 0.5 s and windows four hops long: a 1 s burst overlaps up to
	// six windows, so seven frames are needed
	sg := NewSegmenter(0.5, 1.0)
	probs := []float64{
		0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.1,
		0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.9, 0.1,
	}

	segments := sg.Segment(probs, 4, 1, 2, 7.5)
	require.Len(t, segments, 1)
	assert.InDelta(t, 3.5, segments[0].Start, 1e-9)
	assert.InDelta(t, 7.0, segments[0].End, 1e-9)
	assert.Equal(t, 7, segments[0].startFrame)
	assert.Equal(t, 13, segments[0].endFrame)
}

func TestSegmentMinimumRunFrames(t *testing.T) {
	tests := []struct {
		name                           string
		minSeconds                     float64
		frameSize, hopSize, sampleRate int
		expected                       int
	}{
		{"no minimum", 0, 2048, 512, 22050, 1},
		{"default framing", 0.5, 2048, 512, 22050, 27},
		{"no overlap", 0.25, 1, 1, 10, 5},
		{"exact multiple", 1.0, 4, 1, 2, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sg := NewSegmenter(0.5, tt.minSeconds)
			assert.Equal(t, tt.expected, sg.minRunFrames(tt.frameSize, tt.hopSize, tt.sampleRate))
		})
	}
}

func TestSegmentWithoutMinimumKeepsEveryRun(t *testing.T) {
	sg := NewSegmenter(0.5, 0)

	segments := sg.Segment([]float64{0.1, 0.9, 0.1, 0.8}, 2048, 512, 22050, 0.1)
	require.Len(t, segments, 2)
	assert.Equal(t, 1, segments[0].startFrame)
	assert.Equal(t, 3, segments[1].startFrame)
}

func TestSegmentDegenerateInput(t *testing.T) {
	sg := NewSegmenter(0.5, 0.5)

	assert.Empty(t, sg.Segment(nil, 2048, 512, 22050, 1))
	assert.Empty(t, sg.Segment([]float64{0.9}, 2048, 0, 22050, 1))
	assert.Empty(t, sg.Segment([]float64{0.9}, 2048, 512, 0, 1))
	assert.NotNil(t, sg.Segment(nil, 2048, 512, 22050, 1))
}

func TestClassifyVocalType(t *testing.T) {
	tests := []struct {
		name                      string
		mean, variance, intensity float64
		expected                  VocalType
	}{
		{"shout", 0.7, 0.2, 0.95, VocalShout},
		{"whisper", 0.5, 0.0, 0.6, VocalWhisper},
		{"rap", 0.7, 0.2, 0.8, VocalRap},
		{"lead", 0.9, 0.01, 0.95, VocalLead},
		{"harmony", 0.7, 0.01, 0.65, VocalHarmony},
		{"backing", 0.55, 0.01, 0.8, VocalBacking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyVocalType(tt.mean, tt.variance, tt.intensity))
		})
	}
}
