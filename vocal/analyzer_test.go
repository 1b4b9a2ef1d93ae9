package vocal

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
	"github.com/RyanBlaney/sonido-vocals/logging"
)

type AnalyzerTestSuite struct {
	suite.Suite
	analyzer *Analyzer
}

func (s *AnalyzerTestSuite) SetupSuite() {
	analyzer, err := NewAnalyzer(DefaultConfig())
	s.Require().NoError(err)
	s.analyzer = analyzer.WithLogger(&logging.NoOpLogger{})
}

func TestAnalyzerTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerTestSuite))
}

func (s *AnalyzerTestSuite) analyze(signal []float64) *VocalFeatures {
	return s.analyzer.Analyze(NewMonoBuffer(signal, testSampleRate))
}

// assertWellFormed checks the invariants every result must satisfy
func (s *AnalyzerTestSuite) assertWellFormed(f *VocalFeatures) {
	s.Require().NotNil(f)
	s.NotNil(f.VocalSegments)
	s.NotNil(f.Onsets)
	s.NotNil(f.InstrumentalSegments)

	s.InDelta(0.5, f.VocalConfidence, 0.5)
	s.InDelta(0.5, f.VocalDensity, 0.5)
	s.Equal(f.VocalConfidence > 0.3, f.HasVocals)

	prevEnd := 0.0
	for _, seg := range f.VocalSegments {
		s.Greater(seg.End, seg.Start)
		s.GreaterOrEqual(seg.Start, prevEnd)
		s.LessOrEqual(seg.End, f.Duration+1e-9)
		s.InDelta(0.5, seg.Confidence, 0.5)
		s.InDelta(0.5, seg.Intensity, 0.5)
		s.GreaterOrEqual(seg.Intensity, seg.Confidence)
		prevEnd = seg.End
	}

	for i, onset := range f.Onsets {
		s.InDelta(0.5, onset.Confidence, 0.5)
		if i > 0 {
			s.GreaterOrEqual(onset.Time, f.Onsets[i-1].Time)
		}
		inside := false
		for _, seg := range f.VocalSegments {
			if onset.Time >= seg.Start && onset.Time <= seg.End {
				inside = true
			}
		}
		s.True(inside, "onset at %.3f s lies outside every segment", onset.Time)
	}

	for _, gap := range f.InstrumentalSegments {
		s.Greater(gap.End, gap.Start)
		for _, seg := range f.VocalSegments {
			s.False(seg.Start < gap.End && seg.End > gap.Start, "instrumental segment overlaps vocals")
		}
	}

	_, err := json.Marshal(f)
	s.NoError(err, "result must be finite")
}

func (s *AnalyzerTestSuite) TestSilence() {
	f := s.analyze(make([]float64, 5*testSampleRate))
	s.assertWellFormed(f)

	s.False(f.HasVocals)
	s.Zero(f.VocalConfidence)
	s.Zero(f.VocalDensity)
	s.Empty(f.VocalSegments)
	s.Empty(f.Onsets)
	s.Equal([]InstrumentalSegment{{Start: 0, End: 5, Confidence: 0.7}}, f.InstrumentalSegments)
	s.Equal(DefaultCharacteristics(), f.Characteristics)
	s.InDelta(5.0, f.Duration, 1e-9)
	s.Equal(testSampleRate, f.SampleRate)
}

func (s *AnalyzerTestSuite) TestSingleTone() {
	f := s.analyze(toneSignal(10, 1, region{3, 6}))
	s.assertWellFormed(f)

	s.True(f.HasVocals)
	s.Require().Len(f.VocalSegments, 1)
	s.InDelta(3.0, f.VocalSegments[0].Start, 0.25)
	s.InDelta(6.0, f.VocalSegments[0].End, 0.25)
	s.InDelta(0.3, f.VocalDensity, 0.05)

	s.Greater(f.Characteristics.VoicedFrames, 0)
	s.InDelta(220.0, f.Characteristics.MeanF0, 220*0.02)

	// Leading and trailing silences are both longer than the minimum gap
	s.Len(f.InstrumentalSegments, 2)

	breakdown := f.Breakdown
	s.False(breakdown.Intro.HasVocals)
	s.True(breakdown.Verse.HasVocals)
	s.True(breakdown.Chorus.HasVocals)
	s.False(breakdown.Outro.HasVocals)
}

func (s *AnalyzerTestSuite) TestLongGapIsInstrumental() {
	f := s.analyze(toneSignal(10, 1, region{1, 3}, region{6.5, 8.5}))
	s.assertWellFormed(f)

	s.Require().Len(f.VocalSegments, 2)
	s.Require().Len(f.InstrumentalSegments, 1)

	gap := f.InstrumentalSegments[0]
	s.Equal(f.VocalSegments[0].End, gap.Start)
	s.Equal(f.VocalSegments[1].Start, gap.End)
	s.Equal(0.7, gap.Confidence)
}

func (s *AnalyzerTestSuite) TestShortGapIsNotInstrumental() {
	f := s.analyze(toneSignal(7.5, 1, region{1, 3}, region{4.5, 6.5}))
	s.assertWellFormed(f)

	s.Len(f.VocalSegments, 2)
	s.Empty(f.InstrumentalSegments)
}

func (s *AnalyzerTestSuite) TestShortBurstIsIgnored() {
	f := s.analyze(toneSignal(4, 1, region{2, 2.25}))
	s.assertWellFormed(f)

	s.Empty(f.VocalSegments)
	s.False(f.HasVocals)
	s.Equal([]InstrumentalSegment{{Start: 0, End: 4, Confidence: 0.7}}, f.InstrumentalSegments)
}

func (s *AnalyzerTestSuite) TestBurstJustUnderMinimumIsIgnored() {
	for _, length := range []float64{0.3, 0.45, 0.48, 0.49} {
		f := s.analyze(toneSignal(4, 1, region{2, 2 + length}))
		s.assertWellFormed(f)
		s.Empty(f.VocalSegments, "burst of %.2f s", length)
	}
}

func (s *AnalyzerTestSuite) TestBurstAboveMinimumIsKept() {
	f := s.analyze(toneSignal(4, 1, region{2, 2.75}))
	s.assertWellFormed(f)

	s.Require().Len(f.VocalSegments, 1)
	seg := f.VocalSegments[0]
	s.InDelta(2.0, seg.Start, 0.25)
	s.InDelta(2.75, seg.End, 0.25)
}

func (s *AnalyzerTestSuite) TestPitchAtOtherSampleRates() {
	cases := []struct {
		sampleRate int
		f0         float64
	}{
		{16000, 440},
		{48000, 700},
		{44100, 330},
	}

	for _, tc := range cases {
		signal := toneSignalAt(tc.sampleRate, tc.f0, 10, 1, region{3, 6})
		f := s.analyzer.Analyze(NewMonoBuffer(signal, tc.sampleRate))
		s.assertWellFormed(f)

		s.Require().Positive(f.Characteristics.VoicedFrames, "%d Hz", tc.sampleRate)
		s.InDelta(tc.f0, f.Characteristics.MeanF0, tc.f0*0.02, "%d Hz / %.0f Hz", tc.sampleRate, tc.f0)
	}
}

func (s *AnalyzerTestSuite) TestFullyVoiced() {
	f := s.analyze(toneSignal(4, 1, region{0, 4}))
	s.assertWellFormed(f)

	s.True(f.HasVocals)
	s.InDelta(1.0, f.VocalDensity, 0.01)
	s.Empty(f.InstrumentalSegments)
	s.InDelta(220.0, f.Characteristics.MeanF0, 220*0.02)
	s.Greater(f.Characteristics.MeanHarmonicRatio, 0.5)
	s.Zero(f.Characteristics.Roughness)

	for _, section := range f.Breakdown.Sections() {
		s.True(section.HasVocals, "section %s", section.Section)
	}
}

func (s *AnalyzerTestSuite) TestAmplitudeStepProducesOnset() {
	signal := toneSignal(5, 0.2, region{0.5, 2})
	loud := toneSignal(5, 1.5, region{2, 4})
	for i := range signal {
		signal[i] += loud[i]
	}

	f := s.analyze(signal)
	s.assertWellFormed(f)
	s.Require().Len(f.VocalSegments, 1)

	found := false
	for _, onset := range f.Onsets {
		if onset.Time >= 1.85 && onset.Time <= 2.05 && onset.Confidence > 0.3 {
			found = true
		}
	}
	s.True(found, "expected an onset at the level step, got %+v", f.Onsets)
}

func (s *AnalyzerTestSuite) TestDeterministic() {
	signal := toneSignal(7.5, 1, region{1, 3}, region{4.5, 6.5})

	first, err := json.Marshal(s.analyze(signal))
	s.Require().NoError(err)
	second, err := json.Marshal(s.analyze(signal))
	s.Require().NoError(err)

	s.Equal(string(first), string(second))
}

func (s *AnalyzerTestSuite) TestDegenerateBuffers() {
	for name, buf := range map[string]*AudioBuffer{
		"nil":         nil,
		"no channels": {SampleRate: testSampleRate},
		"empty":       NewMonoBuffer([]float64{}, testSampleRate),
		"zero rate":   NewMonoBuffer(make([]float64, 4096), 0),
	} {
		f := s.analyzer.Analyze(buf)
		s.Require().NotNil(f, name)
		s.False(f.HasVocals, name)
		s.Zero(f.Duration, name)
		s.Empty(f.VocalSegments, name)
		s.Empty(f.InstrumentalSegments, name)
		s.NotNil(f.Onsets, name)
	}
}

func (s *AnalyzerTestSuite) TestShorterThanOneFrame() {
	f := s.analyze(toneSignal(0.05, 1, region{0, 0.05}))
	s.assertWellFormed(f)

	s.False(f.HasVocals)
	s.Empty(f.VocalSegments)
	s.Require().Len(f.InstrumentalSegments, 1)
	s.InDelta(0.05, f.InstrumentalSegments[0].End, 1e-3)
}

func (s *AnalyzerTestSuite) TestNonFiniteSamplesAreSilenced() {
	signal := toneSignal(4, 1, region{0, 4})
	for i := 1000; i < len(signal); i += 7919 {
		signal[i] = math.NaN()
	}
	signal[500] = math.Inf(-1)

	f := s.analyze(signal)
	s.assertWellFormed(f)
	s.True(f.HasVocals)
}

func (s *AnalyzerTestSuite) TestStereoMatchesMono() {
	signal := toneSignal(4, 1, region{1, 3})
	stereo := &AudioBuffer{
		SampleRate: testSampleRate,
		Channels:   [][]float64{signal, append([]float64(nil), signal...)},
	}

	s.Equal(s.analyze(signal), s.analyzer.Analyze(stereo))
}

func (s *AnalyzerTestSuite) TestAnalyzeVocalsUsesDefaults() {
	signal := toneSignal(4, 1, region{1, 3})

	f := AnalyzeVocals(NewMonoBuffer(signal, testSampleRate))
	s.Equal(s.analyze(signal), f)
}

func (s *AnalyzerTestSuite) TestAnalyzeFrames() {
	signal := toneSignal(2, 1, region{0, 2})

	frames, err := s.analyzer.AnalyzeFrames(NewMonoBuffer(signal, testSampleRate))
	s.Require().NoError(err)
	s.Len(frames, common.FrameCount(len(signal), 2048, 512))

	mid := frames[len(frames)/2]
	s.Greater(mid.Probability, 0.9)
	s.True(mid.Pitch.Voiced)
	s.InDelta(220.0, mid.Pitch.F0, 220*0.02)
	s.Greater(mid.Harmonic.Ratio, 0.5)
	s.Nil(mid.Spectral.Magnitude)
	s.Nil(mid.Temporal.Autocorrelation)
	s.InDelta(float64(len(frames)/2)*512/testSampleRate, mid.Time, 1e-9)

	s.Zero(frames[0].Spectral.Flux, "first frame has no predecessor")

	_, err = s.analyzer.AnalyzeFrames(nil)
	s.ErrorIs(err, ErrInvalidBuffer)
}

func (s *AnalyzerTestSuite) TestAnalyzeFramesRetainsSpectra() {
	config := DefaultConfig()
	config.RetainSpectra = true
	analyzer, err := NewAnalyzer(config)
	s.Require().NoError(err)

	frames, err := analyzer.WithLogger(nil).AnalyzeFrames(NewMonoBuffer(toneSignal(1, 1, region{0, 1}), testSampleRate))
	s.Require().NoError(err)
	s.Require().NotEmpty(frames)

	s.Len(frames[0].Spectral.Magnitude, 1025)
	s.Len(frames[0].Spectral.Phase, 1025)
	s.Len(frames[0].Temporal.Autocorrelation, 1025)
	s.NotEqual(frames[0].Spectral.Magnitude, frames[1].Spectral.Magnitude)
}

func (s *AnalyzerTestSuite) TestLogsSummary() {
	var out bytes.Buffer
	analyzer := s.analyzer.WithLogger(logging.NewWriterLogger(&out, logging.DebugLevel))

	signal := toneSignal(4, 1, region{1, 3})
	signal[10] = math.NaN()
	analyzer.Analyze(NewMonoBuffer(signal, testSampleRate))

	log := out.String()
	s.Contains(log, "[WARN] Replaced non-finite samples with silence")
	s.Contains(log, "replaced=1")
	s.Contains(log, "[DEBUG] Segmentation completed")
	s.Contains(log, "[INFO] Vocal analysis completed")
	s.Contains(log, "component=vocal_analyzer")
	s.Contains(log, "has_vocals=true")
}
