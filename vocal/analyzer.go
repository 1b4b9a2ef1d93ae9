package vocal

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
	"github.com/RyanBlaney/sonido-vocals/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-vocals/algorithms/spectral"
	"github.com/RyanBlaney/sonido-vocals/algorithms/speech"
	"github.com/RyanBlaney/sonido-vocals/algorithms/temporal"
	"github.com/RyanBlaney/sonido-vocals/algorithms/tonal"
	"github.com/RyanBlaney/sonido-vocals/algorithms/windowing"
	"github.com/RyanBlaney/sonido-vocals/logging"
)

// ErrInvalidBuffer is returned by AnalyzeFrames for buffers that cannot be framed
var ErrInvalidBuffer = errors.New("invalid audio buffer")

// Analyzer extracts vocal features from audio buffers.
// It only holds read-only tables and may be shared between goroutines.
type Analyzer struct {
	config   Config
	window   *windowing.Hann
	fft      *spectral.FFT
	autocorr *temporal.Autocorrelation
	logger   logging.Logger
	metrics  *Metrics
}

// NewAnalyzer creates an analyzer. A nil config selects DefaultConfig.
func NewAnalyzer(cfg *Config) (*Analyzer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Analyzer{
		config:   *cfg,
		window:   windowing.NewHann(cfg.FrameSize, false),
		fft:      spectral.NewFFT(cfg.FrameSize),
		autocorr: temporal.NewAutocorrelation(cfg.FrameSize, cfg.FrameSize/2),
		logger: logging.WithFields(logging.Fields{
			"component": "vocal_analyzer",
		}),
	}, nil
}

// WithLogger returns a copy of the analyzer logging to logger
func (a *Analyzer) WithLogger(logger logging.Logger) *Analyzer {
	clone := *a
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	clone.logger = logger.WithFields(logging.Fields{"component": "vocal_analyzer"})
	return &clone
}

// WithMetrics returns a copy of the analyzer reporting to m
func (a *Analyzer) WithMetrics(m *Metrics) *Analyzer {
	clone := *a
	clone.metrics = m
	return &clone
}

// Config returns a copy of the analyzer configuration
func (a *Analyzer) Config() Config {
	return a.config
}

var defaultAnalyzer = sync.OnceValue(func() *Analyzer {
	analyzer, err := NewAnalyzer(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("default vocal config rejected: %v", err))
	}
	return analyzer
})

// AnalyzeVocals analyzes buf with the default configuration
func AnalyzeVocals(buf *AudioBuffer) *VocalFeatures {
	return defaultAnalyzer().Analyze(buf)
}

// Analyze runs the complete pipeline over one buffer. It never fails: empty,
// rate-less or unusable buffers produce a "no vocals" result, and non-finite
// samples are treated as silence.
func (a *Analyzer) Analyze(buf *AudioBuffer) *VocalFeatures {
	started := time.Now()

	if buf == nil || buf.SampleRate <= 0 || buf.NumFrames() == 0 {
		a.logger.Debug("Empty or invalid buffer, returning default result")
		features := newDefaultFeatures(buf)
		a.metrics.observe(features, 0, time.Since(started))
		return features
	}

	logger := a.logger.WithFields(logging.Fields{
		"function":    "Analyze",
		"sample_rate": buf.SampleRate,
		"channels":    len(buf.Channels),
		"samples":     buf.NumFrames(),
	})

	signal, replaced := buf.mono()
	if replaced > 0 {
		logger.Warn("Replaced non-finite samples with silence", logging.Fields{
			"replaced": replaced,
		})
		a.metrics.nonFinite(replaced)
	}

	frames, err := a.extract(signal, buf.SampleRate, logger)
	if err != nil {
		logger.Error(err, "Frame extraction failed, returning default result")
		features := newDefaultFeatures(buf)
		a.metrics.observe(features, 0, time.Since(started))
		return features
	}

	duration := buf.Duration()
	hopSeconds := float64(a.config.HopSize) / float64(buf.SampleRate)

	probabilities := make([]float64, len(frames))
	for i, f := range frames {
		probabilities[i] = f.Probability
	}

	segmenter := NewSegmenter(a.config.ProbabilityThreshold, a.config.MinSegmentSeconds)
	segments := segmenter.Segment(probabilities, a.config.FrameSize, a.config.HopSize, buf.SampleRate, duration)
	logger.Debug("Segmentation completed", logging.Fields{
		"frames":   len(frames),
		"segments": len(segments),
	})

	onsets := detectOnsets(segments, frames, a.config.OnsetThreshold, hopSeconds)
	breakdown := analyzeStructure(segments, duration)
	characteristics := computeCharacteristics(frames)

	features := aggregate(segments, onsets, breakdown, characteristics, duration, &a.config)
	features.SampleRate = buf.SampleRate

	logger.Info("Vocal analysis completed", logging.Fields{
		"has_vocals":       features.HasVocals,
		"vocal_confidence": features.VocalConfidence,
		"vocal_density":    features.VocalDensity,
		"segments":         len(features.VocalSegments),
		"onsets":           len(features.Onsets),
		"voiced_frames":    features.Characteristics.VoicedFrames,
	})

	a.metrics.observe(features, len(frames), time.Since(started))
	return features
}

// AnalyzeFrames returns every per-frame measurement of a buffer without
// segmenting it
func (a *Analyzer) AnalyzeFrames(buf *AudioBuffer) ([]FrameFeatures, error) {
	if buf == nil || buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing samples or sample rate", ErrInvalidBuffer)
	}

	signal, _ := buf.mono()
	return a.extract(signal, buf.SampleRate, a.logger)
}

// framePipeline holds the sample-rate dependent extractors of one call
type framePipeline struct {
	centroid *spectral.SpectralCentroid
	rolloff  *spectral.SpectralRolloff
	flux     *spectral.SpectralFlux
	flatness *spectral.SpectralFlatness
	harmonic *harmonic.Analyzer
	energy   *temporal.Energy
	zcr      *temporal.ZeroCrossingRate
	envelope *temporal.Envelope
	pitch    *tonal.PitchEstimator
	formants *speech.FormantAnalyzer
}

func (a *Analyzer) newPipeline(sampleRate int) (*framePipeline, error) {
	pitch, err := tonal.NewPitchEstimator(tonal.PitchEstimatorParams{
		SampleRate:       sampleRate,
		FrameSize:        a.config.FrameSize,
		MinFreq:          a.config.MinPitchHz,
		MaxFreq:          a.config.MaxPitchHz,
		VoicingThreshold: a.config.VoicingThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pitch estimator: %w", err)
	}

	formants, err := speech.NewFormantAnalyzer(sampleRate, a.config.LPCOrder, a.config.PreEmphasis)
	if err != nil {
		return nil, fmt.Errorf("failed to create formant analyzer: %w", err)
	}

	return &framePipeline{
		centroid: spectral.NewSpectralCentroid(sampleRate),
		rolloff:  spectral.NewSpectralRolloff(sampleRate, a.config.RolloffFraction),
		flux:     spectral.NewSpectralFlux(),
		flatness: spectral.NewSpectralFlatness(),
		harmonic: harmonic.NewAnalyzer(sampleRate, a.config.FrameSize, a.config.PeakThreshold),
		energy:   temporal.NewEnergy(),
		zcr:      temporal.NewZeroCrossingRate(),
		envelope: temporal.NewEnvelope(),
		pitch:    pitch,
		formants: formants,
	}, nil
}

// frameScratch is per-call working memory reused across frames
type frameScratch struct {
	samples  []float64
	fftBuf   []float64
	acBuf    []float64
	mag      []float64
	prevMag  []float64
	phase    []float64
	havePrev bool
}

// extract computes the features of every frame of a mono signal
func (a *Analyzer) extract(signal []float64, sampleRate int, logger logging.Logger) ([]FrameFeatures, error) {
	numFrames := common.FrameCount(len(signal), a.config.FrameSize, a.config.HopSize)
	frames := make([]FrameFeatures, numFrames)
	if numFrames == 0 {
		return frames, nil
	}

	pipeline, err := a.newPipeline(sampleRate)
	if err != nil {
		return nil, err
	}

	bins := a.fft.Bins()
	scratch := &frameScratch{
		samples: make([]float64, a.config.FrameSize),
		fftBuf:  a.fft.NewBuffer(),
		acBuf:   a.autocorr.NewBuffer(),
		mag:     make([]float64, bins),
		prevMag: make([]float64, bins),
		phase:   make([]float64, bins),
	}

	pitchFailures, formantFailures := 0, 0
	for i := range numFrames {
		frame := common.ExtractFrame(signal, i, a.config.FrameSize, a.config.HopSize, a.window, scratch.samples)

		features, failed := a.processFrame(pipeline, frame, scratch, sampleRate)
		if failed.pitch {
			pitchFailures++
		}
		if failed.formants {
			formantFailures++
		}
		frames[i] = features
	}

	if pitchFailures > 0 || formantFailures > 0 {
		logger.Debug("Some frames fell back to neutral estimates", logging.Fields{
			"pitch_failures":   pitchFailures,
			"formant_failures": formantFailures,
		})
	}

	return frames, nil
}

// frameFailures marks the estimators that fell back to neutral values
type frameFailures struct {
	pitch    bool
	formants bool
}

// processFrame measures one windowed frame
func (a *Analyzer) processFrame(p *framePipeline, frame common.Frame, s *frameScratch, sampleRate int) (FrameFeatures, frameFailures) {
	samples := frame.Samples

	a.fft.LoadReal(s.fftBuf, samples)
	// Buffer sizes come from the same plan; Forward cannot fail here
	_ = a.fft.Forward(s.fftBuf)
	a.fft.Magnitudes(s.fftBuf, s.mag)
	if a.config.RetainSpectra {
		a.fft.Phases(s.fftBuf, s.phase)
	}

	var prev []float64
	if s.havePrev {
		prev = s.prevMag
	}

	magSum := common.Sum(s.mag)
	sf := SpectralFrame{
		Centroid:     finite(p.centroid.Compute(s.mag)),
		Rolloff:      finite(p.rolloff.Compute(s.mag)),
		Flux:         finite(p.flux.ComputePair(prev, s.mag)),
		Flatness:     common.Clamp01(p.flatness.Compute(s.mag)),
		MagnitudeSum: finite(magSum),
	}

	h := p.harmonic.Analyze(s.mag)
	hf := HarmonicFrame{
		Ratio:         common.Clamp01(h.Ratio),
		Inharmonicity: finite(h.Inharmonicity),
		Peaks:         h.Peaks,
		Strength:      common.Clamp01(h.Strength),
	}

	tf := TemporalFrame{
		Energy:   finite(p.energy.Compute(samples)),
		ZCR:      common.Clamp01(p.zcr.Compute(samples)),
		Envelope: finite(p.envelope.ComputePeak(samples)),
	}

	r, acErr := a.autocorr.Compute(samples, s.acBuf)

	var failed frameFailures

	var pitch tonal.PitchEstimate
	if acErr != nil {
		failed.pitch = true
	} else {
		// The estimator reuses the transform buffer for the cepstrum
		estimate, err := p.pitch.EstimateFromFeatures(samples, r, s.mag, s.fftBuf)
		if err != nil {
			failed.pitch = true
		} else {
			pitch = estimate
		}
	}

	formants, err := p.formants.Analyze(samples)
	if err != nil || !finiteFormants(formants) {
		failed.formants = true
		formants = speech.FormantEstimate{}
	}

	if a.config.RetainSpectra {
		sf.Magnitude = append([]float64(nil), s.mag...)
		sf.Phase = append([]float64(nil), s.phase...)
		if acErr == nil {
			tf.Autocorrelation = r
		}
	}

	// Keep this frame's magnitudes for the next frame's flux
	s.mag, s.prevMag = s.prevMag, s.mag
	s.havePrev = true

	return FrameFeatures{
		Index:       frame.Index,
		Time:        frame.StartTime(sampleRate),
		Spectral:    sf,
		Harmonic:    hf,
		Temporal:    tf,
		Pitch:       pitch,
		Formants:    formants,
		Probability: VocalProbability(sf, hf, tf),
	}, failed
}

func finite(v float64) float64 {
	return common.Finite(v)
}

func finiteFormants(fe speech.FormantEstimate) bool {
	for _, v := range []float64{fe.F1, fe.F2, fe.F3, fe.B1, fe.B2, fe.B3} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
