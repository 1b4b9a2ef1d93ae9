package tonal

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
	"github.com/RyanBlaney/sonido-vocals/algorithms/spectral"
	"github.com/RyanBlaney/sonido-vocals/algorithms/temporal"
)

// semitoneRatio is the frequency ratio of one equal-tempered semitone
var semitoneRatio = math.Pow(2, 1.0/12.0)

const (
	// keyMaximumThreshold is the fraction of the strongest autocorrelation
	// peak a shorter-lag peak must reach to be taken as the period
	keyMaximumThreshold = 0.9

	// maxSubharmonicRatio is the largest integer frequency ratio treated as
	// a subharmonic error during fusion
	maxSubharmonicRatio = 3
)

// PitchCandidate is the estimate of a single detection method
type PitchCandidate struct {
	Frequency  float64 `json:"frequency"`  // Frequency in Hz, 0 if none found
	Confidence float64 `json:"confidence"` // Confidence score (0-1)
	Method     string  `json:"method"`     // Detection method used
}

// PitchEstimate is the fused pitch decision for one frame
type PitchEstimate struct {
	F0         float64 `json:"f0"`         // Fundamental frequency (Hz), 0 when unvoiced
	Confidence float64 `json:"confidence"` // Periodicity at the fused period (0-1)
	Voiced     bool    `json:"voiced"`
}

// PitchEstimatorParams contains parameters for pitch estimation
type PitchEstimatorParams struct {
	SampleRate       int     `json:"sample_rate"`
	FrameSize        int     `json:"frame_size"`
	MinFreq          float64 `json:"min_freq"`          // Lowest f0 searched (Hz)
	MaxFreq          float64 `json:"max_freq"`          // Highest f0 searched (Hz)
	VoicingThreshold float64 `json:"voicing_threshold"` // Confidence above which a frame is voiced
}

// PitchEstimator fuses a time-domain (autocorrelation) and a frequency-domain
// (cepstrum) pitch candidate into one f0, confidence and voicing decision.
//
// References:
// - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for pitch detection"
// - Noll, A.M. (1967). "Cepstrum pitch determination"
//
// The estimator only holds read-only tables and may be shared between goroutines.
type PitchEstimator struct {
	params PitchEstimatorParams
	minLag int
	maxLag int

	fft      *spectral.FFT
	autocorr *temporal.Autocorrelation
}

// NewPitchEstimator creates a pitch estimator for frames of params.FrameSize samples
func NewPitchEstimator(params PitchEstimatorParams) (*PitchEstimator, error) {
	if params.SampleRate <= 0 || params.FrameSize < 4 {
		return nil, fmt.Errorf("invalid pitch estimator dimensions: sample rate %d, frame size %d",
			params.SampleRate, params.FrameSize)
	}
	if params.MinFreq <= 0 || params.MaxFreq <= params.MinFreq {
		return nil, fmt.Errorf("invalid pitch range [%.1f, %.1f] Hz", params.MinFreq, params.MaxFreq)
	}

	sr := float64(params.SampleRate)
	minLag := max(1, int(math.Floor(sr/params.MaxFreq)))
	maxLag := int(math.Ceil(sr / params.MinFreq))

	return &PitchEstimator{
		params:   params,
		minLag:   minLag,
		maxLag:   maxLag,
		fft:      spectral.NewFFT(params.FrameSize),
		autocorr: temporal.NewAutocorrelation(params.FrameSize, params.FrameSize/2),
	}, nil
}

// Estimate computes everything it needs from the frame itself
func (pe *PitchEstimator) Estimate(frame []float64) (PitchEstimate, error) {
	r, err := pe.autocorr.Compute(frame, nil)
	if err != nil {
		return PitchEstimate{}, fmt.Errorf("autocorrelation failed: %w", err)
	}

	buf := pe.fft.NewBuffer()
	pe.fft.LoadReal(buf, frame)
	if err := pe.fft.Forward(buf); err != nil {
		return PitchEstimate{}, fmt.Errorf("forward transform failed: %w", err)
	}
	magnitudes := make([]float64, pe.fft.Bins())
	pe.fft.Magnitudes(buf, magnitudes)

	return pe.EstimateFromFeatures(frame, r, magnitudes, buf)
}

// EstimateFromFeatures estimates pitch from a frame together with its
// already computed autocorrelation (lags from 0) and magnitude spectrum
// (FrameSize/2+1 bins). buf is FFT scratch space of 2*FrameSize values
// (nil allocates one).
func (pe *PitchEstimator) EstimateFromFeatures(frame, autocorr, magnitudes, buf []float64) (PitchEstimate, error) {
	a := pe.AutocorrelationCandidate(autocorr)

	c, err := pe.CepstrumCandidate(magnitudes, buf)
	if err != nil {
		return PitchEstimate{}, err
	}

	f0 := Fuse(a, c)
	if f0 <= 0 {
		return PitchEstimate{}, nil
	}

	confidence := periodicity(frame, float64(pe.params.SampleRate)/f0)
	voiced := confidence > pe.params.VoicingThreshold &&
		f0 > pe.params.MinFreq && f0 < pe.params.MaxFreq

	estimate := PitchEstimate{Confidence: confidence, Voiced: voiced}
	if voiced {
		estimate.F0 = f0
	}
	return estimate, nil
}

// AutocorrelationCandidate picks the shortest-lag local maximum of r within
// the lag range that reaches keyMaximumThreshold of the strongest one. When
// the period is fractional the integer lag at a multiple of the period can
// outscore the true one. Confidence is the peak normalised by r[0].
func (pe *PitchEstimator) AutocorrelationCandidate(r []float64) PitchCandidate {
	candidate := PitchCandidate{Method: "autocorrelation"}
	if len(r) < 3 || r[0] <= 0 {
		return candidate
	}

	lag, ok := pe.keyLag(r)
	if !ok || r[lag] <= 0 {
		return candidate
	}

	refined := float64(lag) + common.ParabolicOffset(r[lag-1], r[lag], r[lag+1])
	candidate.Frequency = float64(pe.params.SampleRate) / refined
	candidate.Confidence = common.Clamp01(r[lag] / r[0])
	return candidate
}

// CepstrumCandidate computes the real cepstrum from a magnitude spectrum and
// picks its strongest local maximum within the lag range. Confidence is the
// peak normalised by the root-sum-square of the cepstrum over that range.
func (pe *PitchEstimator) CepstrumCandidate(magnitudes, buf []float64) (PitchCandidate, error) {
	candidate := PitchCandidate{Method: "cepstrum"}

	cepstrum, err := pe.Cepstrum(magnitudes, buf)
	if err != nil {
		return candidate, err
	}

	lag, ok := pe.peakLag(cepstrum)
	if !ok || cepstrum[lag] <= 0 {
		return candidate, nil
	}

	hi := min(pe.maxLag, len(cepstrum)-2)
	sumSquares := 0.0
	for k := pe.minLag; k <= hi; k++ {
		sumSquares += cepstrum[k] * cepstrum[k]
	}
	if sumSquares <= 0 {
		return candidate, nil
	}

	refined := float64(lag) + common.ParabolicOffset(cepstrum[lag-1], cepstrum[lag], cepstrum[lag+1])
	candidate.Frequency = float64(pe.params.SampleRate) / refined
	candidate.Confidence = common.Clamp01(cepstrum[lag] / math.Sqrt(sumSquares))
	return candidate, nil
}

// Cepstrum returns the real cepstrum (first FrameSize/2+1 quefrencies) of a
// half magnitude spectrum
func (pe *PitchEstimator) Cepstrum(magnitudes, buf []float64) ([]float64, error) {
	n := pe.fft.Size()
	if len(magnitudes) != n/2+1 {
		return nil, fmt.Errorf("cepstrum expects %d bins, got %d", n/2+1, len(magnitudes))
	}
	if buf == nil {
		buf = pe.fft.NewBuffer()
	}
	if len(buf) != 2*n {
		return nil, fmt.Errorf("cepstrum buffer length %d, expected %d", len(buf), 2*n)
	}

	// Rebuild the full Hermitian log spectrum
	clear(buf)
	for k, m := range magnitudes {
		logMag := math.Log(m + common.Epsilon)
		buf[2*k] = logMag
		if k > 0 && k < n/2 {
			buf[2*(n-k)] = logMag
		}
	}

	if err := pe.fft.Inverse(buf); err != nil {
		return nil, fmt.Errorf("inverse transform failed: %w", err)
	}

	cepstrum := make([]float64, n/2+1)
	for i := range cepstrum {
		cepstrum[i] = buf[2*i]
	}
	return cepstrum, nil
}

// peakLag returns the largest local maximum of series within the lag range
func (pe *PitchEstimator) peakLag(series []float64) (int, bool) {
	lo := max(pe.minLag, 1)
	hi := min(pe.maxLag, len(series)-2)

	best := -1
	for k := lo; k <= hi; k++ {
		if series[k] > series[k-1] && series[k] >= series[k+1] {
			if best < 0 || series[k] > series[best] {
				best = k
			}
		}
	}
	return best, best >= 0
}

// keyLag returns the first local maximum within the lag range that reaches
// keyMaximumThreshold of the largest one
func (pe *PitchEstimator) keyLag(series []float64) (int, bool) {
	best, ok := pe.peakLag(series)
	if !ok || series[best] <= 0 {
		return best, ok
	}

	floor := keyMaximumThreshold * series[best]
	for k := max(pe.minLag, 1); k < best; k++ {
		if series[k] > series[k-1] && series[k] >= series[k+1] && series[k] >= floor {
			return k, true
		}
	}
	return best, true
}

// Fuse combines two candidates by confidence-weighted average. Candidates
// more than a semitone apart are not averaged. If their ratio is within a
// semitone of 2 or 3 the lower one is a subharmonic and the higher frequency
// is returned, otherwise the more confident one wins.
func Fuse(a, b PitchCandidate) float64 {
	switch {
	case a.Confidence <= 0 && b.Confidence <= 0:
		return 0
	case a.Frequency <= 0 || a.Confidence <= 0:
		return b.Frequency
	case b.Frequency <= 0 || b.Confidence <= 0:
		return a.Frequency
	}

	high := math.Max(a.Frequency, b.Frequency)
	ratio := high / math.Min(a.Frequency, b.Frequency)
	if ratio > semitoneRatio {
		if n := math.Round(ratio); n >= 2 && n <= maxSubharmonicRatio &&
			ratio/n <= semitoneRatio && n/ratio <= semitoneRatio {
			return high
		}
		if a.Confidence >= b.Confidence {
			return a.Frequency
		}
		return b.Frequency
	}

	return (a.Frequency*a.Confidence + b.Frequency*b.Confidence) / (a.Confidence + b.Confidence)
}

// periodicity is the normalised cross-correlation between the frame and
// itself shifted by period samples
func periodicity(frame []float64, period float64) float64 {
	lag := int(math.Round(period))
	if lag <= 0 || lag >= len(frame) {
		return 0
	}

	var cross, head, tail float64
	for n := 0; n+lag < len(frame); n++ {
		x, y := frame[n], frame[n+lag]
		cross += x * y
		head += x * x
		tail += y * y
	}

	denom := math.Sqrt(head * tail)
	if denom <= common.Epsilon {
		return 0
	}
	return common.Clamp01(cross / denom)
}
