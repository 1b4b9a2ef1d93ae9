package speech

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
	"github.com/RyanBlaney/sonido-vocals/algorithms/filters"
	"github.com/RyanBlaney/sonido-vocals/algorithms/spectral"
)

const (
	// envelopeSize is the number of points the all-pole envelope is evaluated on
	envelopeSize = 1024

	minFormantHz   = 90.0
	nyquistGuardHz = 50.0
)

// FormantEstimate holds the first three resonances of one frame.
// Missing formants are reported as zero.
type FormantEstimate struct {
	F1 float64 `json:"f1"`
	F2 float64 `json:"f2"`
	F3 float64 `json:"f3"`
	B1 float64 `json:"b1"`
	B2 float64 `json:"b2"`
	B3 float64 `json:"b3"`
}

// FormantAnalyzer extracts formants by peak picking on the LPC spectral
// envelope. It owns per-frame scratch and is not safe for concurrent use.
type FormantAnalyzer struct {
	sampleRate  int
	lpc         *LPCAnalyzer
	preEmphasis *filters.PreEmphasis
	fft         *spectral.FFT

	// per-frame scratch
	emphasized []float64
	fftBuf     []float64
	envelope   []float64
}

// NewFormantAnalyzer creates a formant analyzer of the given LPC order and
// pre-emphasis coefficient
func NewFormantAnalyzer(sampleRate, lpcOrder int, preEmphasis float64) (*FormantAnalyzer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if lpcOrder <= 0 || lpcOrder >= envelopeSize {
		return nil, fmt.Errorf("invalid LPC order %d", lpcOrder)
	}

	pe, err := filters.NewPreEmphasis(preEmphasis)
	if err != nil {
		return nil, err
	}

	fft := spectral.NewFFT(envelopeSize)
	return &FormantAnalyzer{
		sampleRate:  sampleRate,
		lpc:         NewLPCAnalyzer(sampleRate, lpcOrder),
		preEmphasis: pe,
		fft:         fft,
		fftBuf:      fft.NewBuffer(),
		envelope:    make([]float64, fft.Bins()),
	}, nil
}

// Analyze estimates F1..F3 and their bandwidths. Silent frames yield the
// zero estimate without error.
func (f *FormantAnalyzer) Analyze(frame []float64) (FormantEstimate, error) {
	if len(frame) <= f.lpc.Order() {
		return FormantEstimate{}, nil
	}

	f.emphasized = append(f.emphasized[:0], frame...)
	f.preEmphasis.ApplyInPlace(f.emphasized)

	result, err := f.lpc.Analyze(f.emphasized)
	if errors.Is(err, ErrZeroEnergy) {
		return FormantEstimate{}, nil
	}
	if err != nil {
		return FormantEstimate{}, fmt.Errorf("LPC analysis failed: %w", err)
	}

	envelope, err := SpectralEnvelope(result, f.fft, f.fftBuf, f.envelope)
	if err != nil {
		return FormantEstimate{}, fmt.Errorf("spectral envelope failed: %w", err)
	}

	return f.pickFormants(envelope), nil
}

// pickFormants takes the first three local maxima of the envelope inside
// the formant search band
func (f *FormantAnalyzer) pickFormants(envelope []float64) FormantEstimate {
	binHz := float64(f.sampleRate) / float64(f.fft.Size())
	upper := float64(f.sampleRate)/2 - nyquistGuardHz

	var freqs, widths []float64
	for i := 1; i < len(envelope)-1 && len(freqs) < 3; i++ {
		freq := float64(i) * binHz
		if freq <= minFormantHz {
			continue
		}
		if freq >= upper {
			break
		}
		if envelope[i] > envelope[i-1] && envelope[i] >= envelope[i+1] {
			offset := common.ParabolicOffset(envelope[i-1], envelope[i], envelope[i+1])
			freqs = append(freqs, (float64(i)+offset)*binHz)
			widths = append(widths, bandwidth(envelope, i)*binHz)
		}
	}

	var est FormantEstimate
	targets := []*float64{&est.F1, &est.F2, &est.F3}
	bands := []*float64{&est.B1, &est.B2, &est.B3}
	for i := range freqs {
		*targets[i] = freqs[i]
		*bands[i] = widths[i]
	}
	return est
}

// bandwidth returns the -3 dB width of the peak at idx in bins, linearly
// interpolated between samples. An edge never crossed ends at the envelope
// boundary.
func bandwidth(envelope []float64, idx int) float64 {
	cutoff := envelope[idx] / math.Sqrt2

	left := 0.0
	for i := idx - 1; i >= 0; i-- {
		if envelope[i] <= cutoff {
			left = float64(i) + (cutoff-envelope[i])/(envelope[i+1]-envelope[i])
			break
		}
	}

	right := float64(len(envelope) - 1)
	for i := idx + 1; i < len(envelope); i++ {
		if envelope[i] <= cutoff {
			right = float64(i) - (cutoff-envelope[i])/(envelope[i-1]-envelope[i])
			break
		}
	}

	return right - left
}
