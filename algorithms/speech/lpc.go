package speech

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-vocals/algorithms/spectral"
)

// ErrZeroEnergy is returned when LPC is requested for a silent signal
var ErrZeroEnergy = errors.New("zero energy signal")

// LPCAnalyzer performs Linear Predictive Coding analysis.
// LPC models the vocal tract as an all-pole filter, essential for
// formant extraction and vocal tract modeling
type LPCAnalyzer struct {
	sampleRate int
	order      int // LPC order (typically 12 + fs/1000)
}

// LPCResult contains LPC analysis results
type LPCResult struct {
	// Coefficients of the inverse filter A(z) = 1 + c1*z^-1 + ... + cp*z^-p,
	// Coefficients[0] == 1
	Coefficients    []float64 `json:"coefficients"`
	ReflectionCoeff []float64 `json:"reflection_coeff"` // Reflection coefficients (k1, k2, ..., kp)
	Gain            float64   `json:"gain"`             // sqrt of the residual energy
	ResidualEnergy  float64   `json:"residual_energy"`  // Prediction error energy
	Order           int       `json:"order"`            // LPC order used
}

// NewLPCAnalyzer creates a new LPC analyzer
func NewLPCAnalyzer(sampleRate int, order int) *LPCAnalyzer {
	if order <= 0 {
		order = 12 + sampleRate/1000 // Rule of thumb for speech
	}

	return &LPCAnalyzer{
		sampleRate: sampleRate,
		order:      order,
	}
}

// Order returns the prediction order
func (lpc *LPCAnalyzer) Order() int {
	return lpc.order
}

// Analyze performs LPC analysis on the input signal
func (lpc *LPCAnalyzer) Analyze(signal []float64) (*LPCResult, error) {
	if len(signal) <= lpc.order {
		return nil, fmt.Errorf("signal too short for LPC analysis of order %d", lpc.order)
	}

	R := Autocorrelation(signal, lpc.order)

	coeffs, reflection, residual, err := LevinsonDurbin(R, lpc.order)
	if err != nil {
		return nil, fmt.Errorf("Levinson-Durbin algorithm failed: %w", err)
	}

	return &LPCResult{
		Coefficients:    coeffs,
		ReflectionCoeff: reflection,
		Gain:            math.Sqrt(residual),
		ResidualEnergy:  residual,
		Order:           lpc.order,
	}, nil
}

// Autocorrelation returns R[0..maxLag] computed directly; maxLag is small for LPC
func Autocorrelation(signal []float64, maxLag int) []float64 {
	R := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag && lag < len(signal); lag++ {
		sum := 0.0
		for n := lag; n < len(signal); n++ {
			sum += signal[n] * signal[n-lag]
		}
		R[lag] = sum
	}
	return R
}

// LevinsonDurbin solves the Toeplitz normal equations for the inverse filter
// A(z) = 1 + a1*z^-1 + ... + ap*z^-p minimising the prediction error.
// It returns the coefficients (a[0] == 1), the reflection coefficients and
// the final prediction error energy.
func LevinsonDurbin(R []float64, order int) ([]float64, []float64, float64, error) {
	if len(R) < order+1 {
		return nil, nil, 0, fmt.Errorf("insufficient autocorrelation values: have %d, need %d", len(R), order+1)
	}
	if R[0] <= 0 {
		return nil, nil, 0, ErrZeroEnergy
	}

	a := make([]float64, order+1)
	prev := make([]float64, order+1)
	k := make([]float64, order)
	E := R[0]
	a[0] = 1.0

	for i := 1; i <= order; i++ {
		acc := R[i]
		for j := 1; j < i; j++ {
			acc += a[j] * R[i-j]
		}

		ki := -acc / E
		k[i-1] = ki

		copy(prev, a)
		for j := 1; j < i; j++ {
			a[j] = prev[j] + ki*prev[i-j]
		}
		a[i] = ki

		E *= 1 - ki*ki
		if E <= 0 {
			// Perfectly predictable: the remaining coefficients stay zero
			E = 0
			break
		}
	}

	return a, k, E, nil
}

// SpectralEnvelope evaluates gain/|A(e^jω)| on fft.Bins() frequencies
// using the given transform. buf is scratch space from fft.NewBuffer and dst
// receives the envelope (len fft.Bins()); nil allocates either. The returned
// slice aliases dst.
func SpectralEnvelope(result *LPCResult, fft *spectral.FFT, buf, dst []float64) ([]float64, error) {
	if result == nil || len(result.Coefficients) == 0 {
		return nil, fmt.Errorf("empty LPC result")
	}
	if len(result.Coefficients) > fft.Size() {
		return nil, fmt.Errorf("LPC order %d exceeds transform size %d", result.Order, fft.Size())
	}

	if buf == nil {
		buf = fft.NewBuffer()
	}
	if dst == nil {
		dst = make([]float64, fft.Bins())
	}
	if len(buf) != 2*fft.Size() || len(dst) != fft.Bins() {
		return nil, fmt.Errorf("envelope scratch lengths %d/%d, expected %d/%d",
			len(buf), len(dst), 2*fft.Size(), fft.Bins())
	}

	fft.LoadReal(buf, result.Coefficients)
	if err := fft.Forward(buf); err != nil {
		return nil, err
	}
	fft.Magnitudes(buf, dst)

	gain := result.Gain
	if gain <= 0 {
		gain = 1.0
	}

	for i, m := range dst {
		if m > 0 {
			dst[i] = gain / m
		} else {
			dst[i] = 0
		}
	}
	return dst, nil
}
