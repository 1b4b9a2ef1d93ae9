package spectral

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/mjibson/go-dsp/fft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
)

func testSignal(n int) []float64 {
	signal := make([]float64, n)
	for i := range signal {
		x := float64(i)
		signal[i] = math.Sin(0.3*x) + 0.5*math.Cos(1.7*x) + 0.01*x
	}
	return signal
}

func TestFFTSizeRoundsUp(t *testing.T) {
	f := NewFFT(2000)
	assert.Equal(t, 2048, f.Size())
	assert.Equal(t, 1025, f.Bins())
	assert.Len(t, f.NewBuffer(), 4096)
}

func TestFFTMatchesGoDSP(t *testing.T) {
	for _, n := range []int{1, 2, 8, 64, 512} {
		signal := testSignal(n)
		f := NewFFT(n)

		buf := f.NewBuffer()
		f.LoadReal(buf, signal)
		require.NoError(t, f.Forward(buf))

		reference := fft.FFTReal(signal)
		require.Len(t, reference, n)
		for k := range n {
			assert.InDelta(t, real(reference[k]), buf[2*k], 1e-9, "n=%d re[%d]", n, k)
			assert.InDelta(t, imag(reference[k]), buf[2*k+1], 1e-9, "n=%d im[%d]", n, k)
		}
	}
}

func TestMagnitudesAndPhasesMatchGonum(t *testing.T) {
	const n = 1024
	signal := testSignal(n)

	f := NewFFT(n)
	buf := f.NewBuffer()
	f.LoadReal(buf, signal)
	require.NoError(t, f.Forward(buf))

	magnitudes := make([]float64, f.Bins())
	phases := make([]float64, f.Bins())
	f.Magnitudes(buf, magnitudes)
	f.Phases(buf, phases)

	reference := fourier.NewFFT(n).Coefficients(nil, signal)
	require.Len(t, reference, f.Bins())
	for k, c := range reference {
		assert.InDelta(t, cmplx.Abs(c), magnitudes[k], 1e-8, "bin %d", k)
		if cmplx.Abs(c) > 1e-6 {
			// Compare on the unit circle so -pi and pi agree
			assert.InDelta(t, math.Cos(cmplx.Phase(c)), math.Cos(phases[k]), 1e-6, "bin %d", k)
			assert.InDelta(t, math.Sin(cmplx.Phase(c)), math.Sin(phases[k]), 1e-6, "bin %d", k)
		}
	}
}

func TestFFTZeroPadding(t *testing.T) {
	signal := testSignal(48)
	f := NewFFT(len(signal))
	require.Equal(t, 64, f.Size())

	buf := f.NewBuffer()
	f.LoadReal(buf, signal)
	require.NoError(t, f.Forward(buf))

	padded := make([]float64, 64)
	copy(padded, signal)
	reference := fft.FFTReal(padded)

	magnitudes := make([]float64, f.Bins())
	f.Magnitudes(buf, magnitudes)
	for k := range magnitudes {
		assert.InDelta(t, cmplx.Abs(reference[k]), magnitudes[k], 1e-9)
	}
}

func TestFFTInverseRoundTrip(t *testing.T) {
	signal := testSignal(256)
	f := NewFFT(256)

	buf := f.NewBuffer()
	f.LoadReal(buf, signal)
	require.NoError(t, f.Forward(buf))
	require.NoError(t, f.Inverse(buf))

	for i, x := range signal {
		assert.InDelta(t, x, buf[2*i], 1e-9)
		assert.InDelta(t, 0.0, buf[2*i+1], 1e-9)
	}
}

func TestFFTRejectsWrongBuffer(t *testing.T) {
	f := NewFFT(16)
	assert.Error(t, f.Forward(make([]float64, 16)))
	assert.Error(t, f.Inverse(make([]float64, 64)))
}

func TestFFTSinePeak(t *testing.T) {
	const (
		sampleRate = 8000
		n          = 1024
	)
	// Bin-centred tone: bin 64 at 8000/1024 Hz per bin
	freq := 64 * float64(sampleRate) / n
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}

	f := NewFFT(n)
	buf := f.NewBuffer()
	f.LoadReal(buf, signal)
	require.NoError(t, f.Forward(buf))

	magnitudes := make([]float64, f.Bins())
	f.Magnitudes(buf, magnitudes)

	peak := 0
	for k, m := range magnitudes {
		if m > magnitudes[peak] {
			peak = k
		}
	}
	assert.Equal(t, 64, peak)
	assert.InDelta(t, n/2, magnitudes[64], 1e-6)
	assert.InDelta(t, freq, f.BinFrequency(peak, sampleRate), 1e-9)

	phases := make([]float64, f.Bins())
	f.Phases(buf, phases)
	assert.InDelta(t, -math.Pi/2, phases[64], 1e-6)
}
