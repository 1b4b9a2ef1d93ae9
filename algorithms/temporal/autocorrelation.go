package temporal

import (
	"fmt"

	"github.com/RyanBlaney/sonido-vocals/algorithms/spectral"
)

// Autocorrelation computes the linear (non-circular) autocorrelation of
// fixed-size frames via the Wiener-Khinchin theorem
type Autocorrelation struct {
	frameSize int
	maxLag    int
	fft       *spectral.FFT
}

// NewAutocorrelation creates an autocorrelation calculator for frames of
// frameSize samples returning lags 0..maxLag. A non-positive or too large
// maxLag is clamped to frameSize-1.
func NewAutocorrelation(frameSize, maxLag int) *Autocorrelation {
	if maxLag <= 0 || maxLag >= frameSize {
		maxLag = frameSize - 1
	}
	// Zero padding to 2N keeps the circular correlation from wrapping
	return &Autocorrelation{
		frameSize: frameSize,
		maxLag:    max(maxLag, 0),
		fft:       spectral.NewFFT(2 * frameSize),
	}
}

// MaxLag returns the largest lag produced by Compute
func (ac *Autocorrelation) MaxLag() int {
	return ac.maxLag
}

// NewBuffer allocates scratch space suitable for Compute
func (ac *Autocorrelation) NewBuffer() []float64 {
	return ac.fft.NewBuffer()
}

// Compute returns r[k] = sum_n x[n]*x[n+k] for k = 0..MaxLag. The frame is
// truncated or zero padded to the configured frame size. buf is scratch
// space from NewBuffer; pass nil to allocate one.
func (ac *Autocorrelation) Compute(frame, buf []float64) ([]float64, error) {
	if buf == nil {
		buf = ac.fft.NewBuffer()
	}

	if len(frame) > ac.frameSize {
		frame = frame[:ac.frameSize]
	}
	if len(buf) != 2*ac.fft.Size() {
		return nil, fmt.Errorf("autocorrelation buffer length %d, expected %d", len(buf), 2*ac.fft.Size())
	}

	ac.fft.LoadReal(buf, frame)
	if err := ac.fft.Forward(buf); err != nil {
		return nil, err
	}

	// Power spectrum
	for i := 0; i < len(buf); i += 2 {
		re, im := buf[i], buf[i+1]
		buf[i] = re*re + im*im
		buf[i+1] = 0
	}

	if err := ac.fft.Inverse(buf); err != nil {
		return nil, err
	}

	result := make([]float64, ac.maxLag+1)
	for k := range result {
		result[k] = buf[2*k]
	}
	return result, nil
}
