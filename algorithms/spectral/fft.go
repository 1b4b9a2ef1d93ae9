package spectral

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
)

// FFT is an iterative radix-2 Cooley-Tukey transform of a fixed power-of-two
// size operating in place on interleaved [re0, im0, re1, im1, ...] buffers.
//
// Twiddle and bit-reversal tables are built once by NewFFT and only read
// afterwards. Scratch buffers belong to the caller, so one FFT can serve any
// number of concurrent analyses as long as each owns its buffer.
type FFT struct {
	size    int
	cos     []float64 // cos(2*pi*k/size), k < size/2
	sin     []float64 // sin(2*pi*k/size), k < size/2
	reverse []int     // bit-reversed index table
}

// NewFFT creates a transform for at least minSize points; the actual size is
// the next power of two
func NewFFT(minSize int) *FFT {
	size := common.NextPowerOfTwo(minSize)

	f := &FFT{
		size:    size,
		cos:     make([]float64, size/2),
		sin:     make([]float64, size/2),
		reverse: make([]int, size),
	}

	for k := range size / 2 {
		angle := 2 * math.Pi * float64(k) / float64(size)
		f.cos[k] = math.Cos(angle)
		f.sin[k] = math.Sin(angle)
	}

	bits := 0
	for (1 << bits) < size {
		bits++
	}
	for i := range size {
		r := 0
		for b := range bits {
			if i&(1<<b) != 0 {
				r |= 1 << (bits - 1 - b)
			}
		}
		f.reverse[i] = r
	}

	return f
}

// Size returns the number of complex points
func (f *FFT) Size() int {
	return f.size
}

// Bins returns the number of physically meaningful bins (DC through Nyquist)
func (f *FFT) Bins() int {
	return f.size/2 + 1
}

// NewBuffer allocates an interleaved scratch buffer for this transform
func (f *FFT) NewBuffer() []float64 {
	return make([]float64, 2*f.size)
}

// LoadReal copies a real signal into buf, zero-padding to the transform size.
// Samples beyond the transform size are dropped.
func (f *FFT) LoadReal(buf []float64, signal []float64) {
	clear(buf)
	n := min(len(signal), f.size)
	for i := range n {
		buf[2*i] = signal[i]
	}
}

// Forward computes the forward transform of buf in place
func (f *FFT) Forward(buf []float64) error {
	return f.transform(buf, false)
}

// Inverse computes the inverse transform of buf in place, scaled by 1/size
func (f *FFT) Inverse(buf []float64) error {
	if err := f.transform(buf, true); err != nil {
		return err
	}

	scale := 1.0 / float64(f.size)
	for i := range buf {
		buf[i] *= scale
	}
	return nil
}

func (f *FFT) transform(buf []float64, inverse bool) error {
	if len(buf) != 2*f.size {
		return fmt.Errorf("buffer length (%d) doesn't match transform size (%d interleaved)", len(buf), 2*f.size)
	}

	n := f.size

	for i := range n {
		j := f.reverse[i]
		if j > i {
			buf[2*i], buf[2*j] = buf[2*j], buf[2*i]
			buf[2*i+1], buf[2*j+1] = buf[2*j+1], buf[2*i+1]
		}
	}

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	for span := 2; span <= n; span <<= 1 {
		half := span / 2
		step := n / span

		for start := 0; start < n; start += span {
			for j := range half {
				wr := f.cos[j*step]
				wi := sign * f.sin[j*step]

				a := 2 * (start + j)
				b := 2 * (start + j + half)

				tr := wr*buf[b] - wi*buf[b+1]
				ti := wr*buf[b+1] + wi*buf[b]

				buf[b] = buf[a] - tr
				buf[b+1] = buf[a+1] - ti
				buf[a] += tr
				buf[a+1] += ti
			}
		}
	}

	return nil
}

// Magnitudes writes sqrt(re^2+im^2) for bins 0..size/2 of a transformed buffer into dst
func (f *FFT) Magnitudes(buf []float64, dst []float64) {
	bins := min(len(dst), f.Bins())
	for k := range bins {
		re, im := buf[2*k], buf[2*k+1]
		dst[k] = math.Sqrt(re*re + im*im)
	}
}

// Phases writes atan2(im, re) for bins 0..size/2 of a transformed buffer into dst
func (f *FFT) Phases(buf []float64, dst []float64) {
	bins := min(len(dst), f.Bins())
	for k := range bins {
		dst[k] = math.Atan2(buf[2*k+1], buf[2*k])
	}
}

// BinFrequency returns the centre frequency in Hz of bin k
func (f *FFT) BinFrequency(k int, sampleRate int) float64 {
	return float64(k) * float64(sampleRate) / float64(f.size)
}
