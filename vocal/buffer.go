package vocal

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-vocals/algorithms/common"
)

// AudioBuffer is a decoded multi-channel waveform with samples in [-1, 1]
type AudioBuffer struct {
	SampleRate int         `json:"sample_rate"`
	Channels   [][]float64 `json:"channels"`
}

// NewMonoBuffer wraps a single channel
func NewMonoBuffer(samples []float64, sampleRate int) *AudioBuffer {
	return &AudioBuffer{SampleRate: sampleRate, Channels: [][]float64{samples}}
}

// NumFrames returns the per-channel sample count (the shortest channel)
func (b *AudioBuffer) NumFrames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	n := len(b.Channels[0])
	for _, ch := range b.Channels[1:] {
		n = min(n, len(ch))
	}
	return n
}

// Duration returns the buffer length in seconds, 0 without a valid sample rate
func (b *AudioBuffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.NumFrames()) / float64(b.SampleRate)
}

// mono mixes the channels down and zeroes non-finite samples.
// It returns the number of samples that had to be replaced.
func (b *AudioBuffer) mono() ([]float64, int) {
	signal := common.MixToMono(b.Channels)
	replaced := 0
	for i, s := range signal {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			signal[i] = 0
			replaced++
		}
	}
	return signal, replaced
}

// FromPCMBuffer converts an interleaved go-audio buffer into an AudioBuffer.
// Integer buffers are normalised by their source bit depth (16 bit when unset).
func FromPCMBuffer(buf audio.Buffer) (*AudioBuffer, error) {
	if buf == nil {
		return nil, errors.New("nil PCM buffer")
	}
	format := buf.PCMFormat()
	if format == nil {
		return nil, errors.New("PCM buffer has no format")
	}
	if format.NumChannels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", format.NumChannels)
	}

	var interleaved []float64
	switch b := buf.(type) {
	case *audio.IntBuffer:
		depth := b.SourceBitDepth
		if depth <= 0 {
			depth = 16
		}
		scale := 1.0 / math.Pow(2, float64(depth-1))
		interleaved = make([]float64, len(b.Data))
		for i, v := range b.Data {
			interleaved[i] = float64(v) * scale
		}
	default:
		interleaved = buf.AsFloatBuffer().Data
	}

	numChannels := format.NumChannels
	frames := len(interleaved) / numChannels
	channels := make([][]float64, numChannels)
	for c := range channels {
		channels[c] = make([]float64, frames)
		for i := range frames {
			channels[c][i] = interleaved[i*numChannels+c]
		}
	}

	return &AudioBuffer{SampleRate: format.SampleRate, Channels: channels}, nil
}

// ReadWAV decodes a PCM WAV stream into an AudioBuffer
func ReadWAV(r io.ReadSeeker) (*AudioBuffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("invalid WAV file")
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}

	return FromPCMBuffer(pcm)
}

// LoadWAVFile reads a PCM WAV file from disk
func LoadWAVFile(filePath string) (*AudioBuffer, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	return ReadWAV(file)
}
