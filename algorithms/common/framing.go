package common

// Window is applied to every extracted frame
type Window interface {
	ApplyInPlace(signal []float64) error
}

// Frame is one windowed analysis frame of a signal
type Frame struct {
	Index   int       // Position in the frame sequence
	Start   int       // Offset of the first sample in the source signal
	Samples []float64 // Windowed samples, len == frame size
}

// StartTime returns the frame start in seconds
func (f Frame) StartTime(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(f.Start) / float64(sampleRate)
}

// FrameCount returns how many complete frames fit into a signal of the given length
func FrameCount(signalLength, frameSize, hopSize int) int {
	if frameSize <= 0 || hopSize <= 0 || signalLength < frameSize {
		return 0
	}
	return (signalLength-frameSize)/hopSize + 1
}

// ExtractFrame copies frame index of signal into dst (len frameSize) and
// applies window. The caller guarantees the frame lies inside the signal,
// e.g. index < FrameCount(len(signal), frameSize, hopSize). The returned
// frame aliases dst.
func ExtractFrame(signal []float64, index, frameSize, hopSize int, window Window, dst []float64) Frame {
	start := index * hopSize
	copy(dst[:frameSize], signal[start:start+frameSize])

	if window != nil {
		// Sizes always match here; the error path is unreachable
		_ = window.ApplyInPlace(dst[:frameSize])
	}

	return Frame{
		Index:   index,
		Start:   start,
		Samples: dst[:frameSize],
	}
}

// MixToMono averages all channels sample by sample. Channels of unequal
// length are mixed over the shortest one.
func MixToMono(channels [][]float64) []float64 {
	if len(channels) == 0 {
		return []float64{}
	}
	if len(channels) == 1 {
		mono := make([]float64, len(channels[0]))
		copy(mono, channels[0])
		return mono
	}

	length := len(channels[0])
	for _, ch := range channels[1:] {
		length = min(length, len(ch))
	}

	mono := make([]float64, length)
	scale := 1.0 / float64(len(channels))
	for _, ch := range channels {
		for i := range length {
			mono[i] += ch[i]
		}
	}
	for i := range mono {
		mono[i] *= scale
	}

	return mono
}
