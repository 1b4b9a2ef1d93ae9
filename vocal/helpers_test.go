package vocal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-vocals/logging"
)

const testSampleRate = 22050

// region is a [start, end) interval in seconds
type region struct {
	start, end float64
}

// toneSignal returns duration seconds of silence with a 220 Hz harmonic tone
// (18 partials falling off as 1/sqrt(k)) scaled by gain inside every region
func toneSignal(duration, gain float64, regions ...region) []float64 {
	return toneSignalAt(testSampleRate, 220, duration, gain, regions...)
}

// toneSignalAt is toneSignal at any sample rate and fundamental. Partials at
// or above Nyquist are left out.
func toneSignalAt(sampleRate int, f0, duration, gain float64, regions ...region) []float64 {
	sr := float64(sampleRate)
	signal := make([]float64, int(duration*sr))
	for _, r := range regions {
		first := max(0, int(r.start*sr))
		last := min(len(signal), int(r.end*sr))
		for i := first; i < last; i++ {
			t := float64(i) / sr
			v := 0.0
			for k := 1; k <= 18 && f0*float64(k) < sr/2; k++ {
				v += 0.3 / math.Sqrt(float64(k)) * math.Sin(2*math.Pi*f0*float64(k)*t)
			}
			signal[i] = gain * v
		}
	}
	return signal
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	analyzer, err := NewAnalyzer(nil)
	require.NoError(t, err)
	return analyzer.WithLogger(&logging.NoOpLogger{})
}

func testSegment(start, end, confidence float64) VocalSegment {
	return VocalSegment{Start: start, End: end, Confidence: confidence, Intensity: confidence}
}
