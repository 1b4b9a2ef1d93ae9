package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// half spectrum of 5 bins at 8000 Hz: 1000 Hz per bin
func bins(values ...float64) []float64 { return values }

func TestSpectralCentroid(t *testing.T) {
	sc := NewSpectralCentroid(8000)

	assert.InDelta(t, 2000.0, sc.Compute(bins(0, 0, 1, 0, 0)), 1e-9)
	assert.InDelta(t, 1500.0, sc.Compute(bins(0, 1, 1, 0, 0)), 1e-9)
	assert.Zero(t, sc.Compute(bins(0, 0, 0, 0, 0)))
	assert.Zero(t, sc.Compute(nil))
	assert.InDelta(t, 4000.0, sc.Compute(bins(0, 0, 0, 0, 1)), 1e-9)
}

func TestSpectralRolloff(t *testing.T) {
	sr := NewSpectralRolloff(8000, 0.85)

	// energies 1, 1, 1, 1 -> 85% reached at bin 3
	assert.InDelta(t, 3000.0, sr.Compute(bins(1, 1, 1, 1, 0)), 1e-9)
	assert.InDelta(t, 1000.0, sr.Compute(bins(0, 3, 1, 0, 0)), 1e-9)
	assert.Zero(t, sr.Compute(bins(0, 0, 0, 0, 0)))

	fallback := NewSpectralRolloff(8000, 1.5)
	assert.Equal(t, DefaultRolloffFraction, fallback.fraction)
}

func TestSpectralFlux(t *testing.T) {
	sf := NewSpectralFlux()

	assert.Zero(t, sf.ComputePair(nil, bins(1, 2, 3)))
	assert.InDelta(t, 3.0, sf.ComputePair(bins(1, 2, 3), bins(2, 0, 5)), 1e-12)
	assert.Zero(t, sf.ComputePair(bins(3, 3), bins(1, 2)), "decreases are ignored")
	assert.Equal(t, 3.0, sf.ComputePair(bins(2, 0), bins(2, 3, 9)), "extra bins are ignored")
}

func TestSpectralFlatness(t *testing.T) {
	sf := NewSpectralFlatness()

	assert.InDelta(t, 1.0, sf.Compute(bins(2, 2, 2, 2)), 1e-6)
	assert.Less(t, sf.Compute(bins(0, 0, 10, 0, 0)), 0.01)
	assert.Zero(t, sf.Compute(bins(0, 0, 0)))
	assert.Zero(t, sf.Compute(nil))
}
