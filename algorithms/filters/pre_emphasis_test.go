package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreEmphasis(t *testing.T) {
	pe, err := NewPreEmphasis(0.5)
	require.NoError(t, err)

	signal := []float64{1, 2, 2, 0}
	pe.ApplyInPlace(signal)
	assert.Equal(t, []float64{1, 1.5, 1, -1}, signal)

	empty := []float64{}
	pe.ApplyInPlace(empty)
	assert.Empty(t, empty)
}

func TestPreEmphasisRejectsBadCoefficient(t *testing.T) {
	_, err := NewPreEmphasis(1.0)
	assert.Error(t, err)
	_, err = NewPreEmphasis(-0.1)
	assert.Error(t, err)

	pe, err := NewPreEmphasis(DefaultPreEmphasis)
	require.NoError(t, err)
	signal := []float64{1, 1}
	pe.ApplyInPlace(signal)
	assert.InDelta(t, 0.03, signal[1], 1e-12)
}
