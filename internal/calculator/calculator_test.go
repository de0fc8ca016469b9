package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	v, err := SMA([]float64{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = SMA([]float64{1}, 2)
	assert.Error(t, err)
	_, err = SMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestDeviation(t *testing.T) {
	d, err := Deviation([]float64{100, 100, 110}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 110.0/105.0-1, d, 1e-12)
}

func TestRSI(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(100 + i)
	}
	v, err := RSI(up, 14)
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)

	zigzag := make([]float64, 30)
	for i := range zigzag {
		zigzag[i] = 100
		if i%2 == 1 {
			zigzag[i] = 101
		}
	}
	v, err = RSI(zigzag, 14)
	require.NoError(t, err)
	assert.InDelta(t, 50, v, 5)

	_, err = RSI(up[:10], 14)
	assert.Error(t, err)
}

func TestRangeAndPosition(t *testing.T) {
	h, l, err := Range([]float64{5, 1, 9, 3, 4}, 3)
	require.NoError(t, err)
	assert.Equal(t, 9.0, h)
	assert.Equal(t, 3.0, l)

	pos, err := Position(6, 9, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.5, pos)

	pos, err = Position(20, 9, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos)

	_, _, err = Range(nil, 3)
	assert.Error(t, err)
}

func TestReturn(t *testing.T) {
	r, err := Return([]float64{100, 120, 110}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, r, 1e-12)

	r, err = Return([]float64{100, 120, 110}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 110.0/120.0-1, r, 1e-12)

	_, err = Return([]float64{100}, 0)
	assert.Error(t, err)
}
