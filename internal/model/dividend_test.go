package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLookback(t *testing.T) {
	tests := []struct {
		input string
		want  Lookback
		years int
	}{
		{"1Y", Lookback1Y, 1},
		{" 3y ", Lookback3Y, 3},
		{"5y", Lookback5Y, 5},
		{"max", LookbackMax, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLookback(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.years, got.Years())
		})
	}

	_, err := ParseLookback("2Y")
	assert.Error(t, err)
}
