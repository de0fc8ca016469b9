package calculator

import (
	"errors"
	"math"
)

// Range returns the high and low of the last n prices (all prices if n <= 0).
func Range(prices []float64, n int) (high, low float64, err error) {
	if len(prices) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	start := 0
	if n > 0 && len(prices) > n {
		start = len(prices) - n
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range prices[start:] {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	return high, low, nil
}

// Position returns where current sits within [low, high] (0.0~1.0).
func Position(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Max(0, math.Min(1, pos)), nil
}

// Return is the fractional change from the price n steps before the last one
// to the last one. n <= 0 or n beyond the series uses the first price.
func Return(prices []float64, n int) (float64, error) {
	if len(prices) < 2 {
		return 0, errors.New("not enough data for return calculation")
	}
	base := 0
	if n > 0 && n < len(prices) {
		base = len(prices) - 1 - n
	}
	if prices[base] == 0 {
		return 0, errors.New("zero base price")
	}
	return prices[len(prices)-1]/prices[base] - 1, nil
}
