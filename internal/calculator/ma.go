package calculator

import "errors"

// SMA computes the simple moving average of the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// Deviation returns how far the last price sits from its period SMA, as a fraction.
func Deviation(prices []float64, period int) (float64, error) {
	ma, err := SMA(prices, period)
	if err != nil {
		return 0, err
	}
	if ma == 0 {
		return 0, errors.New("zero moving average")
	}
	return (prices[len(prices)-1] - ma) / ma, nil
}
