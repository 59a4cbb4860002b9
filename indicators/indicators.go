package indicators

import (
	"fmt"

	"github.com/rxhall/papertrade/market"
)

// SMA calculates the Simple Moving Average over the last period points.
func SMA(points []market.PricePoint, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(points) < period {
		return 0, fmt.Errorf("not enough points: need %d, got %d", period, len(points))
	}

	sum := 0.0
	for i := len(points) - period; i < len(points); i++ {
		sum += points[i].Price
	}
	return sum / float64(period), nil
}

// EMA calculates the Exponential Moving Average for the given period,
// seeded with the SMA of the first period points.
func EMA(points []market.PricePoint, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(points) < period {
		return 0, fmt.Errorf("not enough points: need %d, got %d", period, len(points))
	}

	multiplier := 2.0 / float64(period+1)

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += points[i].Price
	}
	ema := sma / float64(period)

	for i := period; i < len(points); i++ {
		ema = (points[i].Price-ema)*multiplier + ema
	}

	return ema, nil
}
