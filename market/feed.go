package market

import (
	"math"
	"math/rand"
	"time"
)

// Feed produces the next quote for a stock. Implementations must be pure
// apart from their random source, so a real market-data adapter can be
// swapped in without touching the order or portfolio logic.
type Feed interface {
	Next(s Stock, now time.Time) Stock
}

// RandomWalk moves a price by a bounded random percentage each tick.
type RandomWalk struct {
	// Volatility is the maximum fractional move per tick (0.02 = ±2%).
	Volatility float64
	rng        *rand.Rand
}

// NewRandomWalk returns a feed walking prices by at most ±volatility per
// tick. A non-positive volatility falls back to 2%.
func NewRandomWalk(volatility float64, seed int64) *RandomWalk {
	if volatility <= 0 {
		volatility = 0.02
	}
	return &RandomWalk{
		Volatility: volatility,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// Next returns s with a new price, absolute and percent change relative to
// the previous tick, and the new point appended to the history.
func (w *RandomWalk) Next(s Stock, now time.Time) Stock {
	prev := s.Price
	change := prev * (w.rng.Float64()*w.Volatility*2 - w.Volatility)
	price := roundCents(prev + change)

	out := s.Clone()
	out.Price = price
	out.Change = roundCents(price - prev)
	if prev != 0 {
		out.ChangePercent = roundCents((price - prev) / prev * 100)
	}
	out.AppendHistory(PricePoint{Time: now, Price: price})
	return out
}

// roundCents rounds to two decimal places.
func roundCents(v float64) float64 { return math.Round(v*100) / 100 }
