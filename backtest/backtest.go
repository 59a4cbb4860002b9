// Package backtest replays a moving-average cross strategy over a stock's
// retained price history. It backs the strategy-tester surface; results are
// illustrative, not investment research.
package backtest

import (
	"fmt"
	"math"

	"github.com/rxhall/papertrade/indicators"
	"github.com/rxhall/papertrade/market"
)

// Params selects the strategy windows and starting capital.
type Params struct {
	FastPeriod     int     `json:"fastPeriod"`
	SlowPeriod     int     `json:"slowPeriod"`
	InitialCapital float64 `json:"initialCapital"`
}

// Result summarizes one backtest run.
type Result struct {
	Symbol           string  `json:"symbol"`
	InitialCapital   float64 `json:"initialCapital"`
	FinalCapital     float64 `json:"finalCapital"`
	ReturnPercentage float64 `json:"returnPercentage"`
	Trades           int     `json:"trades"`
	WinRate          float64 `json:"winRate"`
}

// Run walks the history point by point, going all-in long when the fast SMA
// crosses above the slow SMA and flat when it crosses back below. Any open
// position is closed at the final price.
func Run(s market.Stock, p Params) (Result, error) {
	if p.FastPeriod <= 0 || p.SlowPeriod <= 0 || p.FastPeriod >= p.SlowPeriod {
		return Result{}, fmt.Errorf("backtest: need 0 < fast < slow, got fast=%d slow=%d", p.FastPeriod, p.SlowPeriod)
	}
	if p.InitialCapital <= 0 {
		return Result{}, fmt.Errorf("backtest: initial capital must be positive")
	}
	history := s.PriceHistory
	if len(history) <= p.SlowPeriod {
		return Result{}, fmt.Errorf("backtest: need more than %d history points, got %d", p.SlowPeriod, len(history))
	}

	cash := p.InitialCapital
	var shares float64
	var entry float64
	trades, wins := 0, 0

	for i := p.SlowPeriod; i < len(history); i++ {
		window := history[:i+1]
		fast, err := indicators.SMA(window, p.FastPeriod)
		if err != nil {
			return Result{}, err
		}
		slow, err := indicators.SMA(window, p.SlowPeriod)
		if err != nil {
			return Result{}, err
		}

		price := history[i].Price
		switch {
		case fast > slow && shares == 0:
			shares = cash / price
			entry = price
			cash = 0
		case fast < slow && shares > 0:
			cash = shares * price
			trades++
			if price > entry {
				wins++
			}
			shares = 0
		}
	}

	if shares > 0 {
		last := history[len(history)-1].Price
		cash = shares * last
		trades++
		if last > entry {
			wins++
		}
	}

	res := Result{
		Symbol:         s.Symbol,
		InitialCapital: p.InitialCapital,
		FinalCapital:   math.Round(cash*100) / 100,
		Trades:         trades,
	}
	res.ReturnPercentage = (res.FinalCapital - p.InitialCapital) / p.InitialCapital * 100
	if trades > 0 {
		res.WinRate = float64(wins) / float64(trades)
	}
	return res, nil
}
