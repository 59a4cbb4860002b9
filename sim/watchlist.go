package sim

import "fmt"

// WatchlistItem is a symbol of interest with an optional alert threshold.
type WatchlistItem struct {
	Symbol       string  `json:"symbol"`
	CompanyName  string  `json:"companyName"`
	AlertEnabled bool    `json:"alertEnabled"`
	AlertPrice   float64 `json:"alertPrice,omitempty"`
}

// AddToWatchlist adds a symbol; adding an already-present symbol is a no-op.
func (e *Engine) AddToWatchlist(symbol string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.stocks[symbol]
	if !ok {
		return fmt.Errorf("add watchlist: %w: %s", ErrUnknownSymbol, symbol)
	}

	for _, item := range e.watchlist {
		if item.Symbol == symbol {
			return nil
		}
	}

	e.watchlist = append(e.watchlist, WatchlistItem{
		Symbol:      symbol,
		CompanyName: s.CompanyName,
	})
	e.persistWatchlistLocked()
	return nil
}

func (e *Engine) RemoveFromWatchlist(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.watchlist[:0]
	for _, item := range e.watchlist {
		if item.Symbol != symbol {
			out = append(out, item)
		}
	}
	e.watchlist = out
	e.persistWatchlistLocked()
}

func (e *Engine) ToggleAlert(symbol string, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.watchlist {
		if e.watchlist[i].Symbol == symbol {
			e.watchlist[i].AlertEnabled = enabled
			e.persistWatchlistLocked()
			return nil
		}
	}
	return fmt.Errorf("toggle alert: %s not on watchlist", symbol)
}

func (e *Engine) SetAlertPrice(symbol string, price float64) error {
	if price <= 0 {
		return fmt.Errorf("set alert: %w: %.2f", ErrInvalidPrice, price)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.watchlist {
		if e.watchlist[i].Symbol == symbol {
			e.watchlist[i].AlertPrice = price
			e.persistWatchlistLocked()
			return nil
		}
	}
	return fmt.Errorf("set alert: %s not on watchlist", symbol)
}

// Watchlist returns a snapshot of the watchlist.
func (e *Engine) Watchlist() []WatchlistItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]WatchlistItem, len(e.watchlist))
	copy(out, e.watchlist)
	return out
}

// firedAlert pairs an item with the price that crossed its threshold.
type firedAlert struct {
	item  WatchlistItem
	price float64
}

// evalAlertsLocked fires enabled alerts whose threshold was crossed by the
// move from prev to cur. A fired alert is disabled until re-enabled, so it
// fires once per arming.
func (e *Engine) evalAlertsLocked(symbol string, prev, cur float64) []firedAlert {
	var fired []firedAlert
	for i := range e.watchlist {
		item := &e.watchlist[i]
		if item.Symbol != symbol || !item.AlertEnabled || item.AlertPrice <= 0 {
			continue
		}
		crossedUp := prev < item.AlertPrice && cur >= item.AlertPrice
		crossedDown := prev > item.AlertPrice && cur <= item.AlertPrice
		if crossedUp || crossedDown {
			item.AlertEnabled = false
			fired = append(fired, firedAlert{item: *item, price: cur})
		}
	}
	if len(fired) > 0 {
		e.persistWatchlistLocked()
	}
	return fired
}
