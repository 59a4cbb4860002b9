// Package sim is the portfolio/order state machine: the rules by which a
// simulated market or limit order mutates capital, positions and trade
// history, and by which pending limit orders are matched against the price
// feed and auto-executed.
package sim

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/rxhall/papertrade/internal/id"
	"github.com/rxhall/papertrade/journal"
	"github.com/rxhall/papertrade/market"
	"github.com/rxhall/papertrade/metrics"
	"github.com/rxhall/papertrade/store"
)

var (
	ErrUnknownSymbol     = errors.New("unknown symbol")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidPrice      = errors.New("price must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrOrderNotFound     = errors.New("order not found")
)

// EventListener is notified after the engine executes an order or fires a
// watchlist alert. Callbacks run outside the engine lock.
type EventListener interface {
	OnOrderExecuted(t Trade, reason string)
	OnAlertFired(item WatchlistItem, price float64)
}

// Engine owns all simulator state for a single session. Every mutation is a
// single read-modify-write pass under one mutex; the ticker goroutine and
// the UI surface are the only callers.
type Engine struct {
	mu        sync.Mutex
	stocks    map[string]*market.Stock
	symbols   []string // stable tick order
	feed      market.Feed
	st        store.Store
	journal   journal.Journal
	listener  EventListener
	portfolio Portfolio
	trades    []Trade // most recent first
	pending   []Trade
	watchlist []WatchlistItem

	startingBalance float64
	realizedPnL     float64
}

// NewEngine restores persisted state from st (absent or malformed entries
// fall back to defaults) and seeds the given stock catalogue. A nil journal
// disables journaling.
func NewEngine(st store.Store, feed market.Feed, j journal.Journal, startingBalance float64, stocks []market.Stock) *Engine {
	if j == nil {
		j = journal.Nop{}
	}

	e := &Engine{
		stocks:          make(map[string]*market.Stock, len(stocks)),
		feed:            feed,
		st:              st,
		journal:         j,
		portfolio:       defaultPortfolio(startingBalance),
		trades:          []Trade{},
		pending:         []Trade{},
		watchlist:       []WatchlistItem{},
		startingBalance: startingBalance,
	}

	for i := range stocks {
		s := stocks[i].Clone()
		e.stocks[s.Symbol] = &s
		e.symbols = append(e.symbols, s.Symbol)
	}
	sort.Strings(e.symbols)

	e.restore()
	return e
}

// SetListener sets an optional event listener. Callbacks are invoked after
// the lock is released.
func (e *Engine) SetListener(l EventListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = l
}

func (e *Engine) restore() {
	if ok, err := store.LoadJSON(e.st, store.KeyPortfolio, &e.portfolio); err != nil {
		log.Printf("sim: load portfolio: %v", err)
	} else if !ok {
		e.portfolio = defaultPortfolio(e.startingBalance)
	}
	if _, err := store.LoadJSON(e.st, store.KeyTrades, &e.trades); err != nil {
		log.Printf("sim: load trades: %v", err)
	}
	if _, err := store.LoadJSON(e.st, store.KeyPendingOrders, &e.pending); err != nil {
		log.Printf("sim: load pending orders: %v", err)
	}
	if _, err := store.LoadJSON(e.st, store.KeyWatchlist, &e.watchlist); err != nil {
		log.Printf("sim: load watchlist: %v", err)
	}
	e.publishGauges()
}

// PlaceMarketOrder executes an order immediately at the current price.
// Validation failures leave state untouched.
func (e *Engine) PlaceMarketOrder(req OrderRequest) (Trade, error) {
	e.mu.Lock()

	s, ok := e.stocks[req.Symbol]
	if !ok {
		e.mu.Unlock()
		metrics.OrdersRejected.Inc()
		return Trade{}, fmt.Errorf("market order: %w: %s", ErrUnknownSymbol, req.Symbol)
	}
	if req.Quantity < 1 {
		e.mu.Unlock()
		metrics.OrdersRejected.Inc()
		return Trade{}, fmt.Errorf("market order: %w", ErrInvalidQuantity)
	}

	price := s.Price
	total := price * float64(req.Quantity)

	if req.Action == Buy && total > e.portfolio.AvailableCapital {
		e.mu.Unlock()
		metrics.OrdersRejected.Inc()
		return Trade{}, fmt.Errorf("market order: %w: need %.2f, have %.2f",
			ErrInsufficientFunds, total, e.portfolio.AvailableCapital)
	}

	trade := Trade{
		ID:          id.New(),
		Symbol:      s.Symbol,
		CompanyName: s.CompanyName,
		Action:      req.Action,
		OrderType:   Market,
		Quantity:    req.Quantity,
		Price:       price,
		Timestamp:   time.Now().UTC(),
		TotalValue:  total,
		Status:      Executed,
	}

	switch req.Action {
	case Buy:
		e.portfolio.AvailableCapital -= total
		e.portfolio.InvestedCapital += total
		e.applyBuyLocked(s, req.Quantity, price)
	case Sell:
		e.portfolio.AvailableCapital += total
		e.portfolio.InvestedCapital = max0(e.portfolio.InvestedCapital - total)
		e.applySellLocked(s, req.Quantity, price)
	default:
		e.mu.Unlock()
		metrics.OrdersRejected.Inc()
		return Trade{}, fmt.Errorf("market order: invalid action %q", req.Action)
	}

	e.trades = append([]Trade{trade}, e.trades...)
	e.revalueLocked(nil)
	e.recomputeLocked()
	e.persistTradesLocked()
	e.persistPortfolioLocked()
	e.recordLocked(trade, "MarketOrder")

	listener := e.listener
	e.mu.Unlock()

	metrics.OrdersPlaced.WithLabelValues(string(Market), string(req.Action)).Inc()
	if listener != nil {
		listener.OnOrderExecuted(trade, "MarketOrder")
	}
	return trade, nil
}

// PlaceLimitOrder creates a pending order. A buy reserves funds immediately;
// the reservation is released only by cancellation or turned into invested
// capital by execution.
func (e *Engine) PlaceLimitOrder(req OrderRequest) (Trade, error) {
	e.mu.Lock()

	s, ok := e.stocks[req.Symbol]
	if !ok {
		e.mu.Unlock()
		metrics.OrdersRejected.Inc()
		return Trade{}, fmt.Errorf("limit order: %w: %s", ErrUnknownSymbol, req.Symbol)
	}
	if req.Quantity < 1 {
		e.mu.Unlock()
		metrics.OrdersRejected.Inc()
		return Trade{}, fmt.Errorf("limit order: %w", ErrInvalidQuantity)
	}
	if req.LimitPrice <= 0 {
		e.mu.Unlock()
		metrics.OrdersRejected.Inc()
		return Trade{}, fmt.Errorf("limit order: %w", ErrInvalidPrice)
	}

	total := req.LimitPrice * float64(req.Quantity)

	if req.Action == Buy && total > e.portfolio.AvailableCapital {
		e.mu.Unlock()
		metrics.OrdersRejected.Inc()
		return Trade{}, fmt.Errorf("limit order: %w: need %.2f, have %.2f",
			ErrInsufficientFunds, total, e.portfolio.AvailableCapital)
	}

	order := Trade{
		ID:          id.New(),
		Symbol:      s.Symbol,
		CompanyName: s.CompanyName,
		Action:      req.Action,
		OrderType:   Limit,
		Quantity:    req.Quantity,
		Price:       req.LimitPrice,
		Timestamp:   time.Now().UTC(),
		TotalValue:  total,
		Status:      Pending,
	}

	if req.Action == Buy {
		e.portfolio.AvailableCapital -= total
		e.recomputeLocked()
		e.persistPortfolioLocked()
	}

	e.pending = append(e.pending, order)
	e.persistPendingLocked()
	e.mu.Unlock()

	metrics.OrdersPlaced.WithLabelValues(string(Limit), string(req.Action)).Inc()
	return order, nil
}

// CancelOrder removes a pending order. A cancelled buy refunds its
// reservation, so capital is conserved across place→cancel.
func (e *Engine) CancelOrder(orderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, order := range e.pending {
		if order.ID != orderID {
			continue
		}

		e.pending = append(e.pending[:i], e.pending[i+1:]...)
		if order.Action == Buy {
			e.portfolio.AvailableCapital += order.TotalValue
			e.recomputeLocked()
			e.persistPortfolioLocked()
		}
		e.persistPendingLocked()
		metrics.OrdersCancelled.Inc()
		return nil
	}
	return fmt.Errorf("cancel: %w: %s", ErrOrderNotFound, orderID)
}

// Tick advances the simulation one step: every stock takes a feed step,
// pending limit orders are matched against the new prices, watchlist alerts
// are evaluated, and positions are revalued.
func (e *Engine) Tick(now time.Time) {
	e.mu.Lock()

	prev := make(map[string]float64, len(e.symbols))
	var fired []firedAlert

	for _, sym := range e.symbols {
		s := e.stocks[sym]
		prev[sym] = s.Price
		next := e.feed.Next(*s, now)
		*s = next
		fired = append(fired, e.evalAlertsLocked(sym, prev[sym], next.Price)...)
	}

	executed := e.matchPendingLocked(now)
	e.revalueLocked(prev)
	e.recomputeLocked()
	e.persistPortfolioLocked()

	listener := e.listener
	e.mu.Unlock()

	metrics.Ticks.Inc()
	metrics.AlertsFired.Add(float64(len(fired)))
	if listener != nil {
		for _, t := range executed {
			listener.OnOrderExecuted(t, "LimitFill")
		}
		for _, a := range fired {
			listener.OnAlertFired(a.item, a.price)
		}
	}
}

// matchPendingLocked fills every pending order whose limit is met by the
// current price: a buy fills when price ≤ limit, a sell when price ≥ limit.
// Fills use the limit price, not the triggering market price. Each order
// fills in full or not at all.
func (e *Engine) matchPendingLocked(now time.Time) []Trade {
	var executed []Trade
	remaining := e.pending[:0]

	for _, order := range e.pending {
		s, ok := e.stocks[order.Symbol]
		if !ok {
			remaining = append(remaining, order)
			continue
		}

		matches := (order.Action == Buy && s.Price <= order.Price) ||
			(order.Action == Sell && s.Price >= order.Price)
		if !matches {
			remaining = append(remaining, order)
			continue
		}

		order.Status = Executed
		order.Timestamp = now

		switch order.Action {
		case Buy:
			// Funds were reserved at placement; the reservation now
			// becomes invested capital.
			e.portfolio.InvestedCapital += order.TotalValue
			e.applyBuyLocked(s, order.Quantity, order.Price)
		case Sell:
			e.portfolio.AvailableCapital += order.TotalValue
			e.portfolio.InvestedCapital = max0(e.portfolio.InvestedCapital - order.TotalValue)
			e.applySellLocked(s, order.Quantity, order.Price)
		}

		e.trades = append([]Trade{order}, e.trades...)
		executed = append(executed, order)
		e.recordLocked(order, "LimitFill")
		metrics.LimitFills.WithLabelValues(string(order.Action)).Inc()
	}

	e.pending = remaining
	if len(executed) > 0 {
		e.persistTradesLocked()
		e.persistPendingLocked()
	}
	return executed
}

// applyBuyLocked folds a fill into the position list with a weighted
// average buy price.
func (e *Engine) applyBuyLocked(s *market.Stock, qty int64, price float64) {
	for i := range e.portfolio.Positions {
		p := &e.portfolio.Positions[i]
		if p.Symbol != s.Symbol {
			continue
		}
		totalCost := p.AverageBuyPrice*float64(p.Quantity) + price*float64(qty)
		p.Quantity += qty
		p.AverageBuyPrice = totalCost / float64(p.Quantity)
		return
	}
	e.portfolio.Positions = append(e.portfolio.Positions, Position{
		Symbol:          s.Symbol,
		CompanyName:     s.CompanyName,
		Quantity:        qty,
		AverageBuyPrice: price,
		CurrentPrice:    s.Price,
	})
}

// applySellLocked reduces the position, realizing P&L on the shares
// actually held. Selling more than held is allowed (the original permits
// it); the excess affects capital only.
func (e *Engine) applySellLocked(s *market.Stock, qty int64, price float64) {
	for i := range e.portfolio.Positions {
		p := &e.portfolio.Positions[i]
		if p.Symbol != s.Symbol {
			continue
		}

		sold := qty
		if sold > p.Quantity {
			sold = p.Quantity
		}
		e.realizedPnL += (price - p.AverageBuyPrice) * float64(sold)
		p.Quantity -= sold

		if p.Quantity == 0 {
			e.portfolio.Positions = append(e.portfolio.Positions[:i], e.portfolio.Positions[i+1:]...)
		}
		return
	}
}

// revalueLocked marks positions to the latest prices and accumulates the
// day's unrealized move.
func (e *Engine) revalueLocked(prev map[string]float64) {
	var unrealized, todayMove float64

	for i := range e.portfolio.Positions {
		p := &e.portfolio.Positions[i]
		s, ok := e.stocks[p.Symbol]
		if !ok {
			continue
		}

		p.CurrentPrice = s.Price
		p.Value = s.Price * float64(p.Quantity)
		p.PnL = (s.Price - p.AverageBuyPrice) * float64(p.Quantity)
		if p.AverageBuyPrice > 0 {
			p.PnLPercentage = (s.Price - p.AverageBuyPrice) / p.AverageBuyPrice * 100
		}

		unrealized += p.PnL
		if before, ok := prev[p.Symbol]; ok {
			todayMove += (s.Price - before) * float64(p.Quantity)
		}
	}

	e.portfolio.TotalPnL = e.realizedPnL + unrealized
	e.portfolio.TodayPnL += todayMove
	if e.startingBalance > 0 {
		e.portfolio.PnLPercentage = e.portfolio.TotalPnL / e.startingBalance * 100
	}
}

// recomputeLocked maintains the ledger invariant.
func (e *Engine) recomputeLocked() {
	e.portfolio.TotalCapital = e.portfolio.AvailableCapital + e.portfolio.InvestedCapital
	e.publishGauges()
}

func (e *Engine) publishGauges() {
	metrics.AvailableCapital.Set(e.portfolio.AvailableCapital)
	metrics.InvestedCapital.Set(e.portfolio.InvestedCapital)
}

// ResetPortfolio restores the starting capital and clears trade history,
// pending orders and positions. The persisted entries reflect the reset.
func (e *Engine) ResetPortfolio() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.portfolio = defaultPortfolio(e.startingBalance)
	e.trades = []Trade{}
	e.pending = []Trade{}
	e.realizedPnL = 0

	e.recomputeLocked()
	e.persistPortfolioLocked()
	e.persistTradesLocked()
	e.persistPendingLocked()
}

// ClearTrades empties the trade history and pending orders and removes the
// persisted entries.
func (e *Engine) ClearTrades() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.trades = []Trade{}
	e.pending = []Trade{}

	if err := e.st.Remove(store.KeyTrades); err != nil {
		log.Printf("sim: remove trades: %v", err)
	}
	if err := e.st.Remove(store.KeyPendingOrders); err != nil {
		log.Printf("sim: remove pending orders: %v", err)
	}
}

// Stocks returns a snapshot of all stocks, sorted by symbol.
func (e *Engine) Stocks() []market.Stock {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]market.Stock, 0, len(e.symbols))
	for _, sym := range e.symbols {
		out = append(out, e.stocks[sym].Clone())
	}
	return out
}

// Stock returns a snapshot of one stock.
func (e *Engine) Stock(symbol string) (market.Stock, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.stocks[symbol]
	if !ok {
		return market.Stock{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return s.Clone(), nil
}

// Trades returns the executed trade history, most recent first.
func (e *Engine) Trades() []Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Trade, len(e.trades))
	copy(out, e.trades)
	return out
}

// PendingOrders returns the open limit orders.
func (e *Engine) PendingOrders() []Trade {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Trade, len(e.pending))
	copy(out, e.pending)
	return out
}

// Portfolio returns a snapshot of the capital ledger.
func (e *Engine) Portfolio() Portfolio {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.portfolio.clone()
}

// Persistence is fire-and-forget: a failed write must not crash the
// simulator, so failures are logged and the command proceeds.

func (e *Engine) persistTradesLocked() {
	if err := store.SaveJSON(e.st, store.KeyTrades, e.trades); err != nil {
		log.Printf("sim: persist trades: %v", err)
	}
}

func (e *Engine) persistPendingLocked() {
	if err := store.SaveJSON(e.st, store.KeyPendingOrders, e.pending); err != nil {
		log.Printf("sim: persist pending orders: %v", err)
	}
}

func (e *Engine) persistPortfolioLocked() {
	if err := store.SaveJSON(e.st, store.KeyPortfolio, e.portfolio); err != nil {
		log.Printf("sim: persist portfolio: %v", err)
	}
}

func (e *Engine) persistWatchlistLocked() {
	if err := store.SaveJSON(e.st, store.KeyWatchlist, e.watchlist); err != nil {
		log.Printf("sim: persist watchlist: %v", err)
	}
}

func (e *Engine) recordLocked(t Trade, reason string) {
	err := e.journal.RecordTrade(journal.TradeRecord{
		TradeID:    t.ID,
		Symbol:     t.Symbol,
		Action:     string(t.Action),
		OrderType:  string(t.OrderType),
		Quantity:   t.Quantity,
		Price:      t.Price,
		TotalValue: t.TotalValue,
		Time:       t.Timestamp,
		Reason:     reason,
	})
	if err != nil {
		log.Printf("sim: journal trade: %v", err)
	}

	err = e.journal.RecordEquity(journal.EquitySnapshot{
		Time:             t.Timestamp,
		TotalCapital:     e.portfolio.AvailableCapital + e.portfolio.InvestedCapital,
		AvailableCapital: e.portfolio.AvailableCapital,
		InvestedCapital:  e.portfolio.InvestedCapital,
		TotalPnL:         e.portfolio.TotalPnL,
	})
	if err != nil {
		log.Printf("sim: journal equity: %v", err)
	}
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
