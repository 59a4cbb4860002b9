package journal

import "time"

// TradeRecord is one executed order as written to the journal.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Action     string // buy | sell
	OrderType  string // market | limit
	Quantity   int64
	Price      float64
	TotalValue float64
	Time       time.Time
	Reason     string // MarketOrder | LimitFill
}

// EquitySnapshot captures the capital split after a mutation.
type EquitySnapshot struct {
	Time             time.Time
	TotalCapital     float64
	AvailableCapital float64
	InvestedCapital  float64
	TotalPnL         float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards everything; used when journaling is disabled.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
