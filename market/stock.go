package market

import "time"

// MaxHistory is the number of price points retained per stock. Older points
// are dropped first.
const MaxHistory = 100

// PricePoint is a single observation on a stock's price history.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// Stock is a simulated equity. Symbol is immutable once created; price,
// change and history are mutated by the feed on every tick.
type Stock struct {
	Symbol        string       `json:"symbol"`
	CompanyName   string       `json:"companyName"`
	Price         float64      `json:"price"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"changePercent"`
	Volume        int64        `json:"volume"`
	MarketCap     int64        `json:"marketCap"`
	Sector        string       `json:"sector"`
	PriceHistory  []PricePoint `json:"priceHistory"`
}

// AppendHistory adds a point to the stock's history, keeping at most
// MaxHistory points (FIFO).
func (s *Stock) AppendHistory(p PricePoint) {
	s.PriceHistory = append(s.PriceHistory, p)
	if len(s.PriceHistory) > MaxHistory {
		s.PriceHistory = s.PriceHistory[len(s.PriceHistory)-MaxHistory:]
	}
}

// Clone returns a deep copy, so callers can hand out snapshots without
// aliasing the live history slice.
func (s Stock) Clone() Stock {
	out := s
	out.PriceHistory = make([]PricePoint, len(s.PriceHistory))
	copy(out.PriceHistory, s.PriceHistory)
	return out
}
