package sim

// Position is a held lot in a single symbol, revalued on every tick.
type Position struct {
	Symbol          string  `json:"symbol"`
	CompanyName     string  `json:"companyName"`
	Quantity        int64   `json:"quantity"`
	AverageBuyPrice float64 `json:"averageBuyPrice"`
	CurrentPrice    float64 `json:"currentPrice"`
	Value           float64 `json:"value"`
	PnL             float64 `json:"pnl"`
	PnLPercentage   float64 `json:"pnlPercentage"`
}

// Portfolio is the derived capital ledger. TotalCapital always equals
// AvailableCapital + InvestedCapital; only the split changes as orders
// execute.
type Portfolio struct {
	TotalCapital     float64    `json:"totalCapital"`
	AvailableCapital float64    `json:"availableCapital"`
	InvestedCapital  float64    `json:"investedCapital"`
	TotalPnL         float64    `json:"totalPnL"`
	TodayPnL         float64    `json:"todayPnL"`
	PnLPercentage    float64    `json:"pnlPercentage"`
	Positions        []Position `json:"positions"`
}

func defaultPortfolio(balance float64) Portfolio {
	return Portfolio{
		TotalCapital:     balance,
		AvailableCapital: balance,
		InvestedCapital:  0,
		Positions:        []Position{},
	}
}

func (p Portfolio) clone() Portfolio {
	out := p
	out.Positions = make([]Position, len(p.Positions))
	copy(out.Positions, p.Positions)
	return out
}
