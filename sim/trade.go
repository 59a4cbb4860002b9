package sim

import "time"

type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

type Status string

const (
	Executed  Status = "executed"
	Pending   Status = "pending"
	Cancelled Status = "cancelled"
)

// Trade is either an executed order in the history or a pending limit order.
// Executed trades are immutable once written; pending orders change only by
// cancellation or execution.
type Trade struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"companyName"`
	Action      Action    `json:"action"`
	OrderType   OrderType `json:"orderType"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price"`
	Timestamp   time.Time `json:"timestamp"`
	TotalValue  float64   `json:"totalValue"`
	Status      Status    `json:"status"`
}

// OrderRequest is the discrete command the UI surface submits.
type OrderRequest struct {
	Symbol    string    `json:"symbol"`
	Action    Action    `json:"action"`
	OrderType OrderType `json:"orderType"`
	Quantity  int64     `json:"quantity"`
	// LimitPrice is required for limit orders and ignored for market orders.
	LimitPrice float64 `json:"limitPrice,omitempty"`
}
