// Package metrics holds the Prometheus collectors the simulator updates
// during operation:
//   - papertrade_orders_total{type,action}  – orders accepted
//   - papertrade_orders_rejected_total      – validation rejections
//   - papertrade_limit_fills_total{action}  – pending orders filled by a tick
//   - papertrade_orders_cancelled_total     – pending orders cancelled
//   - papertrade_ticks_total                – price simulation ticks
//   - papertrade_alerts_fired_total         – watchlist alerts fired
//   - papertrade_available_capital          – available capital (gauge)
//   - papertrade_invested_capital           – invested capital (gauge)
//
// They are registered in init() and served at /metrics by the API server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papertrade_orders_total",
			Help: "Orders accepted",
		},
		[]string{"type", "action"},
	)

	OrdersRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papertrade_orders_rejected_total",
			Help: "Orders rejected by validation",
		},
	)

	LimitFills = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "papertrade_limit_fills_total",
			Help: "Pending limit orders filled by a price tick",
		},
		[]string{"action"},
	)

	OrdersCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papertrade_orders_cancelled_total",
			Help: "Pending limit orders cancelled",
		},
	)

	Ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papertrade_ticks_total",
			Help: "Price simulation ticks",
		},
	)

	AlertsFired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papertrade_alerts_fired_total",
			Help: "Watchlist alerts fired",
		},
	)

	AvailableCapital = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papertrade_available_capital",
			Help: "Available capital in USD",
		},
	)

	InvestedCapital = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "papertrade_invested_capital",
			Help: "Invested capital in USD",
		},
	)
)

func init() {
	prometheus.MustRegister(
		OrdersPlaced, OrdersRejected, LimitFills, OrdersCancelled,
		Ticks, AlertsFired,
		AvailableCapital, InvestedCapital,
	)
}
