package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rxhall/papertrade/market"
	"github.com/rxhall/papertrade/sim"
	"github.com/rxhall/papertrade/store"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted in-memory session",
	Long: `Run a short scripted session against an in-memory store: a market
buy, a limit sell, and a burst of price ticks, printing the resulting
portfolio and trade history.`,
	RunE: runDemo,
}

var demoTicks int

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().IntVarP(&demoTicks, "ticks", "n", 20, "number of price ticks to simulate")
}

func runDemo(cmd *cobra.Command, args []string) error {
	now := time.Now()
	feed := market.NewRandomWalk(0.02, now.UnixNano())
	engine := sim.NewEngine(store.NewMemory(), feed, nil, 100000, market.Seed(now))

	fmt.Println("Starting portfolio: $100000.00 available")
	fmt.Println()

	buy, err := engine.PlaceMarketOrder(sim.OrderRequest{
		Symbol: "AAPL", Action: sim.Buy, OrderType: sim.Market, Quantity: 10,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Market buy:  %d AAPL @ $%.2f (total $%.2f)\n", buy.Quantity, buy.Price, buy.TotalValue)

	limit, err := engine.PlaceLimitOrder(sim.OrderRequest{
		Symbol: "AAPL", Action: sim.Sell, OrderType: sim.Limit, Quantity: 5,
		LimitPrice: buy.Price * 1.01,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Limit sell:  %d AAPL @ $%.2f placed\n\n", limit.Quantity, limit.Price)

	for i := 0; i < demoTicks; i++ {
		now = now.Add(3 * time.Second)
		engine.Tick(now)
	}

	p := engine.Portfolio()
	fmt.Printf("After %d ticks:\n", demoTicks)
	fmt.Printf("  Total:     $%.2f\n", p.TotalCapital)
	fmt.Printf("  Available: $%.2f\n", p.AvailableCapital)
	fmt.Printf("  Invested:  $%.2f\n", p.InvestedCapital)
	fmt.Printf("  P&L:       $%.2f (%.2f%%)\n\n", p.TotalPnL, p.PnLPercentage)

	fmt.Println("Trades (most recent first):")
	for _, t := range engine.Trades() {
		fmt.Printf("  %-6s %-4s %4d %-5s @ $%8.2f  total $%10.2f  [%s]\n",
			t.Symbol, t.Action, t.Quantity, t.OrderType, t.Price, t.TotalValue, t.Status)
	}
	if pending := engine.PendingOrders(); len(pending) > 0 {
		fmt.Println("Still pending:")
		for _, t := range pending {
			fmt.Printf("  %-6s %-4s %4d limit @ $%8.2f\n", t.Symbol, t.Action, t.Quantity, t.Price)
		}
	}
	return nil
}
